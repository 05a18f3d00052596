package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSPBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		builder *CSPBuilder
		want    string
	}{
		{
			name:    "empty builder",
			builder: NewCSPBuilder(),
			want:    "",
		},
		{
			name:    "single directive",
			builder: NewCSPBuilder().DefaultSrc("'self'"),
			want:    "default-src 'self'",
		},
		{
			name: "directives rendered in fixed order",
			builder: NewCSPBuilder().
				ObjectSrc("'none'").
				StyleSrc("'self'", "'unsafe-inline'").
				DefaultSrc("'self'"),
			want: "default-src 'self'; style-src 'self' 'unsafe-inline'; object-src 'none'",
		},
		{
			name:    "directive without sources omitted",
			builder: NewCSPBuilder().DefaultSrc("'self'").ScriptSrc(),
			want:    "default-src 'self'",
		},
		{
			name:    "later call replaces sources",
			builder: NewCSPBuilder().ImgSrc("https:").ImgSrc("'self'"),
			want:    "img-src 'self'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.builder.Build())
		})
	}
}

func TestCSPBuilder_HeaderName(t *testing.T) {
	assert.Equal(t, "Content-Security-Policy", NewCSPBuilder().HeaderName())
	assert.Equal(t, "Content-Security-Policy-Report-Only", NewCSPBuilder().ReportOnly(true).HeaderName())
}

func TestStrictPolicy(t *testing.T) {
	assert.Equal(t,
		"default-src 'none'; frame-ancestors 'none'; form-action 'none'; base-uri 'none'",
		StrictPolicy().Build())
}

func TestMenuPagePolicy(t *testing.T) {
	policy := MenuPagePolicy().Build()

	assert.Contains(t, policy, "style-src 'self' 'unsafe-inline'")
	assert.Contains(t, policy, "frame-ancestors 'none'")
	assert.Contains(t, policy, "object-src 'none'")
	assert.NotContains(t, policy, "https:")
}
