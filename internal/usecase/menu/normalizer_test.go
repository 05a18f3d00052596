package menu

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"ajou-menu/internal/domain/entity"
)

func entries(texts ...string) []entity.MenuEntry {
	out := make([]entity.MenuEntry, 0, len(texts))
	for _, t := range texts {
		out = append(out, entity.MenuEntry{Text: t, Category: entity.Lunch})
	}
	return out
}

func texts(es []entity.MenuEntry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Text)
	}
	return out
}

func TestNormalize_OperatingHoursScenario(t *testing.T) {
	n, err := NewNormalizer(RulesFromMap(map[string]string{"운영": "operating-hours"}))
	require.NoError(t, err)

	got := n.Normalize(entries("점심 11:30~13:30 운영", "김치찌개", "  ", "공깃밥"))

	assert.Equal(t, []string{"김치찌개", "공깃밥"}, texts(got))
}

func TestNormalize_DefaultRules(t *testing.T) {
	tests := []struct {
		line string
		keep bool
	}{
		{line: "[중식 운영 안내]", keep: false},
		{line: "- 11:30 ~ 13:30 운영", keep: false},
		{line: "* 방학 중 단축 운영", keep: false},
		{line: "※ 알레르기 유발 식품 표시", keep: false},
		{line: "<5,000원>", keep: false},
		{line: "★오늘의 특식★", keep: false},
		{line: "후식음료: 식혜", keep: false},
		{line: "밥", keep: false},
		{line: "등록된 메뉴가 없습니다.", keep: false},
		{line: "등록된 식단이 없습니다", keep: false},
		{line: "김치찌개", keep: true},
		{line: "운영진 추천 비빔밥", keep: true},
		{line: "[A코너]", keep: true},
		{line: "제육볶음 (국내산)", keep: true},
	}

	n := NewDefaultNormalizer()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := n.Normalize(entries(tt.line))
			if tt.keep {
				assert.Equal(t, []string{tt.line}, texts(got))
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestNormalize_CollapsesWhitespaceAndKeepsMetadata(t *testing.T) {
	n := NewDefaultNormalizer()
	raw := []entity.MenuEntry{
		{Text: "  돈까스 \t &  소스\n", Category: entity.Dinner, MealType: " 일품  코너 "},
		{Text: "  ", Category: entity.Dinner},
	}

	got, stats := n.NormalizeWithStats(raw)

	want := []entity.MenuEntry{{Text: "돈까스 & 소스", Category: entity.Dinner, MealType: "일품 코너"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, stats.Blank)
}

func TestNormalize_AppliesNFC(t *testing.T) {
	n := NewDefaultNormalizer()
	decomposed := norm.NFD.String("김치찌개")
	require.NotEqual(t, "김치찌개", decomposed)

	got := n.Normalize(entries(decomposed))

	assert.Equal(t, []string{"김치찌개"}, texts(got))
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewDefaultNormalizer()
	raw := entries(
		"[석식 안내]", "  제육   볶음 ", "※ 원산지", "", "미역국", "<4,500원>", "김", "배추김치",
		"★ 수요 특식 ★", "후식음료: 아이스티", "  흑미밥",
	)

	once := n.Normalize(raw)
	twice := n.Normalize(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Normalize is not idempotent (-once +twice):\n%s", diff)
	}
	assert.Equal(t, []string{"제육 볶음", "미역국", "배추김치", "흑미밥"}, texts(once))
}

func TestNormalize_RemovesOnlyMatchingEntries(t *testing.T) {
	n, err := NewNormalizer([]Rule{
		{Pattern: "안내", Reason: "notice"},
		{Pattern: `^\d+원$`, Reason: "price", Kind: RuleRegex},
	})
	require.NoError(t, err)

	got, stats := n.NormalizeWithStats(entries("식당 이용 안내", "6000원", "우동", "6000원 세트 메뉴", "비빔밥"))

	assert.Equal(t, []string{"우동", "6000원 세트 메뉴", "비빔밥"}, texts(got))
	assert.Equal(t, map[string]int{"notice": 1, "price": 1}, stats.Dropped)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := NewDefaultNormalizer()
	raw := entries("a  b", "[안내]", "c", "※ x", "d")

	first := n.Normalize(raw)
	for i := 0; i < 50; i++ {
		if diff := cmp.Diff(first, n.Normalize(raw)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestNormalize_EmptyInputYieldsEmptySlice(t *testing.T) {
	got := NewDefaultNormalizer().Normalize(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewNormalizer_InvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "empty pattern", rule: Rule{Pattern: "  ", Reason: "blank"}},
		{name: "bad regex", rule: Rule{Pattern: "([", Reason: "broken", Kind: RuleRegex}},
		{name: "unknown kind", rule: Rule{Pattern: "x", Kind: "glob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer([]Rule{tt.rule})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRule))
		})
	}
}

func TestRulesFromMap_SortedSubstringRules(t *testing.T) {
	rules := RulesFromMap(map[string]string{"운영": "hours", "안내": "notice", "가격": "price"})

	want := []Rule{
		{Pattern: "가격", Reason: "price", Kind: RuleSubstring},
		{Pattern: "안내", Reason: "notice", Kind: RuleSubstring},
		{Pattern: "운영", Reason: "hours", Kind: RuleSubstring},
	}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("RulesFromMap mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileRules_DefaultReason(t *testing.T) {
	compiled, err := compileRules([]Rule{{Pattern: "휴무"}})
	require.NoError(t, err)
	require.Len(t, compiled, 1)
	assert.Equal(t, "휴무", compiled[0].Reason)
	assert.Equal(t, RuleSubstring, compiled[0].Kind)
}
