package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/usecase/menu"
)

// dayMarker is present on every dining page that carries a menu table,
// including days with nothing served.
const dayMarker = ".b-menu-day"

// ExtractFunc reads raw entries from a parsed dining page.
// It is only called after the day marker has been found.
type ExtractFunc func(doc *goquery.Document) []entity.MenuEntry

// Parser dispatches each source to its extraction rule.
type Parser struct {
	extractors map[entity.MenuSource]ExtractFunc
}

// NewParser returns a Parser with the rules for every known source.
func NewParser() *Parser {
	return &Parser{
		extractors: map[entity.MenuSource]ExtractFunc{
			entity.DormitoryCafeteria: extractDormitory,
			entity.StaffCafeteria:     extractStaff,
		},
	}
}

// Parse extracts raw entries from html using the rule for source.
//
// It returns an error wrapping menu.ErrUnparseable when the source has no
// rule, the markup cannot be read, or the day marker is missing. A page whose
// period boxes are absent or empty yields an empty, non-nil slice.
func (p *Parser) Parse(source entity.MenuSource, html string) ([]entity.MenuEntry, error) {
	extract, ok := p.extractors[source]
	if !ok {
		return nil, fmt.Errorf("%w: no extraction rule for source %q", menu.ErrUnparseable, source)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read markup: %v", menu.ErrUnparseable, source, err)
	}

	if doc.Find(dayMarker).Length() == 0 {
		return nil, fmt.Errorf("%w: %s: marker %q not found", menu.ErrUnparseable, source, dayMarker)
	}

	entries := extract(doc)
	if entries == nil {
		entries = []entity.MenuEntry{}
	}
	return entries, nil
}

// periodBox returns the menu box for period, which may be empty.
func periodBox(doc *goquery.Document, period entity.MealPeriod) *goquery.Selection {
	return doc.Find(dayMarker + "." + string(period)).First()
}
