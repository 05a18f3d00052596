package entity

import "strings"

// Placeholder texts shown for sections that have no usable menu.
const (
	PlaceholderEmpty       = "메뉴 없음"
	PlaceholderUnreachable = "메뉴 조회 실패 (식당 페이지에 연결할 수 없습니다)"
	PlaceholderUnparseable = "메뉴 조회 실패 (메뉴 형식을 해석할 수 없습니다)"

	renderFooter   = "맛있게 드세요!"
	sectionDivider = "────────────────────"
	entryBullet    = "• "
)

// Render produces the text form of a menu.
//
// Every known source gets a section, in presentation order. A section whose
// report is not ok shows exactly one placeholder line so readers can tell a
// closed cafeteria from a broken site. Inside an ok section each meal period
// is listed, with a placeholder for a period without dishes.
func Render(m *DailyMenu) string {
	var b strings.Builder

	b.WriteString("아주대 식당 메뉴 (")
	b.WriteString(m.DateString())
	b.WriteString(")\n\n")

	for _, r := range m.Reports() {
		b.WriteString(r.Source.Label())
		b.WriteString("\n")
		b.WriteString(sectionDivider)
		b.WriteString("\n")

		switch r.Status {
		case StatusOK:
			renderPeriods(&b, r)
		case StatusUnreachable:
			b.WriteString(PlaceholderUnreachable)
			b.WriteString("\n\n")
		case StatusUnparseable:
			b.WriteString(PlaceholderUnparseable)
			b.WriteString("\n\n")
		default:
			b.WriteString(PlaceholderEmpty)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(renderFooter)
	return b.String()
}

func renderPeriods(b *strings.Builder, r *MenuReport) {
	for _, period := range MealPeriods() {
		b.WriteString(period.Label())
		b.WriteString("\n")

		entries := r.EntriesFor(period)
		if len(entries) == 0 {
			b.WriteString(PlaceholderEmpty)
			b.WriteString("\n\n")
			continue
		}

		mealType := ""
		for _, e := range entries {
			if e.MealType != "" && e.MealType != mealType {
				b.WriteString("[")
				b.WriteString(e.MealType)
				b.WriteString("]\n")
			}
			mealType = e.MealType
			b.WriteString(entryBullet)
			b.WriteString(e.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}
