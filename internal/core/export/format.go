package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dashboard-service/internal/domain"
)

const (
	cellDateLayout   = "02/01/2006"
	headerTimeLayout = "02/01/2006 15:04"
)

// formatMoney renders an amount as $1,234.50.
func formatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), frac)
}

// formatCell renders a record value for a report. Numbers in currency columns
// are shown as money.
func formatCell(v any, money bool) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if money {
			return formatMoney(t)
		}
		return domain.FormatValue(t)
	case time.Time:
		return t.Format(cellDateLayout)
	case string:
		return t
	default:
		return domain.FormatValue(t)
	}
}

func footnote(t Table) string {
	return fmt.Sprintf("Mostrando %d de %d registros", len(t.Rows), t.Total)
}
