package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a trade record as an org-mode heading with its
// entry signals as properties.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "* %s %s %s %s\n",
		t.ExitedAt.UTC().Format("2006-01-02"),
		t.Instrument,
		strings.ToUpper(string(t.Direction)),
		f(t.ProfitOrLoss),
	)
	b.WriteString(":PROPERTIES:\n")
	prop(&b, "ID", t.ID)
	prop(&b, "POSITION", shortID(t.PositionID))
	prop(&b, "UNITS", f(t.Units))
	prop(&b, "ENTRY", f(t.EntryPrice))
	prop(&b, "EXIT", f(t.ExitPrice))
	prop(&b, "ENTERED", t.EnteredAt.UTC().Format(time.RFC3339))
	prop(&b, "EXITED", t.ExitedAt.UTC().Format(time.RFC3339))
	for _, nv := range t.Features.Named() {
		v := cell(nv.Value)
		if v == "" {
			v = "-"
		}
		prop(&b, strings.ToUpper(nv.Name), v)
	}
	b.WriteString(":END:\n")

	return b.String()
}

func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for _, t := range trades {
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func prop(b *strings.Builder, k, v string) {
	fmt.Fprintf(b, ":%s: %s\n", k, v)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
