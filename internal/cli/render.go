package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	salesdto "github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"github.com/shopspring/decimal"
)

var (
	primaryColor = lipgloss.Color("#A78BFA")
	greenColor   = lipgloss.Color("#10B981")
	redColor     = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")
	borderColor  = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	upStyle     = lipgloss.NewStyle().Foreground(greenColor)
	downStyle   = lipgloss.NewStyle().Foreground(redColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// signed colours a movement: red below zero, green above.
func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	switch {
	case d.IsNegative():
		return downStyle.Render(s)
	case d.IsPositive():
		return upStyle.Render("+" + s)
	}
	return s
}

func pct(p decimal.NullDecimal) string {
	if !p.Valid {
		return "n/a"
	}
	return p.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

func renderReport(w io.Writer, rep *salesdto.Report) {
	title := "Top decliners"
	if rep.Kind == salesdto.ReportGrowers {
		title = "Top growers"
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	t := newTable("#", "Customer", "CY sales", "PY sales", "YoY", "YoY %", "Score")
	for i, sr := range rep.Rows {
		t.Row(
			strconv.Itoa(i+1),
			sr.Row.CustomerID,
			money(sr.Row.CYSales),
			money(sr.Row.PYSales),
			signed(sr.Row.YoYDelta()),
			pct(sr.Row.YoYPct()),
			strconv.FormatFloat(sr.Score, 'f', 3, 64),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d shown of %d matched · source %s · %d excluded",
		len(rep.Rows), rep.Matched, rep.Source, rep.Excluded)))
}

func renderSummary(w io.Writer, s *salesdto.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Portfolio summary"))
	t := newTable("Metric", "Value").
		Row("Source", s.Source).
		Row("Customers", strconv.Itoa(s.Customers)).
		Row("Decliners", strconv.Itoa(s.Decliners)).
		Row("Growers", strconv.Itoa(s.Growers)).
		Row("Flat", strconv.Itoa(s.Flat)).
		Row("Decline total", signed(s.DeclineTotal)).
		Row("Growth total", signed(s.GrowthTotal)).
		Row("Net momentum", signed(s.NetMomentum)).
		Row("CY total", money(s.CYTotal)).
		Row("PY total", money(s.PYTotal)).
		Row("Excluded", strconv.Itoa(s.Excluded))
	if s.TopDecliner != "" {
		t.Row("Top decliner", s.TopDecliner)
	}
	if s.TopGrower != "" {
		t.Row("Top grower", s.TopGrower)
	}
	fmt.Fprintln(w, t.Render())
}

func renderOnePager(w io.Writer, op *model.OnePager) {
	h := op.Headline
	fmt.Fprintln(w, titleStyle.Render("Customer "+op.CustomerID))
	fmt.Fprintln(w, newTable("", "CY", "PY", "Change").
		Row("Net sales", money(h.CYSales), money(h.PYSales), signed(h.YoYDelta())).
		Row("YoY %", "", "", pct(h.YoYPct())).
		Row("Gross margin", money(h.CYGrossMargin), money(h.PYGrossMargin), signed(h.CYGrossMargin.Sub(h.PYGrossMargin))).
		Render())

	fmt.Fprintln(w, titleStyle.Render("Price / volume / mix"))
	fmt.Fprintln(w, newTable("Component", "Impact").
		Row("Price", signed(op.PVM.PriceEffect)).
		Row("Volume", signed(op.PVM.VolumeEffect)).
		Row("Mix", signed(op.PVM.MixEffect)).
		Row("Discontinued", signed(op.PVM.DiscontinuedAdjustment)).
		Row("New business", signed(op.PVM.NewBusinessAdjustment)).
		Row("Returns", signed(op.Returns.Impact)).
		Render())

	if len(op.Branches) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Branches"))
		bt := newTable("Branch", "CY", "PY", "Change")
		for _, b := range op.Branches {
			bt.Row(b.Branch, money(b.CYSales), money(b.PYSales), signed(b.Delta))
		}
		fmt.Fprintln(w, bt.Render())
	}

	if len(op.Lines) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Product lines"))
		lt := newTable("Category", "Status", "CY revenue", "PY revenue", "Price", "Volume")
		for _, l := range op.Lines {
			lt.Row(l.Category, string(l.Status), money(l.CYRevenue), money(l.PYRevenue), signed(l.PriceEffect), signed(l.VolumeEffect))
		}
		fmt.Fprintln(w, lt.Render())
	}
}

func renderActions(w io.Writer, actions []model.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No actions"))
		return
	}
	t := newTable("ID", "Customer", "Status", "Accepted", "Review", "Description")
	for _, a := range actions {
		t.Row(a.ID, a.CustomerID, a.Status.Label(), a.DateAccepted.Format("2006-01-02"), a.ReviewDate.Format("2006-01-02"), a.Description)
	}
	fmt.Fprintln(w, t.Render())
}

func renderCounts(w io.Writer, c *dto.StatusCounts) {
	fmt.Fprintln(w, newTable("Status", "Count").
		Row(model.ActionWaiting.Label(), strconv.Itoa(c.Waiting)).
		Row(model.ActionInProgress.Label(), strconv.Itoa(c.InProgress)).
		Row(model.ActionComplete.Label(), strconv.Itoa(c.Complete)).
		Row("Overdue", strconv.Itoa(c.Overdue)).
		Row("Total", strconv.Itoa(c.Total)).
		Render())
}
