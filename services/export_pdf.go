package services

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"budgetproposal/proposal"
)

var (
	pdfDark     = &props.Color{Red: 27, Green: 67, Blue: 50}
	pdfAccent   = &props.Color{Red: 82, Green: 183, Blue: 136}
	pdfLight    = &props.Color{Red: 240, Green: 247, Blue: 244}
	pdfGrey     = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfGold     = &props.Color{Red: 255, Green: 215, Blue: 0}
	pdfBlack    = &props.Color{Red: 0, Green: 0, Blue: 0}
	pdfAltRowBg = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// GeneratePDF creates the proposal report using maroto/v2: an executive
// summary, quarterly detail pages (two quarters per page), a page for the
// remaining groups and a closing grand-total box. It returns the raw PDF
// bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	m.AddPages(summaryPage(data))

	var quarters, others []ExportGroup
	for _, g := range data.Groups {
		if g.Kind == proposal.KindQuarter {
			quarters = append(quarters, g)
		} else {
			others = append(others, g)
		}
	}
	for i := 0; i < len(quarters); i += 2 {
		end := min(i+2, len(quarters))
		var rows []core.Row
		for _, g := range quarters[i:end] {
			rows = append(rows, groupDetailRows(data, g, false)...)
		}
		m.AddPages(page.New().Add(rows...))
	}
	if len(others) > 0 {
		var rows []core.Row
		for _, g := range others {
			rows = append(rows, groupDetailRows(data, g, true)...)
		}
		m.AddPages(page.New().Add(rows...))
	}

	m.AddPages(grandTotalPage(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// pdfText maps text onto the characters the built-in PDF fonts can show.
// Anything outside Latin-1 is dropped.
func pdfText(s string) string {
	s = strings.NewReplacer("–", "-", "—", "-", "’", "'", "“", "\"", "”", "\"", "★", "*", "▶", ">", "←", "<-").Replace(s)
	return strings.Map(func(r rune) rune {
		if r > 0xFF {
			return -1
		}
		return r
	}, s)
}

func textCell(size int, s string, p props.Text) core.Col {
	return col.New(size).Add(text.New(pdfText(s), p))
}

// headerRows returns the title block shown at the top of every page.
func headerRows(data ExportData, subtitle string) []core.Row {
	rows := []core.Row{
		row.New(12).Add(
			textCell(12, data.Title, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: pdfDark,
			}),
		),
		row.New(7).Add(
			textCell(12, subtitle, props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: pdfAccent,
			}),
		),
		row.New(7).Add(
			textCell(6, fmt.Sprintf("Reference: %s", data.Reference), props.Text{
				Size:  9,
				Align: align.Left,
				Color: pdfGrey,
			}),
			textCell(6, fmt.Sprintf("Date: %s", data.GeneratedDate), props.Text{
				Size:  9,
				Align: align.Right,
				Color: pdfGrey,
			}),
		),
		row.New(4),
	}
	return rows
}

// tableHeader returns a charcoal header row. sizes must add up to 12.
func tableHeader(headers []string, sizes []int) core.Row {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: pdfWhite,
	}
	cols := make([]core.Col, len(headers))
	for i, h := range headers {
		p := headerText
		if i == 1 {
			p.Align = align.Left
		}
		cols[i] = textCell(sizes[i], h, p).WithStyle(headerCell)
	}
	return row.New(8).Add(cols...)
}

// labelValueRow returns a right-aligned label and amount spanning the page.
func labelValueRow(label, value string, cell *props.Cell, p props.Text) core.Row {
	labelStyle := p
	labelStyle.Align = align.Right
	valueStyle := p
	valueStyle.Align = align.Right
	return row.New(8).Add(
		textCell(8, label, labelStyle).WithStyle(cell),
		textCell(4, value, valueStyle).WithStyle(cell),
	)
}

// ── Executive summary ───────────────────────────────────────────────────

func summaryPage(data ExportData) core.Page {
	rows := headerRows(data, "EXECUTIVE SUMMARY")

	intro := fmt.Sprintf("%d events across %d groups for %s. Agency commission %s per event; VAT %s on the grand total.",
		data.EventCount(), len(data.Groups), data.Client, FormatRate(data.CommissionRate), FormatRate(data.TaxRate))
	rows = append(rows,
		row.New(8).Add(textCell(12, intro, props.Text{Size: 9, Align: align.Left})),
		row.New(3),
	)

	sizes := []int{1, 5, 2, 2, 2}
	rows = append(rows, tableHeader([]string{"#", "Group", "Events", "Total (" + data.Currency + ")", "Share"}, sizes))
	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right
	for i, g := range data.Groups {
		style := &props.Cell{BackgroundColor: pdfWhite}
		if i%2 == 1 {
			style = &props.Cell{BackgroundColor: pdfAltRowBg}
		}
		rows = append(rows, row.New(7).Add(
			textCell(sizes[0], fmt.Sprintf("%d", i+1), base).WithStyle(style),
			textCell(sizes[1], g.Label, left).WithStyle(style),
			textCell(sizes[2], fmt.Sprintf("%d", len(g.Events)), base).WithStyle(style),
			textCell(sizes[3], FormatAmount(g.Total), right).WithStyle(style),
			textCell(sizes[4], FormatPercent(g.Share), base).WithStyle(style),
		))
	}

	rows = append(rows, row.New(6))
	rows = append(rows, totalsRows(data)...)
	rows = append(rows, footerRow(data))
	return page.New().Add(rows...)
}

// totalsRows returns the ex-VAT, VAT and inc-VAT lines.
func totalsRows(data ExportData) []core.Row {
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	p := props.Text{Size: 9, Style: fontstyle.Bold}
	return []core.Row{
		labelValueRow("All Events Subtotal", FormatMoney(data.Currency, data.EventsTotal), summaryCell, p),
		labelValueRow("Grand Total (Excluding VAT)", FormatMoney(data.Currency, data.ExVAT), summaryCell, p),
		labelValueRow("VAT ("+FormatRate(data.TaxRate)+")", FormatMoney(data.Currency, data.VAT), summaryCell, p),
		labelValueRow("Grand Total (Including VAT)", FormatMoney(data.Currency, data.IncVAT),
			&props.Cell{BackgroundColor: pdfDark}, props.Text{Size: 10, Style: fontstyle.Bold, Color: pdfWhite}),
	}
}

func footerRow(data ExportData) core.Row {
	line := fmt.Sprintf("Generated on %s", data.GeneratedDate)
	if data.DocumentID != "" {
		line += " | Document ID " + data.DocumentID
	}
	return row.New(8).Add(
		textCell(12, line, props.Text{
			Size:  7,
			Top:   3,
			Align: align.Left,
			Color: &props.Color{Red: 140, Green: 140, Blue: 140},
		}),
	)
}

// ── Group detail ────────────────────────────────────────────────────────

// groupDetailRows lists a group's events with their totals. With items set,
// every event is followed by its priced line items.
func groupDetailRows(data ExportData, g ExportGroup, items bool) []core.Row {
	rows := []core.Row{
		row.New(9).Add(
			textCell(12, g.Label, props.Text{
				Size:  11,
				Style: fontstyle.Bold,
				Top:   1.5,
				Left:  2,
				Color: pdfWhite,
			}).WithStyle(&props.Cell{BackgroundColor: pdfDark}),
		),
	}

	sizes := []int{1, 4, 2, 1, 1, 1, 2}
	rows = append(rows, tableHeader([]string{"#", "Event", "Date", "Guests", "Subtotal", "Commission", "Total"}, sizes))

	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right
	for i, ev := range g.Events {
		style := &props.Cell{BackgroundColor: pdfWhite}
		if i%2 == 1 {
			style = &props.Cell{BackgroundColor: pdfAltRowBg}
		}
		rows = append(rows, row.New(7).Add(
			textCell(sizes[0], ev.Number, base).WithStyle(style),
			textCell(sizes[1], ev.Name, left).WithStyle(style),
			textCell(sizes[2], ev.Date, base).WithStyle(style),
			textCell(sizes[3], fmt.Sprintf("%d", ev.Attendance), base).WithStyle(style),
			textCell(sizes[4], FormatAmount(ev.Subtotal), right).WithStyle(style),
			textCell(sizes[5], FormatAmount(ev.Commission), right).WithStyle(style),
			textCell(sizes[6], FormatAmount(ev.Total), right).WithStyle(style),
		))
		if items {
			rows = append(rows, itemRows(ev)...)
		}
	}

	rows = append(rows,
		labelValueRow(strings.ToUpper(g.Name)+" TOTAL", FormatMoney(data.Currency, g.Total),
			&props.Cell{BackgroundColor: pdfAccent}, props.Text{Size: 9, Style: fontstyle.Bold, Color: pdfWhite}),
		row.New(6),
	)
	return rows
}

func itemRows(ev ExportEvent) []core.Row {
	cell := &props.Cell{BackgroundColor: pdfLight}
	p := props.Text{Size: 6.5, Align: align.Left, Left: 4}
	right := props.Text{Size: 6.5, Align: align.Right}
	rows := make([]core.Row, 0, len(ev.Items))
	for _, it := range ev.Items {
		rows = append(rows, row.New(5).Add(
			textCell(1, "", p).WithStyle(cell),
			textCell(5, it.Description, p).WithStyle(cell),
			textCell(2, formatQty(it.Quantity)+" x "+FormatAmount(it.UnitPrice), right).WithStyle(cell),
			textCell(2, it.Unit, props.Text{Size: 6.5, Align: align.Center}).WithStyle(cell),
			textCell(2, FormatAmount(it.Total), right).WithStyle(cell),
		))
	}
	return rows
}

// ── Grand total ─────────────────────────────────────────────────────────

func grandTotalPage(data ExportData) core.Page {
	rows := headerRows(data, "FINAL BUDGET SUMMARY")

	p := props.Text{Size: 10, Style: fontstyle.Bold}
	box := &props.Cell{BackgroundColor: pdfLight}
	for _, g := range data.Groups {
		rows = append(rows, labelValueRow(g.Label, FormatMoney(data.Currency, g.Total), box, props.Text{Size: 9}))
	}
	rows = append(rows, row.New(4))
	rows = append(rows, labelValueRow("Grand Total (Excluding VAT)", FormatMoney(data.Currency, data.ExVAT), box, p))
	rows = append(rows, labelValueRow("VAT ("+FormatRate(data.TaxRate)+")", FormatMoney(data.Currency, data.VAT), box, p))
	rows = append(rows, row.New(2))
	rows = append(rows, row.New(14).Add(
		textCell(8, "GRAND TOTAL (INCLUDING VAT)", props.Text{
			Size: 14, Style: fontstyle.Bold, Align: align.Right, Top: 3, Color: pdfGold,
		}).WithStyle(&props.Cell{BackgroundColor: pdfBlack}),
		textCell(4, FormatMoney(data.Currency, data.IncVAT), props.Text{
			Size: 14, Style: fontstyle.Bold, Align: align.Right, Top: 3, Color: pdfGold,
		}).WithStyle(&props.Cell{BackgroundColor: pdfBlack}),
	))
	if data.WithContingency != nil && data.ContingencyRate != nil {
		rows = append(rows, row.New(3))
		rows = append(rows, labelValueRow(
			"With "+FormatRate(*data.ContingencyRate)+" Contingency Reserve",
			FormatMoney(data.Currency, *data.WithContingency), box, props.Text{Size: 9, Style: fontstyle.Italic}))
	}
	rows = append(rows, footerRow(data))
	return page.New().Add(rows...)
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty decimal.Decimal) string {
	if qty.Equal(qty.Truncate(0)) {
		return qty.StringFixed(0)
	}
	return qty.StringFixed(2)
}
