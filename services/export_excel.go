package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"budgetproposal/proposal"
)

// Sheet names, in workbook order.
const (
	SheetCalendar  = "Event Calendar"
	SheetTechnical = "Technical Proposal"
	SheetFinancial = "Financial Proposal"
	SheetSports    = "Sports Budget"
	SheetNotes     = "Assumptions & Notes"
)

// WorkbookSheets lists the sheets GenerateWorkbook produces, in order.
var WorkbookSheets = []string{SheetCalendar, SheetTechnical, SheetFinancial, SheetSports, SheetNotes}

// sportsTotalCell holds the sports grand total; other sheets reference it.
const sportsTotalCell = "E2"

const amountFormat = "#,##0.00"

// workbook bundles the file with its shared styles and the rows that other
// sheets reference.
type workbook struct {
	f    *excelize.File
	data ExportData
	st   workbookStyles

	quarterRows map[string]int // group key -> total row on the financial sheet
	otherRows   map[string]int
	exVATRow    int
}

type workbookStyles struct {
	title, subtitle, section, header           int
	data, dataAlt, amount, amountAlt, note     int
	eventHeader, subtotal, subtotalAmount      int
	groupTotal, groupTotalAmount               int
	grand, grandAmount, final, finalAmount     int
	link, percent, tierMajor, tierMedium, wrap int
}

// GenerateWorkbook creates the proposal workbook and returns the file
// contents as a byte slice. Sheets are filled in dependency order: the
// sports budget first, then the financial proposal that references it,
// then the calendar that references both.
func GenerateWorkbook(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename default sheet and add the rest in order.
	if err := f.SetSheetName(f.GetSheetName(0), WorkbookSheets[0]); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for _, name := range WorkbookSheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	st, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}
	wb := &workbook{
		f:           f,
		data:        data,
		st:          st,
		quarterRows: make(map[string]int),
		otherRows:   make(map[string]int),
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{SheetSports, wb.sportsSheet},
		{SheetFinancial, wb.financialSheet},
		{SheetCalendar, wb.calendarSheet},
		{SheetTechnical, wb.technicalSheet},
		{SheetNotes, wb.notesSheet},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s sheet: %w", strings.ToLower(s.name), err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// ── Styles ──────────────────────────────────────────────────────────────

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var st workbookStyles
	numFmt := amountFormat
	pctFmt := "0.0%"

	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	defs := []struct {
		name  string
		dst   *int
		style *excelize.Style
	}{
		{"title", &st.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14, Color: "#FFFFFF"},
			Fill:      fill("#1B4332"),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{"subtitle", &st.subtitle, &excelize.Style{
			Font: &excelize.Font{Italic: true, Size: 10, Color: "#1B4332"},
		}},
		{"section", &st.section, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
			Fill: fill("#2D6A4F"),
		}},
		{"header", &st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:      fill("#333333"),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    thinBorders(),
		}},
		{"data", &st.data, &excelize.Style{
			Font:   &excelize.Font{Size: 10},
			Border: thinBorders(),
		}},
		{"data alt", &st.dataAlt, &excelize.Style{
			Font:   &excelize.Font{Size: 10},
			Fill:   fill("#F0F7F4"),
			Border: thinBorders(),
		}},
		{"amount", &st.amount, &excelize.Style{
			Font:         &excelize.Font{Size: 10},
			Border:       thinBorders(),
			CustomNumFmt: &numFmt,
		}},
		{"amount alt", &st.amountAlt, &excelize.Style{
			Font:         &excelize.Font{Size: 10},
			Fill:         fill("#F0F7F4"),
			Border:       thinBorders(),
			CustomNumFmt: &numFmt,
		}},
		{"note", &st.note, &excelize.Style{
			Font:   &excelize.Font{Size: 9, Color: "#666666"},
			Border: thinBorders(),
		}},
		{"event header", &st.eventHeader, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 11, Color: "#1B4332"},
			Fill: fill("#B7E4C7"),
		}},
		{"subtotal", &st.subtotal, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 10},
			Border: thinBorders(),
		}},
		{"subtotal amount", &st.subtotalAmount, &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 10},
			Border:       thinBorders(),
			CustomNumFmt: &numFmt,
		}},
		{"group total", &st.groupTotal, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:   fill("#52B788"),
			Border: thinBorders(),
		}},
		{"group total amount", &st.groupTotalAmount, &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:         fill("#52B788"),
			Border:       thinBorders(),
			CustomNumFmt: &numFmt,
		}},
		{"grand", &st.grand, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
			Fill:   fill("#1B4332"),
			Border: thinBorders(),
		}},
		{"grand amount", &st.grandAmount, &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
			Fill:         fill("#1B4332"),
			Border:       thinBorders(),
			CustomNumFmt: &numFmt,
		}},
		{"final", &st.final, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 12, Color: "#FFD700"},
			Fill:   fill("#000000"),
			Border: thinBorders(),
		}},
		{"final amount", &st.finalAmount, &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 12, Color: "#FFD700"},
			Fill:         fill("#000000"),
			Border:       thinBorders(),
			CustomNumFmt: &numFmt,
		}},
		{"link", &st.link, &excelize.Style{
			Font:   &excelize.Font{Italic: true, Size: 9, Color: "#0563C1"},
			Border: thinBorders(),
		}},
		{"percent", &st.percent, &excelize.Style{
			Font:         &excelize.Font{Size: 10},
			Border:       thinBorders(),
			CustomNumFmt: &pctFmt,
		}},
		{"tier major", &st.tierMajor, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 10},
			Fill:   fill("#FFD700"),
			Border: thinBorders(),
		}},
		{"tier medium", &st.tierMedium, &excelize.Style{
			Font:   &excelize.Font{Size: 10},
			Fill:   fill("#87CEEB"),
			Border: thinBorders(),
		}},
		{"wrap", &st.wrap, &excelize.Style{
			Font:      &excelize.Font{Size: 10},
			Border:    thinBorders(),
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return st, nil
}

// ── Cell helpers ────────────────────────────────────────────────────────

func cellRef(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func (wb *workbook) setText(sheet, col string, row int, s string) {
	wb.f.SetCellValue(sheet, cellRef(col, row), sanitizeExcelCell(s))
}

// setAmount writes the computed amount as the cell value. When formulas are
// enabled the formula is attached as well; the computed value stays as the
// cached result so readers that never recalculate see the same number.
func (wb *workbook) setAmount(sheet, col string, row int, v decimal.Decimal, formula string) {
	ref := cellRef(col, row)
	wb.f.SetCellValue(sheet, ref, v.InexactFloat64())
	if wb.data.Formulas && formula != "" {
		wb.f.SetCellFormula(sheet, ref, formula)
	}
}

func (wb *workbook) style(sheet, from, to string, row, style int) {
	wb.f.SetCellStyle(sheet, cellRef(from, row), cellRef(to, row), style)
}

func (wb *workbook) titleRow(sheet string, row int, lastCol, text string, style int) error {
	if err := wb.f.MergeCell(sheet, cellRef("A", row), cellRef(lastCol, row)); err != nil {
		return fmt.Errorf("merge row %d: %w", row, err)
	}
	wb.setText(sheet, "A", row, text)
	wb.style(sheet, "A", lastCol, row, style)
	return nil
}

func (wb *workbook) headerRow(sheet string, row int, headers []string) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		wb.setText(sheet, col, row, h)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	wb.style(sheet, "A", last, row, wb.st.header)
}

func (wb *workbook) widths(sheet string, widths []float64) error {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := wb.f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	return nil
}

func (wb *workbook) freeze(sheet, topLeft string) error {
	col, row, err := excelize.CellNameToCoordinates(topLeft)
	if err != nil {
		return err
	}
	return wb.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      col - 1,
		YSplit:      row - 1,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

func (wb *workbook) subtitle() string {
	parts := []string{}
	if wb.data.Client != "" {
		parts = append(parts, wb.data.Client)
	}
	if wb.data.Reference != "" {
		parts = append(parts, "Ref: "+wb.data.Reference)
	}
	parts = append(parts, "Agency Commission: "+FormatRate(wb.data.CommissionRate))
	if wb.data.DocumentID != "" {
		parts = append(parts, "Doc ID: "+wb.data.DocumentID)
	}
	return strings.Join(parts, " | ")
}

func sumFormula(col string, rows []int) string {
	if len(rows) == 0 {
		return "0"
	}
	refs := make([]string, len(rows))
	for i, r := range rows {
		refs[i] = cellRef(col, r)
	}
	return strings.Join(refs, "+")
}

// ── Itemized events (financial and sports sheets) ───────────────────────

var itemHeaders = []string{"Cost Item", "Unit", "Qty", "Unit Price", "Total", "Notes"}

// eventBlock writes one event's items and totals starting at row and returns
// the row of the event total and the next free row.
func (wb *workbook) eventBlock(sheet string, row int, ev ExportEvent) (totalRow, next int, err error) {
	header := fmt.Sprintf("%s | Date: %s | Attendance: %d", ev.Name, ev.Date, ev.Attendance)
	if ev.Venue != "" {
		header += " | " + ev.Venue
	}
	if err := wb.titleRow(sheet, row, "F", header, wb.st.eventHeader); err != nil {
		return 0, 0, err
	}
	row++

	cols := append([]string(nil), itemHeaders...)
	cols[3] = "Unit Price (" + wb.data.Currency + ")"
	cols[4] = "Total (" + wb.data.Currency + ")"
	wb.headerRow(sheet, row, cols)
	row++

	first := row
	for i, it := range ev.Items {
		dataStyle, amountStyle := wb.st.data, wb.st.amount
		if i%2 == 1 {
			dataStyle, amountStyle = wb.st.dataAlt, wb.st.amountAlt
		}
		wb.setText(sheet, "A", row, it.Description)
		wb.setText(sheet, "B", row, it.Unit)
		wb.f.SetCellValue(sheet, cellRef("C", row), it.Quantity.InexactFloat64())
		wb.f.SetCellValue(sheet, cellRef("D", row), it.UnitPrice.InexactFloat64())
		wb.setAmount(sheet, "E", row, it.Total, fmt.Sprintf("C%d*D%d", row, row))
		wb.setText(sheet, "F", row, it.Note)
		wb.style(sheet, "A", "C", row, dataStyle)
		wb.style(sheet, "D", "E", row, amountStyle)
		wb.style(sheet, "F", "F", row, wb.st.note)
		row++
	}
	last := row - 1

	subtotalFormula := "0"
	if len(ev.Items) > 0 {
		subtotalFormula = fmt.Sprintf("SUM(E%d:E%d)", first, last)
	}
	wb.setText(sheet, "A", row, "Subtotal (Before Commission)")
	wb.setAmount(sheet, "E", row, ev.Subtotal, subtotalFormula)
	wb.style(sheet, "A", "D", row, wb.st.subtotal)
	wb.style(sheet, "E", "E", row, wb.st.subtotalAmount)
	wb.style(sheet, "F", "F", row, wb.st.note)
	subtotalRow := row
	row++

	rate := FormatRate(wb.data.CommissionRate)
	wb.setText(sheet, "A", row, "Agency Commission ("+rate+")")
	wb.setText(sheet, "B", row, rate)
	wb.setAmount(sheet, "E", row, ev.Commission, fmt.Sprintf("E%d*%s", subtotalRow, wb.data.CommissionRate.String()))
	wb.setText(sheet, "F", row, "Agency management, planning & execution fee")
	wb.style(sheet, "A", "D", row, wb.st.subtotal)
	wb.style(sheet, "E", "E", row, wb.st.subtotalAmount)
	wb.style(sheet, "F", "F", row, wb.st.note)
	commissionRow := row
	row++

	wb.setText(sheet, "A", row, ev.Name+" - TOTAL")
	wb.setAmount(sheet, "E", row, ev.Total, fmt.Sprintf("E%d+E%d", subtotalRow, commissionRow))
	wb.style(sheet, "A", "D", row, wb.st.groupTotal)
	wb.style(sheet, "E", "E", row, wb.st.groupTotalAmount)
	wb.style(sheet, "F", "F", row, wb.st.groupTotal)
	totalRow = row

	return totalRow, row + 2, nil
}

// ── Sports Budget ───────────────────────────────────────────────────────

func (wb *workbook) sportsSheet() error {
	sheet := SheetSports
	if err := wb.widths(sheet, []float64{45, 14, 8, 18, 18, 40}); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 1, "F", strings.ToUpper(wb.data.Title)+" - SPORTS BUDGET", wb.st.title); err != nil {
		return err
	}

	// Row 2 is reserved for the grand total; it is filled once the event
	// totals rows are known.
	wb.setText(sheet, "A", 2, "SPORTS GRAND TOTAL (inc. "+FormatRate(wb.data.CommissionRate)+" Commission)")
	wb.style(sheet, "A", "D", 2, wb.st.grand)
	wb.style(sheet, "E", "E", 2, wb.st.grandAmount)
	wb.style(sheet, "F", "F", 2, wb.st.grand)

	row := 4
	var totals []int
	for _, g := range wb.data.GroupsOn(proposal.SheetSports) {
		if err := wb.titleRow(sheet, row, "F", g.Label, wb.st.section); err != nil {
			return err
		}
		row++
		for _, ev := range g.Events {
			totalRow, next, err := wb.eventBlock(sheet, row, ev)
			if err != nil {
				return err
			}
			totals = append(totals, totalRow)
			row = next
		}
	}
	wb.setAmount(sheet, "E", 2, wb.data.SportsTotal, sumFormula("E", totals))

	return wb.freeze(sheet, "A4")
}

// ── Financial Proposal ──────────────────────────────────────────────────

func (wb *workbook) financialSheet() error {
	sheet := SheetFinancial
	d := wb.data
	if err := wb.widths(sheet, []float64{45, 14, 8, 18, 18, 40}); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 1, "F", strings.ToUpper(d.Title)+" - FINANCIAL PROPOSAL", wb.st.title); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 2, "F", wb.subtitle(), wb.st.subtitle); err != nil {
		return err
	}
	if d.GeneratedDate != "" {
		wb.setText(sheet, "A", 3, "Date: "+d.GeneratedDate)
	}

	row := 5
	groups := d.GroupsOn(proposal.SheetFinancial)
	eventRows := make(map[string][]int, len(groups))
	for _, g := range groups {
		if err := wb.titleRow(sheet, row, "F", g.Label, wb.st.section); err != nil {
			return err
		}
		row++
		for _, ev := range g.Events {
			totalRow, next, err := wb.eventBlock(sheet, row, ev)
			if err != nil {
				return err
			}
			eventRows[g.Key] = append(eventRows[g.Key], totalRow)
			row = next
		}
	}

	row++
	if err := wb.titleRow(sheet, row, "F", "QUARTERLY & ANNUAL TOTALS", wb.st.section); err != nil {
		return err
	}
	row++

	groupRow := func(g ExportGroup) {
		wb.setText(sheet, "A", row, strings.ToUpper(g.Name)+" TOTAL")
		wb.setAmount(sheet, "E", row, g.Total, sumFormula("E", eventRows[g.Key]))
		wb.setText(sheet, "F", row, fmt.Sprintf("%d events", len(g.Events)))
		wb.style(sheet, "A", "D", row, wb.st.groupTotal)
		wb.style(sheet, "E", "E", row, wb.st.groupTotalAmount)
		wb.style(sheet, "F", "F", row, wb.st.groupTotal)
	}

	var quarterRows, exVATParts []int
	for _, g := range groups {
		if g.Kind != proposal.KindQuarter {
			continue
		}
		groupRow(g)
		wb.quarterRows[g.Key] = row
		quarterRows = append(quarterRows, row)
		row++
	}

	row++
	wb.setText(sheet, "A", row, "ALL EVENTS SUBTOTAL")
	wb.setAmount(sheet, "E", row, d.EventsTotal, sumFormula("E", quarterRows))
	wb.style(sheet, "A", "D", row, wb.st.grand)
	wb.style(sheet, "E", "E", row, wb.st.grandAmount)
	wb.style(sheet, "F", "F", row, wb.st.grand)
	exVATParts = append(exVATParts, row)
	row += 2

	for _, g := range groups {
		if g.Kind == proposal.KindQuarter {
			continue
		}
		groupRow(g)
		wb.otherRows[g.Key] = row
		exVATParts = append(exVATParts, row)
		row++
	}

	if len(d.GroupsOn(proposal.SheetSports)) > 0 {
		wb.setText(sheet, "A", row, "Sports Events Total")
		wb.setAmount(sheet, "E", row, d.SportsTotal, fmt.Sprintf("'%s'!%s", SheetSports, sportsTotalCell))
		wb.setText(sheet, "F", row, "Linked from "+SheetSports+" sheet")
		wb.style(sheet, "A", "D", row, wb.st.subtotal)
		wb.style(sheet, "E", "E", row, wb.st.subtotalAmount)
		wb.style(sheet, "F", "F", row, wb.st.link)
		exVATParts = append(exVATParts, row)
		row++
	}
	row++

	wb.setText(sheet, "A", row, "GRAND TOTAL (Excluding VAT)")
	wb.setAmount(sheet, "E", row, d.ExVAT, sumFormula("E", exVATParts))
	wb.style(sheet, "A", "D", row, wb.st.grand)
	wb.style(sheet, "E", "E", row, wb.st.grandAmount)
	wb.style(sheet, "F", "F", row, wb.st.grand)
	wb.exVATRow = row
	row++

	wb.setText(sheet, "A", row, "VAT ("+FormatRate(d.TaxRate)+")")
	wb.setAmount(sheet, "E", row, d.VAT, fmt.Sprintf("E%d*%s", wb.exVATRow, d.TaxRate.String()))
	wb.style(sheet, "A", "D", row, wb.st.subtotal)
	wb.style(sheet, "E", "E", row, wb.st.subtotalAmount)
	vatRow := row
	row++

	wb.setText(sheet, "A", row, "GRAND TOTAL (Including "+FormatRate(d.TaxRate)+" VAT)")
	wb.setAmount(sheet, "E", row, d.IncVAT, fmt.Sprintf("E%d+E%d", wb.exVATRow, vatRow))
	wb.style(sheet, "A", "D", row, wb.st.final)
	wb.style(sheet, "E", "E", row, wb.st.finalAmount)
	wb.style(sheet, "F", "F", row, wb.st.final)
	incVATRow := row
	row += 2

	if d.WithContingency != nil && d.ContingencyRate != nil {
		wb.setText(sheet, "A", row, "With "+FormatRate(*d.ContingencyRate)+" Contingency Reserve")
		factor := decimal.NewFromInt(1).Add(*d.ContingencyRate)
		wb.setAmount(sheet, "E", row, *d.WithContingency, fmt.Sprintf("E%d*%s", incVATRow, factor.String()))
		wb.style(sheet, "A", "D", row, wb.st.subtotal)
		wb.style(sheet, "E", "E", row, wb.st.subtotalAmount)
	}

	return wb.freeze(sheet, "A5")
}

// ── Event Calendar ──────────────────────────────────────────────────────

func (wb *workbook) calendarSheet() error {
	sheet := SheetCalendar
	d := wb.data
	if err := wb.widths(sheet, []float64{6, 38, 26, 16, 12, 24, 16, 12}); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 1, "H", strings.ToUpper(d.Title)+" - ANNUAL EVENT CALENDAR & BUDGET OVERVIEW", wb.st.title); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 2, "H", wb.subtitle(), wb.st.subtitle); err != nil {
		return err
	}

	wb.headerRow(sheet, 4, []string{"#", "Event Name", "Arabic Name", "Date", "Group", "Category", "Est. Attendance", "Event Tier"})
	row := 5
	i := 0
	for _, g := range d.Groups {
		for _, ev := range g.Events {
			style := wb.st.data
			if i%2 == 1 {
				style = wb.st.dataAlt
			}
			wb.setText(sheet, "A", row, ev.Number)
			wb.setText(sheet, "B", row, ev.Name)
			wb.setText(sheet, "C", row, ev.NameAR)
			wb.setText(sheet, "D", row, ev.Date)
			wb.setText(sheet, "E", row, ev.Group)
			wb.setText(sheet, "F", row, ev.Category)
			wb.f.SetCellValue(sheet, cellRef("G", row), ev.Attendance)
			wb.setText(sheet, "H", row, ev.Tier)
			wb.style(sheet, "A", "G", row, style)
			switch ev.Tier {
			case "Major":
				wb.style(sheet, "H", "H", row, wb.st.tierMajor)
			case "Medium":
				wb.style(sheet, "H", "H", row, wb.st.tierMedium)
			default:
				wb.style(sheet, "H", "H", row, style)
			}
			row++
			i++
		}
	}

	row += 2
	if err := wb.titleRow(sheet, row, "D", "BUDGET SUMMARY", wb.st.section); err != nil {
		return err
	}
	row++
	wb.headerRow(sheet, row, []string{"Category", "# Events", "Total (" + d.Currency + ")", "% of Annual"})
	row++

	grandRow := row + len(d.Groups)
	for _, g := range d.Groups {
		wb.setText(sheet, "A", row, g.Name)
		wb.f.SetCellValue(sheet, cellRef("B", row), len(g.Events))
		wb.setAmount(sheet, "C", row, g.Total, wb.groupRef(g))
		wb.setAmount(sheet, "D", row, g.Share.Div(decimal.NewFromInt(100)), fmt.Sprintf("IF(C%d=0,0,C%d/C%d)", grandRow, row, grandRow))
		wb.style(sheet, "A", "B", row, wb.st.subtotal)
		wb.style(sheet, "C", "C", row, wb.st.subtotalAmount)
		wb.style(sheet, "D", "D", row, wb.st.percent)
		row++
	}

	wb.setText(sheet, "A", row, "GRAND TOTAL (ex-VAT)")
	wb.setAmount(sheet, "C", row, d.ExVAT, fmt.Sprintf("'%s'!E%d", SheetFinancial, wb.exVATRow))
	wb.style(sheet, "A", "B", row, wb.st.groupTotal)
	wb.style(sheet, "C", "C", row, wb.st.groupTotalAmount)
	wb.style(sheet, "D", "D", row, wb.st.groupTotal)
	row++

	wb.setText(sheet, "A", row, "VAT ("+FormatRate(d.TaxRate)+")")
	wb.setAmount(sheet, "C", row, d.VAT, fmt.Sprintf("C%d*%s", row-1, d.TaxRate.String()))
	wb.style(sheet, "A", "B", row, wb.st.subtotal)
	wb.style(sheet, "C", "C", row, wb.st.subtotalAmount)
	row++

	wb.setText(sheet, "A", row, "GRAND TOTAL (inc. VAT)")
	wb.setAmount(sheet, "C", row, d.IncVAT, fmt.Sprintf("C%d+C%d", row-2, row-1))
	wb.style(sheet, "A", "B", row, wb.st.grand)
	wb.style(sheet, "C", "C", row, wb.st.grandAmount)
	wb.style(sheet, "D", "D", row, wb.st.grand)

	return wb.freeze(sheet, "A5")
}

// groupRef returns the formula pointing at a group's total on the sheet it
// is itemized on.
func (wb *workbook) groupRef(g ExportGroup) string {
	if g.Sheet == proposal.SheetSports {
		return fmt.Sprintf("'%s'!%s", SheetSports, sportsTotalCell)
	}
	if r, ok := wb.quarterRows[g.Key]; ok {
		return fmt.Sprintf("'%s'!E%d", SheetFinancial, r)
	}
	if r, ok := wb.otherRows[g.Key]; ok {
		return fmt.Sprintf("'%s'!E%d", SheetFinancial, r)
	}
	return ""
}

// ── Technical Proposal ──────────────────────────────────────────────────

func (wb *workbook) technicalSheet() error {
	sheet := SheetTechnical
	if err := wb.widths(sheet, []float64{6, 30, 14, 32, 36, 40, 48}); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 1, "G", strings.ToUpper(wb.data.Title)+" - TECHNICAL PROPOSAL", wb.st.title); err != nil {
		return err
	}
	wb.headerRow(sheet, 3, []string{"#", "Event Name", "Date", "Venue Recommendation", "Stage & Décor", "Audio-Visual Requirements", "Key Services & Scope"})

	row := 4
	for _, g := range wb.data.Groups {
		for _, ev := range g.Events {
			if ev.Technical == nil {
				continue
			}
			t := ev.Technical
			date := t.Date
			if date == "" {
				date = ev.Date
			}
			wb.setText(sheet, "A", row, ev.Number)
			wb.setText(sheet, "B", row, ev.Name)
			wb.setText(sheet, "C", row, date)
			wb.setText(sheet, "D", row, t.Venue)
			wb.setText(sheet, "E", row, t.Stage)
			wb.setText(sheet, "F", row, t.AV)
			wb.setText(sheet, "G", row, t.Services)
			wb.style(sheet, "A", "G", row, wb.st.wrap)
			row++
		}
	}
	return wb.freeze(sheet, "A4")
}

// ── Assumptions & Notes ─────────────────────────────────────────────────

func (wb *workbook) notesSheet() error {
	sheet := SheetNotes
	n := wb.data.Notes
	if err := wb.widths(sheet, []float64{6, 48, 48, 48}); err != nil {
		return err
	}
	if err := wb.titleRow(sheet, 1, "D", strings.ToUpper(wb.data.Title)+" - ASSUMPTIONS & NOTES", wb.st.title); err != nil {
		return err
	}

	row := 3
	table := func(title string, headers []string, rows [][3]string) error {
		if err := wb.titleRow(sheet, row, "D", title, wb.st.section); err != nil {
			return err
		}
		row++
		wb.headerRow(sheet, row, headers)
		row++
		for i, r := range rows {
			wb.f.SetCellValue(sheet, cellRef("A", row), i+1)
			wb.setText(sheet, "B", row, r[0])
			wb.setText(sheet, "C", row, r[1])
			wb.setText(sheet, "D", row, r[2])
			wb.style(sheet, "A", "D", row, wb.st.wrap)
			row++
		}
		row++
		return nil
	}

	assumptions := make([][3]string, len(n.Assumptions))
	for i, a := range n.Assumptions {
		assumptions[i] = [3]string{a.Assumption, a.Impact, a.Action}
	}
	terms := make([][3]string, len(n.PaymentTerms))
	for i, t := range n.PaymentTerms {
		terms[i] = [3]string{t.Term, t.Condition, t.Details}
	}
	opts := make([][3]string, len(n.Optimizations))
	for i, o := range n.Optimizations {
		opts[i] = [3]string{o.Opportunity, o.Savings, o.Recommendation}
	}

	if err := table("KEY ASSUMPTIONS", []string{"#", "Assumption", "Impact if Different", "Action Required"}, assumptions); err != nil {
		return err
	}
	if err := table("PAYMENT TERMS", []string{"#", "Term", "Condition", "Details"}, terms); err != nil {
		return err
	}
	if err := table("COST OPTIMIZATION OPPORTUNITIES", []string{"#", "Opportunity", "Potential Savings (" + wb.data.Currency + ")", "Recommendation"}, opts); err != nil {
		return err
	}
	return wb.freeze(sheet, "A4")
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
