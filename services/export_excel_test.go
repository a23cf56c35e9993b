package services

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"budgetproposal/testhelpers"
)

func sampleExport(t *testing.T, formulas bool) ExportData {
	t.Helper()
	p := testhelpers.SampleProposal()
	return BuildExportData(p, testhelpers.Compute(t, p), ExportOptions{GeneratedDate: "2026-01-15", Formulas: formulas})
}

func openWorkbook(t *testing.T, data ExportData) *excelize.File {
	t.Helper()
	result, err := GenerateWorkbook(data)
	if err != nil {
		t.Fatalf("GenerateWorkbook() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateWorkbook() returned empty bytes")
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// findRow returns the 1-based row whose column A starts with label.
func findRow(t *testing.T, f *excelize.File, sheet, label string) int {
	t.Helper()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", sheet, err)
	}
	for i, r := range rows {
		if len(r) > 0 && strings.HasPrefix(r[0], label) {
			return i + 1
		}
	}
	t.Fatalf("no row starting with %q on %s", label, sheet)
	return 0
}

func rawValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s): %v", sheet, cell, err)
	}
	return v
}

func TestGenerateWorkbook_SheetOrder(t *testing.T) {
	f := openWorkbook(t, sampleExport(t, false))

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != strings.Join(WorkbookSheets, ",") {
		t.Errorf("sheets = %v, want %v", sheets, WorkbookSheets)
	}
	title, _ := f.GetCellValue(SheetCalendar, "A1")
	if !strings.HasPrefix(title, "SAMPLE 2026") {
		t.Errorf("calendar title = %q", title)
	}
}

func TestGenerateWorkbook_ComputedValues(t *testing.T) {
	f := openWorkbook(t, sampleExport(t, false))

	if got := rawValue(t, f, SheetSports, sportsTotalCell); got != testhelpers.SampleSportsTotal {
		t.Errorf("sports total = %q, want %s", got, testhelpers.SampleSportsTotal)
	}
	if formula, _ := f.GetCellFormula(SheetSports, sportsTotalCell); formula != "" {
		t.Errorf("formulas disabled but got %q", formula)
	}

	tests := []struct {
		label string
		want  string
	}{
		{"Q1 TOTAL", testhelpers.SampleQ1Total},
		{"ALL EVENTS SUBTOTAL", testhelpers.SampleQ1Total},
		{"NEWSLETTERS TOTAL", testhelpers.SampleNewslettersTotal},
		{"Sports Events Total", testhelpers.SampleSportsTotal},
		{"GRAND TOTAL (Excluding VAT)", testhelpers.SampleExVAT},
		{"VAT (15%)", testhelpers.SampleVAT},
		{"GRAND TOTAL (Including 15% VAT)", testhelpers.SampleIncVAT},
		{"With 10% Contingency Reserve", testhelpers.SampleWithContingency},
		{"Annual Meeting - TOTAL", "152950"},
		{"'=Founding Day - TOTAL", "72565"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			row := findRow(t, f, SheetFinancial, tt.label)
			if got := rawValue(t, f, SheetFinancial, cellRef("E", row)); got != tt.want {
				t.Errorf("%s = %q, want %s", tt.label, got, tt.want)
			}
		})
	}
}

func TestGenerateWorkbook_Formulas(t *testing.T) {
	f := openWorkbook(t, sampleExport(t, true))

	sportsRow := findRow(t, f, SheetFinancial, "Sports Events Total")
	formula, err := f.GetCellFormula(SheetFinancial, cellRef("E", sportsRow))
	if err != nil {
		t.Fatalf("GetCellFormula: %v", err)
	}
	if formula != "'Sports Budget'!E2" {
		t.Errorf("sports reference formula = %q", formula)
	}

	// First item of the first event sits two rows below its header.
	headerRow := findRow(t, f, SheetFinancial, "Annual Meeting | Date")
	itemRow := headerRow + 2
	if got, _ := f.GetCellFormula(SheetFinancial, cellRef("E", itemRow)); got != cellRef("C", itemRow)+"*"+cellRef("D", itemRow) {
		t.Errorf("line formula = %q", got)
	}
	subtotalRow := findRow(t, f, SheetFinancial, "Subtotal (Before Commission)")
	if got, _ := f.GetCellFormula(SheetFinancial, cellRef("E", subtotalRow)); !strings.HasPrefix(got, "SUM(") {
		t.Errorf("subtotal formula = %q", got)
	}

	vatRow := findRow(t, f, SheetFinancial, "VAT (")
	exRow := findRow(t, f, SheetFinancial, "GRAND TOTAL (Excluding VAT)")
	if got, _ := f.GetCellFormula(SheetFinancial, cellRef("E", vatRow)); got != cellRef("E", exRow)+"*0.15" {
		t.Errorf("vat formula = %q", got)
	}

	calRow := findRow(t, f, SheetCalendar, "GRAND TOTAL (ex-VAT)")
	if got, _ := f.GetCellFormula(SheetCalendar, cellRef("C", calRow)); got != "'Financial Proposal'!"+cellRef("E", exRow) {
		t.Errorf("calendar grand total formula = %q", got)
	}
}

func TestGenerateWorkbook_Calendar(t *testing.T) {
	f := openWorkbook(t, sampleExport(t, false))

	rows, err := f.GetRows(SheetCalendar)
	if err != nil {
		t.Fatal(err)
	}
	header := rows[3]
	if header[1] != "Event Name" || header[4] != "Group" {
		t.Errorf("unexpected calendar header %v", header)
	}
	first := rows[4]
	if first[1] != "Annual Meeting" || first[2] != "الاجتماع السنوي" || first[4] != "Q1" {
		t.Errorf("unexpected first event row %v", first)
	}
	if got := rows[5][1]; got != "'=Founding Day" {
		t.Errorf("event name not sanitized: %q", got)
	}
	if got := rows[7][0]; got != "S1" {
		t.Errorf("sports event should follow newsletters, got %q", got)
	}
}

func TestGenerateWorkbook_TechnicalAndNotes(t *testing.T) {
	f := openWorkbook(t, sampleExport(t, false))

	rows, _ := f.GetRows(SheetTechnical)
	if len(rows) != 4 {
		t.Fatalf("technical sheet rows = %d, want title, blank, header and one event", len(rows))
	}
	if rows[3][1] != "Annual Meeting" || rows[3][5] != "LED wall" {
		t.Errorf("unexpected technical row %v", rows[3])
	}

	row := findRow(t, f, SheetNotes, "PAYMENT TERMS")
	term, _ := f.GetCellValue(SheetNotes, cellRef("B", row+2))
	if term != "Advance" {
		t.Errorf("payment term = %q", term)
	}
}

func TestGenerateWorkbook_NoGroups(t *testing.T) {
	result, err := GenerateWorkbook(ExportData{Title: "Empty", Currency: "SAR"})
	if err != nil {
		t.Fatalf("GenerateWorkbook() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if got := rawValue(t, f, SheetSports, sportsTotalCell); got != "0" {
		t.Errorf("empty sports total = %q", got)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"", ""},
		{"Normal text", "Normal text"},
		{"=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"+cmd", "'+cmd"},
		{"-1+1", "'-1+1"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\tdata", "'\tdata"},
		{"\rdata", "'\rdata"},
		{"|pipe", "'|pipe"},
		{"Safe=value", "Safe=value"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeExcelCell(tt.input)
			if got != tt.expect {
				t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
