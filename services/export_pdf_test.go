package services

import (
	"testing"

	"budgetproposal/testhelpers"
)

func assertPDF(t *testing.T, result []byte) {
	t.Helper()
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGeneratePDF_Sample(t *testing.T) {
	result, err := GeneratePDF(sampleExport(t, false))
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	assertPDF(t, result)
}

func TestGeneratePDF_DefaultData(t *testing.T) {
	p := testhelpers.DefaultProposal(t)
	data := BuildExportData(p, testhelpers.Compute(t, p), ExportOptions{GeneratedDate: "2026-01-15"})

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	assertPDF(t, result)
}

func TestGeneratePDF_NoGroups(t *testing.T) {
	result, err := GeneratePDF(ExportData{Title: "Empty", GeneratedDate: "2026-01-15"})
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	assertPDF(t, result)
}

func TestPDFText(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"Plain", "Plain"},
		{"Catering – Lunch", "Catering - Lunch"},
		{"Stage 8m×5m", "Stage 8m×5m"},
		{"Summer SERA (صيف سيرا)", "Summer SERA ( )"},
		{"★ Total", "* Total"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := pdfText(tt.input); got != tt.expect {
				t.Errorf("pdfText(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"300", "300"},
		{"1", "1"},
		{"2.5", "2.50"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := formatQty(testhelpers.Dec(tt.input)); got != tt.expect {
				t.Errorf("formatQty(%s) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
