// Package testhelpers provides fixtures for testing the proposal pipeline:
// small proposals with hand-checked totals.
package testhelpers

import (
	"testing"

	"github.com/shopspring/decimal"

	"budgetproposal/dataset"
	"budgetproposal/proposal"
)

// Known totals of SampleProposal.
const (
	SampleQ1Total          = "225515"
	SampleNewslettersTotal = "115000"
	SampleSportsTotal      = "115000"
	SampleExVAT            = "455515"
	SampleVAT              = "68327.25"
	SampleIncVAT           = "523842.25"
	SampleWithContingency  = "576226.475"
)

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(desc, unit, qty, price, note string) proposal.LineItem {
	return proposal.LineItem{Description: desc, Unit: unit, Quantity: Dec(qty), UnitPrice: Dec(price), Note: note}
}

// SampleProposal returns a three-group proposal:
//
//	q1:          152,950 + 72,565 = 225,515
//	newsletters: 100,000 * 1.15   = 115,000
//	sports:      100,000 * 1.15   = 115,000
func SampleProposal() *proposal.Proposal {
	published := Dec("150000")
	return &proposal.Proposal{
		Title:     "Sample 2026",
		Client:    "Sample Authority",
		Reference: "SAMPLE-2026",
		Currency:  "SAR",
		Rates:     proposal.DefaultRates(),
		Groups: []proposal.Group{
			{
				Key: "q1", Name: "Q1", Kind: proposal.KindQuarter, Sheet: proposal.SheetFinancial,
				Label: "Q1 Events (Jan-Mar)",
				Events: []proposal.Event{
					{
						Number: "1", Name: "Annual Meeting", NameAR: "الاجتماع السنوي", Date: "February 3",
						Attendance: 300, Venue: "Hotel Ballroom", Category: "Corporate Conference", Tier: "Major",
						Technical: &proposal.Technical{
							Date: "Feb 3", Venue: "Hotel Ballroom", Stage: "8m x 5m stage",
							AV: "LED wall", Services: "Translation, MC",
						},
						Items: []proposal.LineItem{
							item("Welcome Gifts", "Per person", "300", "260", "Branded"),
							item("Stage & Backdrop", "Package", "1", "55000", ""),
						},
						PublishedTotal: &published,
					},
					{
						Number: "2", Name: "=Founding Day", Date: "February 22",
						Attendance: 200, Venue: "HQ", Category: "National", Tier: "Light",
						Items: []proposal.LineItem{
							item("Venue", "Day", "1", "63100", ""),
						},
					},
				},
			},
			{
				Key: "newsletters", Name: "Newsletters", Kind: proposal.KindNewsletters, Sheet: proposal.SheetFinancial,
				Label: "Weekly Newsletters",
				Events: []proposal.Event{
					{
						Number: "N1", Name: "Weekly Internal Newsletters", Date: "Weekly", Tier: "Medium",
						Items: []proposal.LineItem{item("Design & Writing", "Year", "1", "100000", "")},
					},
				},
			},
			{
				Key: "sports", Name: "Sports", Kind: proposal.KindSports, Sheet: proposal.SheetSports,
				Label: "Sports Events",
				Events: []proposal.Event{
					{
						Number: "S1", Name: "Football Tournament", Date: "TBD", Attendance: 150, Tier: "Major",
						Items: []proposal.LineItem{item("Pitch Rental", "Season", "1", "100000", "")},
					},
				},
			},
		},
		Rollup: []string{"q1", "newsletters", "sports"},
		Notes: proposal.Notes{
			Assumptions:   []proposal.Assumption{{Assumption: "Riyadh only", Impact: "+15% elsewhere", Action: "Confirm city"}},
			PaymentTerms:  []proposal.PaymentTerm{{Term: "Advance", Condition: "On signing", Details: "30%"}},
			Optimizations: []proposal.Optimization{{Opportunity: "Bundle AV", Savings: "20,000", Recommendation: "Annual contract"}},
		},
	}
}

// Compute totals p and fails the test on error.
func Compute(t *testing.T, p *proposal.Proposal) *proposal.Summary {
	t.Helper()
	s, err := proposal.Compute(p)
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}
	return s
}

// DefaultProposal builds the bundled data file and fails the test on error.
func DefaultProposal(t *testing.T) *proposal.Proposal {
	t.Helper()
	f, err := dataset.Default()
	if err != nil {
		t.Fatalf("load default data: %v", err)
	}
	p, err := f.Build()
	if err != nil {
		t.Fatalf("build default data: %v", err)
	}
	return p
}
