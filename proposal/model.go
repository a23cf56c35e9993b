// Package proposal holds the budget proposal data model and the arithmetic
// that turns priced line items into event, group and grand totals.
package proposal

import "github.com/shopspring/decimal"

// GroupKind classifies a group for the rollup. Quarter groups make up the
// events grand total; sports and newsletters groups sit beside them.
type GroupKind string

const (
	KindQuarter     GroupKind = "quarter"
	KindSports      GroupKind = "sports"
	KindNewsletters GroupKind = "newsletters"
)

// Valid reports whether k is one of the known group kinds.
func (k GroupKind) Valid() bool {
	switch k {
	case KindQuarter, KindSports, KindNewsletters:
		return true
	}
	return false
}

// Sheet names the workbook sheet a group is itemized on.
type Sheet string

const (
	SheetFinancial Sheet = "financial"
	SheetSports    Sheet = "sports"
)

// LineItem is a single priced cost entry within an event.
type LineItem struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Note        string
}

// Technical is the free-form specification shown on the technical proposal.
type Technical struct {
	Date     string
	Venue    string
	Stage    string
	AV       string
	Services string
}

// Event is a dated activity with its ordered line items.
type Event struct {
	Number     string
	Name       string
	NameAR     string
	Date       string // free-form label, never parsed
	Attendance int
	Venue      string
	Category   string
	Tier       string
	Technical  *Technical
	Items      []LineItem

	// PublishedTotal is a total quoted elsewhere for this event. It is only
	// compared against the computed total, never used in place of it.
	PublishedTotal *decimal.Decimal
}

// Group is a named bucket of events (a quarter, sports or newsletters).
type Group struct {
	Key            string
	Name           string
	Kind           GroupKind
	Sheet          Sheet
	Label          string
	Events         []Event
	PublishedTotal *decimal.Decimal
}

// Rates are the proposal-wide percentages, expressed as fractions.
type Rates struct {
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	Contingency *decimal.Decimal // nil when no contingency reserve is quoted
}

// DefaultRates returns 15% commission, 15% VAT and a 10% contingency reserve.
func DefaultRates() Rates {
	contingency := decimal.RequireFromString("0.10")
	return Rates{
		Commission:  decimal.RequireFromString("0.15"),
		Tax:         decimal.RequireFromString("0.15"),
		Contingency: &contingency,
	}
}

// Assumption is a row of the assumptions table.
type Assumption struct {
	Assumption string
	Impact     string
	Action     string
}

// PaymentTerm is a row of the payment terms table.
type PaymentTerm struct {
	Term      string
	Condition string
	Details   string
}

// Optimization is a row of the cost optimization table.
type Optimization struct {
	Opportunity    string
	Savings        string
	Recommendation string
}

// Notes are the narrative tables of the assumptions sheet.
type Notes struct {
	Assumptions   []Assumption
	PaymentTerms  []PaymentTerm
	Optimizations []Optimization
}

// Proposal is the full collection of groups plus the shared rates.
// Rollup lists, in display order, the keys of the groups whose totals make
// up the grand total.
type Proposal struct {
	Title     string
	Client    string
	Reference string
	Currency  string
	Rates     Rates
	Groups    []Group
	Rollup    []string
	Notes     Notes
}

// Group returns the group with the given key.
func (p *Proposal) Group(key string) (*Group, bool) {
	for i := range p.Groups {
		if p.Groups[i].Key == key {
			return &p.Groups[i], true
		}
	}
	return nil, false
}

// EventCount returns the number of events across all groups.
func (p *Proposal) EventCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Events)
	}
	return n
}
