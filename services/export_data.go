package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgetproposal/proposal"
)

// ExportOptions carries the rendering choices that are not part of the
// proposal itself.
type ExportOptions struct {
	GeneratedDate string
	// Formulas makes the workbook carry spreadsheet formulas next to the
	// computed values so that edits recalculate in Excel.
	Formulas bool
}

// ExportItem is one priced line of an event.
type ExportItem struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Note        string
}

// ExportEvent is an event with its computed totals.
type ExportEvent struct {
	Number     string
	Name       string
	NameAR     string
	Date       string
	Group      string // display name of the owning group
	Category   string
	Tier       string
	Venue      string
	Attendance int
	Technical  *proposal.Technical
	Items      []ExportItem
	Subtotal   decimal.Decimal
	Commission decimal.Decimal
	Total      decimal.Decimal
}

// ExportGroup is a rolled-up group with its events.
type ExportGroup struct {
	Key    string
	Name   string
	Label  string
	Kind   proposal.GroupKind
	Sheet  proposal.Sheet
	Events []ExportEvent
	Total  decimal.Decimal
	Share  decimal.Decimal // percent of the ex-VAT grand total
}

// ExportData holds all data needed for export. Every amount is taken from
// the computed summary; renderers only lay it out.
type ExportData struct {
	Title           string
	Client          string
	Reference       string
	DocumentID      string
	Currency        string
	GeneratedDate   string
	Formulas        bool
	CommissionRate  decimal.Decimal
	TaxRate         decimal.Decimal
	ContingencyRate *decimal.Decimal

	Groups []ExportGroup // rollup order

	EventsTotal     decimal.Decimal
	SportsTotal     decimal.Decimal // total of the groups itemized on the sports sheet
	ExVAT           decimal.Decimal
	VAT             decimal.Decimal
	IncVAT          decimal.Decimal
	WithContingency *decimal.Decimal

	Notes proposal.Notes
}

// documentNamespace scopes document IDs to this generator.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("budgetproposal"))

// DocumentID returns a stable identifier for a proposal reference. The same
// reference always yields the same ID.
func DocumentID(reference string) string {
	return uuid.NewSHA1(documentNamespace, []byte(reference)).String()
}

// BuildExportData lays the proposal and its summary out for the renderers.
// Only groups in the rollup are exported.
func BuildExportData(p *proposal.Proposal, s *proposal.Summary, opts ExportOptions) ExportData {
	data := ExportData{
		Title:           p.Title,
		Client:          p.Client,
		Reference:       p.Reference,
		DocumentID:      DocumentID(p.Reference),
		Currency:        p.Currency,
		GeneratedDate:   opts.GeneratedDate,
		Formulas:        opts.Formulas,
		CommissionRate:  p.Rates.Commission,
		TaxRate:         p.Rates.Tax,
		ContingencyRate: p.Rates.Contingency,
		EventsTotal:     s.Grand.EventsTotal,
		ExVAT:           s.Grand.ExVAT,
		VAT:             s.Grand.VAT,
		IncVAT:          s.Grand.IncVAT,
		WithContingency: s.Grand.WithContingency,
		Notes:           p.Notes,
	}

	for _, key := range s.Rollup {
		g, ok := p.Group(key)
		if !ok {
			continue
		}
		gt := s.Groups[key]
		eg := ExportGroup{
			Key:    g.Key,
			Name:   g.Name,
			Label:  g.Label,
			Kind:   g.Kind,
			Sheet:  g.Sheet,
			Total:  gt.Total,
			Share:  s.Share(key),
			Events: make([]ExportEvent, 0, len(g.Events)),
		}
		for i, ev := range g.Events {
			et := s.Event(key, i)
			ee := ExportEvent{
				Number:     ev.Number,
				Name:       ev.Name,
				NameAR:     ev.NameAR,
				Date:       ev.Date,
				Group:      g.Name,
				Category:   ev.Category,
				Tier:       ev.Tier,
				Venue:      ev.Venue,
				Attendance: ev.Attendance,
				Technical:  ev.Technical,
				Subtotal:   et.Subtotal,
				Commission: et.Commission,
				Total:      et.Total,
				Items:      make([]ExportItem, 0, len(ev.Items)),
			}
			for j, it := range ev.Items {
				line := decimal.Zero
				if j < len(et.Lines) {
					line = et.Lines[j]
				}
				ee.Items = append(ee.Items, ExportItem{
					Description: it.Description,
					Unit:        it.Unit,
					Quantity:    it.Quantity,
					UnitPrice:   it.UnitPrice,
					Total:       line,
					Note:        it.Note,
				})
			}
			eg.Events = append(eg.Events, ee)
		}
		if g.Sheet == proposal.SheetSports {
			data.SportsTotal = data.SportsTotal.Add(gt.Total)
		}
		data.Groups = append(data.Groups, eg)
	}
	return data
}

// GroupsOn returns the exported groups itemized on the given sheet.
func (d ExportData) GroupsOn(sheet proposal.Sheet) []ExportGroup {
	var out []ExportGroup
	for _, g := range d.Groups {
		if g.Sheet == sheet {
			out = append(out, g)
		}
	}
	return out
}

// EventCount returns the number of exported events.
func (d ExportData) EventCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Events)
	}
	return n
}

// Percent returns r as a percentage, e.g. 0.15 -> 15.
func Percent(r decimal.Decimal) decimal.Decimal {
	return r.Mul(decimal.NewFromInt(100))
}
