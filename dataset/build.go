package dataset

import (
	"github.com/shopspring/decimal"

	"budgetproposal/proposal"
)

// Build validates the file and converts it into a proposal. Nothing is
// converted when validation fails.
func (f *File) Build() (*proposal.Proposal, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p := &proposal.Proposal{
		Title:     f.Title,
		Client:    f.Client,
		Reference: f.Reference,
		Currency:  f.Currency,
		Rates: proposal.Rates{
			Commission:  mustDecimal(f.CommissionRate),
			Tax:         mustDecimal(f.TaxRate),
			Contingency: optionalDecimal(f.ContingencyRate),
		},
		Rollup: append([]string(nil), f.Rollup...),
		Groups: make([]proposal.Group, 0, len(f.Groups)),
	}

	for _, g := range f.Groups {
		kind := proposal.GroupKind(g.Kind)
		group := proposal.Group{
			Key:            g.Key,
			Name:           g.Name,
			Kind:           kind,
			Sheet:          sheetFor(g.Sheet, kind),
			Label:          g.Label,
			PublishedTotal: optionalDecimal(g.PublishedTotal),
			Events:         make([]proposal.Event, 0, len(g.Events)),
		}
		if group.Label == "" {
			group.Label = g.Name
		}
		for _, ev := range g.Events {
			group.Events = append(group.Events, buildEvent(ev))
		}
		p.Groups = append(p.Groups, group)
	}

	for _, a := range f.Notes.Assumptions {
		p.Notes.Assumptions = append(p.Notes.Assumptions, proposal.Assumption{
			Assumption: a.Assumption, Impact: a.Impact, Action: a.Action,
		})
	}
	for _, t := range f.Notes.PaymentTerms {
		p.Notes.PaymentTerms = append(p.Notes.PaymentTerms, proposal.PaymentTerm{
			Term: t.Term, Condition: t.Condition, Details: t.Details,
		})
	}
	for _, o := range f.Notes.Optimizations {
		p.Notes.Optimizations = append(p.Notes.Optimizations, proposal.Optimization{
			Opportunity: o.Opportunity, Savings: o.Savings, Recommendation: o.Recommendation,
		})
	}
	return p, nil
}

func buildEvent(ev Event) proposal.Event {
	out := proposal.Event{
		Number:         ev.Number,
		Name:           ev.Name,
		NameAR:         ev.NameAR,
		Date:           ev.Date,
		Attendance:     attendance(ev.Attendance),
		Venue:          ev.Venue,
		Category:       ev.Category,
		Tier:           ev.Tier,
		PublishedTotal: optionalDecimal(ev.PublishedTotal),
		Items:          make([]proposal.LineItem, 0, len(ev.Items)),
	}
	if ev.Technical != nil {
		t := proposal.Technical(*ev.Technical)
		out.Technical = &t
	}
	for _, it := range ev.Items {
		out.Items = append(out.Items, proposal.LineItem{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    mustDecimal(it.Quantity),
			UnitPrice:   mustDecimal(it.UnitPrice),
			Note:        it.Note,
		})
	}
	return out
}

func sheetFor(sheet string, kind proposal.GroupKind) proposal.Sheet {
	if sheet != "" {
		return proposal.Sheet(sheet)
	}
	if kind == proposal.KindSports {
		return proposal.SheetSports
	}
	return proposal.SheetFinancial
}

// mustDecimal is only called on amounts that passed Validate.
func mustDecimal(a Amount) decimal.Decimal {
	v, err := a.Decimal()
	if err != nil {
		panic("dataset: unvalidated amount " + a.Raw)
	}
	return v
}

func attendance(a Amount) int {
	if !a.Set {
		return 0
	}
	return int(mustDecimal(a).IntPart())
}

func optionalDecimal(a *Amount) *decimal.Decimal {
	if a == nil || !a.Set {
		return nil
	}
	v := mustDecimal(*a)
	return &v
}
