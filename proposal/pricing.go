package proposal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EventTotals holds the derived amounts of one event.
type EventTotals struct {
	Lines      []decimal.Decimal // one per line item, in item order
	Subtotal   decimal.Decimal
	Commission decimal.Decimal
	Total      decimal.Decimal
}

// GroupTotals holds the derived amounts of one group.
type GroupTotals struct {
	Key    string
	Events []EventTotals // in event order
	Total  decimal.Decimal
}

// GrandTotals holds the proposal-level amounts. WithContingency is nil when
// the proposal quotes no contingency reserve.
type GrandTotals struct {
	EventsTotal     decimal.Decimal // quarter groups only
	ExVAT           decimal.Decimal
	VAT             decimal.Decimal
	IncVAT          decimal.Decimal
	WithContingency *decimal.Decimal
}

// LineTotal returns quantity × unit price.
func LineTotal(item LineItem) (decimal.Decimal, error) {
	if item.Quantity.IsNegative() {
		return decimal.Zero, &InvalidInputError{Item: item.Description, Field: "quantity", Value: item.Quantity}
	}
	if item.UnitPrice.IsNegative() {
		return decimal.Zero, &InvalidInputError{Item: item.Description, Field: "unit price", Value: item.UnitPrice}
	}
	return item.Quantity.Mul(item.UnitPrice), nil
}

// CalcEventTotals sums the line totals of an event and applies the
// commission rate. An event without items totals zero.
func CalcEventTotals(event Event, rates Rates) (EventTotals, error) {
	totals := EventTotals{Lines: make([]decimal.Decimal, 0, len(event.Items))}
	subtotal := decimal.Zero
	for _, item := range event.Items {
		line, err := LineTotal(item)
		if err != nil {
			return EventTotals{}, fmt.Errorf("event %q: %w", event.Name, err)
		}
		totals.Lines = append(totals.Lines, line)
		subtotal = subtotal.Add(line)
	}
	totals.Subtotal = subtotal
	totals.Commission = subtotal.Mul(rates.Commission)
	totals.Total = subtotal.Add(totals.Commission)
	return totals, nil
}

// CalcGroupTotal sums the event totals of a group, keeping each event's
// totals in insertion order for display.
func CalcGroupTotal(group Group, rates Rates) (GroupTotals, error) {
	totals := GroupTotals{Key: group.Key, Events: make([]EventTotals, 0, len(group.Events))}
	sum := decimal.Zero
	for _, ev := range group.Events {
		et, err := CalcEventTotals(ev, rates)
		if err != nil {
			return GroupTotals{}, fmt.Errorf("group %s: %w", group.Key, err)
		}
		totals.Events = append(totals.Events, et)
		sum = sum.Add(et.Total)
	}
	totals.Total = sum
	return totals, nil
}

// CombineTotals builds the grand totals from the events grand total and the
// totals of every other rolled-up group. Tax applies once to the ex-VAT sum;
// the contingency reserve applies to the VAT-inclusive total.
func CombineTotals(eventsTotal decimal.Decimal, others []decimal.Decimal, rates Rates) GrandTotals {
	exVAT := eventsTotal
	for _, t := range others {
		exVAT = exVAT.Add(t)
	}
	vat := exVAT.Mul(rates.Tax)
	g := GrandTotals{
		EventsTotal: eventsTotal,
		ExVAT:       exVAT,
		VAT:         vat,
		IncVAT:      exVAT.Add(vat),
	}
	if rates.Contingency != nil {
		withContingency := g.IncVAT.Mul(decimal.NewFromInt(1).Add(*rates.Contingency))
		g.WithContingency = &withContingency
	}
	return g
}

// CalcGrandTotal computes the grand totals of a proposal.
func CalcGrandTotal(p *Proposal) (GrandTotals, error) {
	s, err := Compute(p)
	if err != nil {
		return GrandTotals{}, err
	}
	return s.Grand, nil
}
