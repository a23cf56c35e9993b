package proposal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is every derived total of a proposal.
type Summary struct {
	Rates  Rates
	Groups map[string]GroupTotals
	Kinds  map[GroupKind]decimal.Decimal // rolled-up groups only
	Rollup []string
	Grand  GrandTotals
}

// Compute derives all totals of p in dependency order: rollup references are
// resolved first, then every group is totalled, then the rollup is folded
// into the grand totals. Groups missing from the rollup are still totalled
// but do not count towards the grand total.
func Compute(p *Proposal) (*Summary, error) {
	seen := make(map[string]bool, len(p.Rollup))
	for _, key := range p.Rollup {
		if _, ok := p.Group(key); !ok {
			return nil, &ReferenceError{From: "rollup", Key: key}
		}
		if seen[key] {
			return nil, fmt.Errorf("rollup lists group %q more than once", key)
		}
		seen[key] = true
	}

	s := &Summary{
		Rates:  p.Rates,
		Groups: make(map[string]GroupTotals, len(p.Groups)),
		Kinds:  make(map[GroupKind]decimal.Decimal),
		Rollup: append([]string(nil), p.Rollup...),
	}
	for _, g := range p.Groups {
		gt, err := CalcGroupTotal(g, p.Rates)
		if err != nil {
			return nil, err
		}
		s.Groups[g.Key] = gt
	}

	eventsTotal := decimal.Zero
	var others []decimal.Decimal
	for _, key := range p.Rollup {
		g, _ := p.Group(key)
		total := s.Groups[key].Total
		s.Kinds[g.Kind] = s.Kinds[g.Kind].Add(total)
		if g.Kind == KindQuarter {
			eventsTotal = eventsTotal.Add(total)
		} else {
			others = append(others, total)
		}
	}
	s.Grand = CombineTotals(eventsTotal, others, p.Rates)
	return s, nil
}

// GroupTotal returns the total of the group with the given key.
func (s *Summary) GroupTotal(key string) decimal.Decimal {
	return s.Groups[key].Total
}

// Event returns the totals of the i-th event of a group.
func (s *Summary) Event(key string, i int) EventTotals {
	gt := s.Groups[key]
	if i < 0 || i >= len(gt.Events) {
		return EventTotals{}
	}
	return gt.Events[i]
}

// Share returns the total of the group with the given key as a percentage of
// the ex-VAT grand total.
func (s *Summary) Share(key string) decimal.Decimal {
	return s.ShareOf(s.GroupTotal(key))
}

// ShareOf returns amount as a percentage of the ex-VAT grand total.
func (s *Summary) ShareOf(amount decimal.Decimal) decimal.Decimal {
	if s.Grand.ExVAT.IsZero() {
		return decimal.Zero
	}
	return amount.Div(s.Grand.ExVAT).Mul(hundred)
}
