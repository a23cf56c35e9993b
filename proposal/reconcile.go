package proposal

import "github.com/shopspring/decimal"

// Discrepancy is a published total that disagrees with the computed one.
type Discrepancy struct {
	Scope     string // "event" or "group"
	Group     string
	Name      string
	Published decimal.Decimal
	Computed  decimal.Decimal
}

// Diff returns computed minus published.
func (d Discrepancy) Diff() decimal.Decimal {
	return d.Computed.Sub(d.Published)
}

// Reconcile compares every published total of p with the totals in s and
// returns those that differ by more than tolerance, in proposal order.
func Reconcile(p *Proposal, s *Summary, tolerance decimal.Decimal) []Discrepancy {
	var out []Discrepancy
	for _, g := range p.Groups {
		gt, ok := s.Groups[g.Key]
		if !ok {
			continue
		}
		for i, ev := range g.Events {
			if ev.PublishedTotal == nil || i >= len(gt.Events) {
				continue
			}
			computed := gt.Events[i].Total
			if computed.Sub(*ev.PublishedTotal).Abs().GreaterThan(tolerance) {
				out = append(out, Discrepancy{
					Scope:     "event",
					Group:     g.Key,
					Name:      ev.Name,
					Published: *ev.PublishedTotal,
					Computed:  computed,
				})
			}
		}
		if g.PublishedTotal != nil && gt.Total.Sub(*g.PublishedTotal).Abs().GreaterThan(tolerance) {
			out = append(out, Discrepancy{
				Scope:     "group",
				Group:     g.Key,
				Name:      g.Name,
				Published: *g.PublishedTotal,
				Computed:  gt.Total,
			})
		}
	}
	return out
}
