package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"budgetproposal/proposal"
)

// Violation is one problem found in a data file.
type Violation struct {
	Path string
	Err  error
}

func (v Violation) Error() string {
	return v.Path + ": " + v.Err.Error()
}

// ValidationError lists every violation found in a data file.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("data file has %d problem(s):", len(e.Violations)))
	for _, v := range e.Violations {
		lines = append(lines, "  "+v.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual violations to errors.As, so that a
// *proposal.ReferenceError inside the list can be matched.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v.Err
	}
	return errs
}

type collector struct {
	violations []Violation
}

func (c *collector) add(path string, err error) {
	c.violations = append(c.violations, Violation{Path: path, Err: err})
}

// structErrs records the field errors of an ozzo ValidateStruct call, sorted by
// field name.
func (c *collector) structErrs(prefix string, err error) {
	if err == nil {
		return
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		c.add(prefix, err)
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		c.add(path, fields[k])
	}
}

var one = decimal.NewFromInt(1)

var (
	numeric = validation.By(func(value interface{}) error {
		a, ok := value.(Amount)
		if !ok || !a.Set {
			return nil
		}
		_, err := a.Decimal()
		return err
	})
	nonNegative = validation.By(func(value interface{}) error {
		a, ok := value.(Amount)
		if !ok || !a.Set {
			return nil
		}
		v, err := a.Decimal()
		if err == nil && v.IsNegative() {
			return errors.New("must not be negative")
		}
		return nil
	})
	setAmount = validation.By(func(value interface{}) error {
		if a, ok := value.(Amount); ok && !a.Set {
			return errors.New("cannot be blank")
		}
		return nil
	})
	wholeNumber = validation.By(func(value interface{}) error {
		a, ok := value.(Amount)
		if !ok || !a.Set {
			return nil
		}
		v, err := a.Decimal()
		if err != nil || !v.IsInteger() {
			return errors.New("must be a whole number")
		}
		if v.IsNegative() {
			return errors.New("must be no less than 0")
		}
		return nil
	})
	fraction = validation.By(func(value interface{}) error {
		a, ok := value.(Amount)
		if !ok || !a.Set {
			return nil
		}
		v, err := a.Decimal()
		if err == nil && v.GreaterThan(one) {
			return errors.New("must be a fraction between 0 and 1")
		}
		return nil
	})
)

func optionalAmount(a *Amount) Amount {
	if a == nil {
		return Amount{}
	}
	return *a
}

// Validate checks the whole file and returns a *ValidationError listing every
// problem, or nil when the file can be built.
func (f *File) Validate() error {
	c := &collector{}

	contingency := optionalAmount(f.ContingencyRate)
	c.structErrs("", validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&f.CommissionRate, setAmount, numeric, nonNegative, fraction),
		validation.Field(&f.TaxRate, setAmount, numeric, nonNegative, fraction),
		validation.Field(&f.Groups, validation.Required),
		validation.Field(&f.Rollup, validation.Required),
	))
	if f.ContingencyRate != nil {
		c.structErrs("", validation.Errors{
			"contingency_rate": validation.Validate(contingency, numeric, nonNegative, fraction),
		}.Filter())
	}

	keys := make(map[string]bool, len(f.Groups))
	for gi := range f.Groups {
		g := &f.Groups[gi]
		prefix := fmt.Sprintf("groups[%d]", gi)
		if g.Key != "" {
			prefix = fmt.Sprintf("groups[%s]", g.Key)
			if keys[g.Key] {
				c.add(prefix+".key", fmt.Errorf("duplicate group key %q", g.Key))
			}
			keys[g.Key] = true
		}
		f.validateGroup(c, prefix, g)
	}

	seen := make(map[string]bool, len(f.Rollup))
	for i, key := range f.Rollup {
		path := fmt.Sprintf("rollup[%d]", i)
		switch {
		case !keys[key]:
			c.add(path, &proposal.ReferenceError{From: "rollup", Key: key})
		case seen[key]:
			c.add(path, fmt.Errorf("group %q listed more than once", key))
		}
		seen[key] = true
	}

	if len(c.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: c.violations}
}

func (f *File) validateGroup(c *collector, prefix string, g *Group) {
	published := optionalAmount(g.PublishedTotal)
	c.structErrs(prefix, validation.ValidateStruct(g,
		validation.Field(&g.Key, validation.Required),
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.Kind, validation.Required, validation.In(
			string(proposal.KindQuarter), string(proposal.KindSports), string(proposal.KindNewsletters),
		).Error("must be one of quarter, sports, newsletters")),
		validation.Field(&g.Sheet, validation.In(
			string(proposal.SheetFinancial), string(proposal.SheetSports),
		).Error("must be financial or sports")),
	))
	if g.Kind == string(proposal.KindQuarter) && g.Sheet == string(proposal.SheetSports) {
		c.add(prefix+".sheet", errors.New("quarter groups belong on the financial sheet"))
	}
	if g.PublishedTotal != nil {
		c.structErrs(prefix, validation.Errors{
			"published_total": validation.Validate(published, numeric, nonNegative),
		}.Filter())
	}

	for ei := range g.Events {
		ev := &g.Events[ei]
		evPrefix := fmt.Sprintf("%s.events[%d]", prefix, ei)
		evPublished := optionalAmount(ev.PublishedTotal)
		c.structErrs(evPrefix, validation.ValidateStruct(ev,
			validation.Field(&ev.Name, validation.Required),
			validation.Field(&ev.Attendance, wholeNumber),
		))
		if ev.PublishedTotal != nil {
			c.structErrs(evPrefix, validation.Errors{
				"published_total": validation.Validate(evPublished, numeric, nonNegative),
			}.Filter())
		}

		for ii := range ev.Items {
			it := &ev.Items[ii]
			c.structErrs(fmt.Sprintf("%s.items[%d]", evPrefix, ii), validation.ValidateStruct(it,
				validation.Field(&it.Description, validation.Required),
				validation.Field(&it.Quantity, setAmount, numeric, nonNegative),
				validation.Field(&it.UnitPrice, setAmount, numeric, nonNegative),
			))
		}
	}
}
