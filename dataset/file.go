// Package dataset reads proposal data files, validates them and builds the
// proposal model the aggregator and renderers work from.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/sera2026.yaml
var defaultData []byte

// File is the on-disk shape of a proposal data file.
type File struct {
	Title           string    `yaml:"title" json:"title"`
	Client          string    `yaml:"client" json:"client"`
	Reference       string    `yaml:"reference" json:"reference"`
	Currency        string    `yaml:"currency" json:"currency"`
	CommissionRate  Amount    `yaml:"commission_rate" json:"commission_rate"`
	TaxRate         Amount    `yaml:"tax_rate" json:"tax_rate"`
	ContingencyRate *Amount   `yaml:"contingency_rate" json:"contingency_rate"`
	Rollup          []string  `yaml:"rollup" json:"rollup"`
	Groups          []Group   `yaml:"groups" json:"groups"`
	Notes           NotesFile `yaml:"notes" json:"notes"`
}

type Group struct {
	Key            string  `yaml:"key" json:"key"`
	Name           string  `yaml:"name" json:"name"`
	Kind           string  `yaml:"kind" json:"kind"`
	Sheet          string  `yaml:"sheet" json:"sheet"`
	Label          string  `yaml:"label" json:"label"`
	PublishedTotal *Amount `yaml:"published_total" json:"published_total"`
	Events         []Event `yaml:"events" json:"events"`
}

type Event struct {
	Number         string     `yaml:"number" json:"number"`
	Name           string     `yaml:"name" json:"name"`
	NameAR         string     `yaml:"name_ar" json:"name_ar"`
	Date           string     `yaml:"date" json:"date"`
	Attendance     Amount     `yaml:"attendance" json:"attendance"`
	Venue          string     `yaml:"venue" json:"venue"`
	Category       string     `yaml:"category" json:"category"`
	Tier           string     `yaml:"tier" json:"tier"`
	PublishedTotal *Amount    `yaml:"published_total" json:"published_total"`
	Technical      *Technical `yaml:"technical" json:"technical"`
	Items          []Item     `yaml:"items" json:"items"`
}

type Technical struct {
	Date     string `yaml:"date"`
	Venue    string `yaml:"venue"`
	Stage    string `yaml:"stage"`
	AV       string `yaml:"av"`
	Services string `yaml:"services"`
}

type Item struct {
	Description string `yaml:"description" json:"description"`
	Unit        string `yaml:"unit" json:"unit"`
	Quantity    Amount `yaml:"quantity" json:"quantity"`
	UnitPrice   Amount `yaml:"unit_price" json:"unit_price"`
	Note        string `yaml:"note" json:"note"`
}

type NotesFile struct {
	Assumptions []struct {
		Assumption string `yaml:"assumption"`
		Impact     string `yaml:"impact"`
		Action     string `yaml:"action"`
	} `yaml:"assumptions"`
	PaymentTerms []struct {
		Term      string `yaml:"term"`
		Condition string `yaml:"condition"`
		Details   string `yaml:"details"`
	} `yaml:"payment_terms"`
	Optimizations []struct {
		Opportunity    string `yaml:"opportunity"`
		Savings        string `yaml:"savings"`
		Recommendation string `yaml:"recommendation"`
	} `yaml:"optimizations"`
}

// Amount is a number kept as its source text so that a malformed value is
// reported by Validate alongside every other problem instead of aborting
// the decode.
type Amount struct {
	Raw    string
	Set    bool
	scalar bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(n *yaml.Node) error {
	a.Set = true
	a.scalar = n.Kind == yaml.ScalarNode
	if a.scalar {
		a.Raw = strings.TrimSpace(n.Value)
	} else {
		a.Raw = fmt.Sprintf("<%s at line %d>", strings.TrimPrefix(n.Tag, "!!"), n.Line)
	}
	return nil
}

var errNotNumeric = errors.New("must be a number")

// Decimal parses the amount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if !a.scalar || a.Raw == "" {
		return decimal.Zero, errNotNumeric
	}
	v, err := decimal.NewFromString(a.Raw)
	if err != nil {
		return decimal.Zero, errNotNumeric
	}
	return v, nil
}

// Num builds a set Amount, mainly for constructing files in code.
func Num(s string) Amount {
	return Amount{Raw: s, Set: true, scalar: true}
}

// Load decodes a data file. Unknown fields are rejected.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode data file: file is empty")
		}
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	return &f, nil
}

// LoadFile decodes the data file at path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer fh.Close()
	f, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Default returns the bundled SERA 2026 data file.
func Default() (*File, error) {
	return Load(bytes.NewReader(defaultData))
}

// DefaultBytes returns the raw bundled data file.
func DefaultBytes() []byte {
	return append([]byte(nil), defaultData...)
}
