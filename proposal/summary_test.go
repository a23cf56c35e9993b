package proposal

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProposal() *Proposal {
	published := d("150000")
	return &Proposal{
		Title:    "Sample",
		Currency: "SAR",
		Rates:    DefaultRates(),
		Groups: []Group{
			{
				Key: "q1", Name: "Q1", Kind: KindQuarter, Sheet: SheetFinancial,
				Events: []Event{
					{Name: "A", Items: []LineItem{item("Gifts", "300", "260"), item("Stage", "1", "55000")}, PublishedTotal: &published},
					{Name: "B", Items: []LineItem{item("Venue", "1", "63100")}},
				},
			},
			{
				Key: "sports", Name: "Sports", Kind: KindSports, Sheet: SheetSports,
				Events: []Event{{Name: "Football", Items: []LineItem{item("Pitch", "1", "100000")}}},
			},
			{
				Key: "draft", Name: "Draft", Kind: KindQuarter, Sheet: SheetFinancial,
				Events: []Event{{Name: "Unscheduled", Items: []LineItem{item("Hall", "1", "999")}}},
			},
		},
		Rollup: []string{"q1", "sports"},
	}
}

func TestCompute(t *testing.T) {
	s, err := Compute(sampleProposal())
	require.NoError(t, err)

	assertDecimal(t, "225515", s.GroupTotal("q1"))
	assertDecimal(t, "115000", s.GroupTotal("sports"))
	assertDecimal(t, "1148.85", s.GroupTotal("draft"), "groups outside the rollup are still totalled")

	assertDecimal(t, "225515", s.Grand.EventsTotal)
	assertDecimal(t, "340515", s.Grand.ExVAT)
	assertDecimal(t, "51077.25", s.Grand.VAT)
	assertDecimal(t, "391592.25", s.Grand.IncVAT)
	require.NotNil(t, s.Grand.WithContingency)
	assertDecimal(t, "430751.475", *s.Grand.WithContingency)

	assertDecimal(t, "225515", s.Kinds[KindQuarter])
	assertDecimal(t, "115000", s.Kinds[KindSports])
	_, ok := s.Kinds[KindNewsletters]
	assert.False(t, ok)

	assertDecimal(t, "72565", s.Event("q1", 1).Total)
	assert.True(t, s.Event("q1", 9).Total.IsZero())
}

func TestCompute_Idempotent(t *testing.T) {
	p := sampleProposal()
	first, err := Compute(p)
	require.NoError(t, err)
	second, err := Compute(p)
	require.NoError(t, err)

	assert.Equal(t, first.Grand.ExVAT.String(), second.Grand.ExVAT.String())
	assert.Equal(t, first.Grand.IncVAT.String(), second.Grand.IncVAT.String())
	for key, gt := range first.Groups {
		assert.Equal(t, gt.Total.String(), second.Groups[key].Total.String(), key)
	}
}

func TestCompute_UnknownRollupKey(t *testing.T) {
	p := sampleProposal()
	p.Rollup = append(p.Rollup, "newsletters")

	_, err := Compute(p)
	var ref *ReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, "newsletters", ref.Key)
	assert.Equal(t, `rollup references unknown group "newsletters"`, err.Error())
}

func TestCompute_DuplicateRollupKey(t *testing.T) {
	p := sampleProposal()
	p.Rollup = []string{"q1", "q1"}

	_, err := Compute(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestCompute_InvalidItem(t *testing.T) {
	p := sampleProposal()
	p.Groups[1].Events[0].Items[0].UnitPrice = d("-1")

	_, err := Compute(p)
	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "group sports")
}

func TestCalcGrandTotal(t *testing.T) {
	got, err := CalcGrandTotal(sampleProposal())
	require.NoError(t, err)
	assertDecimal(t, "340515", got.ExVAT)
}

func TestSummaryShare(t *testing.T) {
	s, err := Compute(sampleProposal())
	require.NoError(t, err)

	share := s.Share("sports").Round(2)
	assertDecimal(t, "33.77", share)

	empty := &Summary{}
	assert.True(t, empty.ShareOf(decimal.NewFromInt(10)).IsZero())
}

func TestReconcile(t *testing.T) {
	p := sampleProposal()
	groupPublished := d("225515.4")
	p.Groups[0].PublishedTotal = &groupPublished

	s, err := Compute(p)
	require.NoError(t, err)

	got := Reconcile(p, s, d("1"))
	require.Len(t, got, 1, "group drift within tolerance is not reported")
	assert.Equal(t, "event", got[0].Scope)
	assert.Equal(t, "q1", got[0].Group)
	assert.Equal(t, "A", got[0].Name)
	assertDecimal(t, "2950", got[0].Diff())

	assert.Len(t, Reconcile(p, s, d("0.1")), 2)
	assert.Empty(t, Reconcile(p, s, d("5000")))
}
