package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budgetproposal/proposal"
)

// utf8BOM lets spreadsheet applications detect the encoding of the Arabic
// event names.
const utf8BOM = "\uFEFF"

var csvEventHeader = []string{"#", "Group", "Event", "Arabic Name", "Date", "Attendance", "Category", "Tier", "Subtotal", "Commission", "Total"}

// GenerateCSV writes the executive summary followed by the per-event detail
// of the quarter groups and one section per remaining group. Amounts are
// plain decimals with two places.
func GenerateCSV(data ExportData) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)

	records := [][]string{
		{data.Title},
		{"Client", data.Client},
		{"Reference", data.Reference},
		{"Document ID", data.DocumentID},
		{"Generated", data.GeneratedDate},
		{"Currency", data.Currency},
		{},
		{"EXECUTIVE SUMMARY"},
		{"Group", "Events", "Total", "Share %"},
	}
	for _, g := range data.Groups {
		records = append(records, []string{g.Label, strconv.Itoa(len(g.Events)), csvAmount(g.Total), g.Share.StringFixed(2)})
	}
	records = append(records,
		[]string{"All Events Subtotal", "", csvAmount(data.EventsTotal)},
		[]string{"Grand Total (Excluding VAT)", "", csvAmount(data.ExVAT)},
		[]string{"VAT (" + FormatRate(data.TaxRate) + ")", "", csvAmount(data.VAT)},
		[]string{"Grand Total (Including VAT)", "", csvAmount(data.IncVAT)},
	)
	if data.WithContingency != nil && data.ContingencyRate != nil {
		records = append(records, []string{"With " + FormatRate(*data.ContingencyRate) + " Contingency", "", csvAmount(*data.WithContingency)})
	}

	var quarters, others []ExportGroup
	for _, g := range data.Groups {
		if g.Kind == proposal.KindQuarter {
			quarters = append(quarters, g)
		} else {
			others = append(others, g)
		}
	}
	if len(quarters) > 0 {
		records = append(records, []string{}, []string{"ALL EVENTS"}, csvEventHeader)
		for _, g := range quarters {
			records = append(records, csvEventRows(g)...)
		}
		records = append(records, []string{"", "", "ALL EVENTS TOTAL", "", "", "", "", "", "", "", csvAmount(data.EventsTotal)})
	}
	for _, g := range others {
		records = append(records, []string{}, []string{strings.ToUpper(g.Name)}, csvEventHeader)
		records = append(records, csvEventRows(g)...)
		records = append(records, []string{"", "", g.Name + " Total", "", "", "", "", "", "", "", csvAmount(g.Total)})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvEventRows(g ExportGroup) [][]string {
	rows := make([][]string, 0, len(g.Events))
	for _, ev := range g.Events {
		rows = append(rows, []string{
			ev.Number,
			ev.Group,
			ev.Name,
			ev.NameAR,
			ev.Date,
			strconv.Itoa(ev.Attendance),
			ev.Category,
			ev.Tier,
			csvAmount(ev.Subtotal),
			csvAmount(ev.Commission),
			csvAmount(ev.Total),
		})
	}
	return rows
}

func csvAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
