package metrics

import (
	"fmt"
	"strings"
)

// SchemaError reports a record whose declared fields differ from the rest of
// the table.
type SchemaError struct {
	Row     int // zero-based index in the input
	Agency  string
	Missing []Metric
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return fmt.Sprintf("row %d (%q): missing field(s) %s", e.Row, e.Agency, strings.Join(names, ", "))
}

// BuildTable validates records and returns them as a Table in input order.
// Every record must declare the same fields; the expected set is the union
// over all records. Values are not range-checked.
func BuildTable(records []Record) (*Table, error) {
	declared := make(map[Metric]bool)
	for _, rec := range records {
		for m := range rec.Values {
			declared[m] = true
		}
	}
	fields := make([]Metric, 0, len(declared))
	for m := range declared {
		fields = append(fields, m)
	}
	sortMetrics(fields)

	rows := make([]AgencyRecord, len(records))
	for i, rec := range records {
		var missing []Metric
		for _, m := range fields {
			if _, ok := rec.Values[m]; !ok {
				missing = append(missing, m)
			}
		}
		if len(missing) > 0 {
			return nil, &SchemaError{Row: i, Agency: rec.Agency, Missing: missing}
		}
		counts := make(map[Metric]int64, len(fields))
		for _, m := range fields {
			counts[m] = rec.Values[m]
		}
		rows[i] = AgencyRecord{Agency: rec.Agency, Counts: counts}
	}

	return &Table{rows: rows, fields: fields}, nil
}

// CategoryTotals maps each summary category declared by a table to its
// column sum.
type CategoryTotals map[Metric]int64

// CategoryTotal is one entry of CategoryTotals.
type CategoryTotal struct {
	Metric Metric `json:"metric"`
	Label  string `json:"label"`
	Total  int64  `json:"total"`
}

// Ordered returns the totals in SummaryCategories order.
func (c CategoryTotals) Ordered() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(c))
	for _, m := range SummaryCategories {
		v, ok := c[m]
		if !ok {
			continue
		}
		out = append(out, CategoryTotal{Metric: m, Label: m.Label(), Total: v})
	}
	return out
}

// ComputeTotals sums every summary column of t. When excludeAggregateRow is
// set, rows named "Total" are skipped; otherwise they are summed like any
// other row.
func ComputeTotals(t *Table, excludeAggregateRow bool) CategoryTotals {
	totals := make(CategoryTotals)
	for _, m := range SummaryCategories {
		if !t.Has(m) {
			continue
		}
		totals[m] = 0
	}
	for _, r := range t.rows {
		if excludeAggregateRow && r.IsAggregate() {
			continue
		}
		for m := range totals {
			totals[m] += r.Counts[m]
		}
	}
	return totals
}

// Mismatch is a column where the declared aggregate row disagrees with the
// sum of the agency rows.
type Mismatch struct {
	Metric   Metric `json:"metric"`
	Declared int64  `json:"declared"`
	Computed int64  `json:"computed"`
}

// CheckAggregateRow compares the "Total" row of t, if any, against the sum of
// the other rows for every declared column.
func CheckAggregateRow(t *Table) []Mismatch {
	agg, ok := t.AggregateRow()
	if !ok {
		return nil
	}
	var out []Mismatch
	for _, m := range t.fields {
		var sum int64
		for _, v := range t.Column(m, true) {
			sum += v
		}
		if declared := agg.Count(m); declared != sum {
			out = append(out, Mismatch{Metric: m, Declared: declared, Computed: sum})
		}
	}
	return out
}
