package metrics

import (
	"sort"
	"strings"
)

// Metric identifies one count column of the agency table.
type Metric string

const (
	DAUnsigned   Metric = "da_unsigned"
	DAPrepared3M Metric = "da_prepared_3m"
	RPAFound     Metric = "rpa_found"
	EHRSigned    Metric = "ehr_signed"
	DAFiled      Metric = "da_filed"
)

// AggregateAgency is the agency name of the pre-summed row that closes the
// source table.
const AggregateAgency = "Total"

// AllMetrics lists every known column in display order.
var AllMetrics = []Metric{DAUnsigned, DAPrepared3M, RPAFound, EHRSigned, DAFiled}

// SummaryCategories are the columns that make up CategoryTotals. DA Filed is
// a placeholder column and is left out.
var SummaryCategories = []Metric{DAUnsigned, DAPrepared3M, RPAFound, EHRSigned}

// metricAliases maps alternative column names found in source data to the
// canonical metric.
var metricAliases = map[string]Metric{
	"rpa_db_unsigned": RPAFound,
}

// ParseMetric resolves a column name (case-insensitive, aliases allowed) to a
// Metric.
func ParseMetric(s string) (Metric, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for _, m := range AllMetrics {
		if key == string(m) {
			return m, true
		}
	}
	if m, ok := metricAliases[key]; ok {
		return m, true
	}
	return "", false
}

// Label is the short human-readable category name.
func (m Metric) Label() string {
	switch m {
	case DAUnsigned:
		return "DA Unsigned"
	case DAPrepared3M:
		return "DA Prepared 3M"
	case RPAFound:
		return "RPA DB Unsigned"
	case EHRSigned:
		return "EHR Signed"
	case DAFiled:
		return "DA Filed"
	}
	return string(m)
}

// AxisLabel is the value-axis label used on per-agency charts.
func (m Metric) AxisLabel() string {
	if m == DAPrepared3M {
		return "DA Prepared (3M)"
	}
	return m.Label()
}

// ChartTitle is the title of the per-agency chart for m.
func (m Metric) ChartTitle() string {
	switch m {
	case DAPrepared3M:
		return "DA Prepared in Last 3 Months"
	case DAUnsigned, RPAFound, EHRSigned, DAFiled:
		return m.Label() + " per Agency"
	}
	return string(m)
}

// Record is one row as declared by a data source. A metric that the source
// did not provide is absent from Values.
type Record struct {
	Agency string
	Values map[Metric]int64
}

// AgencyRecord is one validated row of a Table.
type AgencyRecord struct {
	Agency string           `json:"agency"`
	Counts map[Metric]int64 `json:"counts"`
}

// Count returns the value of m, or zero when the column is not declared.
func (r AgencyRecord) Count(m Metric) int64 {
	return r.Counts[m]
}

// IsAggregate reports whether r is the pre-summed "Total" row.
func (r AgencyRecord) IsAggregate() bool {
	return r.Agency == AggregateAgency
}

func (r AgencyRecord) clone() AgencyRecord {
	counts := make(map[Metric]int64, len(r.Counts))
	for k, v := range r.Counts {
		counts[k] = v
	}
	return AgencyRecord{Agency: r.Agency, Counts: counts}
}

// Table is an ordered, read-only sequence of agency rows sharing one set of
// declared metrics. Build one with BuildTable.
type Table struct {
	rows   []AgencyRecord
	fields []Metric
}

// Len returns the number of rows, including an aggregate row if present.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all rows in source order.
func (t *Table) Rows() []AgencyRecord {
	out := make([]AgencyRecord, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Row returns a copy of row i.
func (t *Table) Row(i int) AgencyRecord {
	return t.rows[i].clone()
}

// Fields returns the declared metrics in display order.
func (t *Table) Fields() []Metric {
	return append([]Metric(nil), t.fields...)
}

// Has reports whether the table declares m.
func (t *Table) Has(m Metric) bool {
	for _, f := range t.fields {
		if f == m {
			return true
		}
	}
	return false
}

// Agencies returns agency names in source order, optionally skipping the
// aggregate row.
func (t *Table) Agencies(excludeAggregateRow bool) []string {
	names := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		if excludeAggregateRow && r.IsAggregate() {
			continue
		}
		names = append(names, r.Agency)
	}
	return names
}

// Column returns the values of m aligned with Agencies(excludeAggregateRow).
func (t *Table) Column(m Metric, excludeAggregateRow bool) []int64 {
	vals := make([]int64, 0, len(t.rows))
	for _, r := range t.rows {
		if excludeAggregateRow && r.IsAggregate() {
			continue
		}
		vals = append(vals, r.Counts[m])
	}
	return vals
}

// AggregateRow returns the "Total" row if the table has one.
func (t *Table) AggregateRow() (AgencyRecord, bool) {
	for _, r := range t.rows {
		if r.IsAggregate() {
			return r.clone(), true
		}
	}
	return AgencyRecord{}, false
}

// sortMetrics orders ms by their position in AllMetrics.
func sortMetrics(ms []Metric) {
	pos := make(map[Metric]int, len(AllMetrics))
	for i, m := range AllMetrics {
		pos[m] = i
	}
	sort.SliceStable(ms, func(i, j int) bool {
		pi, iok := pos[ms[i]]
		pj, jok := pos[ms[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		}
		return ms[i] < ms[j]
	})
}
