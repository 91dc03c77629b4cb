package metrics

import (
	"errors"
	"reflect"
	"testing"
)

func rec(agency string, vals map[Metric]int64) Record {
	return Record{Agency: agency, Values: vals}
}

func TestComputeTotals_DefaultDataset(t *testing.T) {
	totals := ComputeTotals(Default(), true)
	want := CategoryTotals{
		DAUnsigned:   3782,
		DAPrepared3M: 87,
		RPAFound:     11,
		EHRSigned:    1,
	}
	if !reflect.DeepEqual(totals, want) {
		t.Errorf("got %v, want %v", totals, want)
	}
}

func TestComputeTotals_IncludeAggregateDoubleCounts(t *testing.T) {
	totals := ComputeTotals(Default(), false)
	want := CategoryTotals{
		DAUnsigned:   7564,
		DAPrepared3M: 174,
		RPAFound:     22,
		EHRSigned:    2,
	}
	if !reflect.DeepEqual(totals, want) {
		t.Errorf("got %v, want %v", totals, want)
	}
}

func TestComputeTotals_MatchesColumnSums(t *testing.T) {
	table, err := BuildTable([]Record{
		rec("A", map[Metric]int64{DAUnsigned: 5, EHRSigned: -2}),
		rec("Total", map[Metric]int64{DAUnsigned: 100, EHRSigned: 100}),
		rec("B", map[Metric]int64{DAUnsigned: 7, EHRSigned: 4}),
	})
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}

	totals := ComputeTotals(table, true)
	for _, m := range table.Fields() {
		var sum int64
		for _, v := range table.Column(m, true) {
			sum += v
		}
		if totals[m] != sum {
			t.Errorf("%s: got %d, want %d", m, totals[m], sum)
		}
	}
	if totals[EHRSigned] != 2 {
		t.Errorf("negative counts should be summed as-is, got %d", totals[EHRSigned])
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	table := Default()
	a := ComputeTotals(table, true)
	b := ComputeTotals(table, true)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("first %v, second %v", a, b)
	}
}

func TestComputeTotals_OnlyDeclaredCategories(t *testing.T) {
	table, err := BuildTable([]Record{
		rec("A", map[Metric]int64{DAUnsigned: 1, DAFiled: 9}),
	})
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	totals := ComputeTotals(table, true)
	want := CategoryTotals{DAUnsigned: 1}
	if !reflect.DeepEqual(totals, want) {
		t.Errorf("got %v, want %v", totals, want)
	}
}

func TestBuildTable_MissingField(t *testing.T) {
	records := DefaultRecords()
	delete(records[3].Values, DAFiled)

	_, err := BuildTable(records)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got error %v, want *SchemaError", err)
	}
	if schemaErr.Row != 3 {
		t.Errorf("Row = %d, want 3", schemaErr.Row)
	}
	if schemaErr.Agency != "Omega Homecare Systems, Inc" {
		t.Errorf("Agency = %q", schemaErr.Agency)
	}
	if !reflect.DeepEqual(schemaErr.Missing, []Metric{DAFiled}) {
		t.Errorf("Missing = %v, want [da_filed]", schemaErr.Missing)
	}
}

func TestBuildTable_FirstRecordMissingField(t *testing.T) {
	_, err := BuildTable([]Record{
		rec("A", map[Metric]int64{DAUnsigned: 1}),
		rec("B", map[Metric]int64{DAUnsigned: 1, DAFiled: 0}),
	})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got error %v, want *SchemaError", err)
	}
	if schemaErr.Row != 0 {
		t.Errorf("Row = %d, want 0", schemaErr.Row)
	}
}

func TestBuildTable_PreservesOrderAndDuplicates(t *testing.T) {
	records := []Record{
		rec("Zeta", map[Metric]int64{DAUnsigned: 1}),
		rec("Alpha", map[Metric]int64{DAUnsigned: 2}),
		rec("Zeta", map[Metric]int64{DAUnsigned: 3}),
	}
	table, err := BuildTable(records)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	got := table.Agencies(false)
	want := []string{"Zeta", "Alpha", "Zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("agencies = %v, want %v", got, want)
	}
	if col := table.Column(DAUnsigned, false); !reflect.DeepEqual(col, []int64{1, 2, 3}) {
		t.Errorf("column = %v", col)
	}
}

func TestBuildTable_Empty(t *testing.T) {
	table, err := BuildTable(nil)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len = %d, want 0", table.Len())
	}
	if totals := ComputeTotals(table, true); len(totals) != 0 {
		t.Errorf("totals = %v, want empty", totals)
	}
}

func TestTable_RowsAreCopies(t *testing.T) {
	table := Default()
	rows := table.Rows()
	rows[0].Counts[DAUnsigned] = -1
	if table.Row(0).Count(DAUnsigned) != 62 {
		t.Errorf("mutating a returned row changed the table")
	}
}

func TestTable_FieldsOrder(t *testing.T) {
	got := Default().Fields()
	if !reflect.DeepEqual(got, AllMetrics) {
		t.Errorf("fields = %v, want %v", got, AllMetrics)
	}
}

func TestCategoryTotalsOrdered(t *testing.T) {
	got := ComputeTotals(Default(), true).Ordered()
	want := []CategoryTotal{
		{Metric: DAUnsigned, Label: "DA Unsigned", Total: 3782},
		{Metric: DAPrepared3M, Label: "DA Prepared 3M", Total: 87},
		{Metric: RPAFound, Label: "RPA DB Unsigned", Total: 11},
		{Metric: EHRSigned, Label: "EHR Signed", Total: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestCheckAggregateRow(t *testing.T) {
	if m := CheckAggregateRow(Default()); len(m) != 0 {
		t.Errorf("built-in dataset: got mismatches %v", m)
	}

	table, err := BuildTable([]Record{
		rec("A", map[Metric]int64{RPAFound: 3, EHRSigned: 1}),
		rec("B", map[Metric]int64{RPAFound: 4, EHRSigned: 0}),
		rec("Total", map[Metric]int64{RPAFound: 11, EHRSigned: 1}),
	})
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	got := CheckAggregateRow(table)
	want := []Mismatch{{Metric: RPAFound, Declared: 11, Computed: 7}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCheckAggregateRow_NoAggregate(t *testing.T) {
	table, err := BuildTable([]Record{rec("A", map[Metric]int64{DAUnsigned: 1})})
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}
	if got := CheckAggregateRow(table); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input string
		want  Metric
		ok    bool
	}{
		{"da_unsigned", DAUnsigned, true},
		{"DA_UNSIGNED", DAUnsigned, true},
		{"DA_PREPARED_3M", DAPrepared3M, true},
		{"rpa_found", RPAFound, true},
		{"RPA_DB_UNSIGNED", RPAFound, true},
		{"ehr-signed", EHRSigned, true},
		{" da_filed ", DAFiled, true},
		{"agency", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMetric(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMetric(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMetricTitles(t *testing.T) {
	tests := []struct {
		m     Metric
		title string
		axis  string
	}{
		{DAUnsigned, "DA Unsigned per Agency", "DA Unsigned"},
		{DAPrepared3M, "DA Prepared in Last 3 Months", "DA Prepared (3M)"},
		{RPAFound, "RPA DB Unsigned per Agency", "RPA DB Unsigned"},
		{EHRSigned, "EHR Signed per Agency", "EHR Signed"},
		{DAFiled, "DA Filed per Agency", "DA Filed"},
	}
	for _, tt := range tests {
		if got := tt.m.ChartTitle(); got != tt.title {
			t.Errorf("%s.ChartTitle() = %q, want %q", tt.m, got, tt.title)
		}
		if got := tt.m.AxisLabel(); got != tt.axis {
			t.Errorf("%s.AxisLabel() = %q, want %q", tt.m, got, tt.axis)
		}
	}
}
