package metrics

import "sync"

var defaultAgencies = []string{
	"MD HEALTH CARE LLC",
	"Brigham Home Care Services, Inc.",
	"Peace and Harmony Homecare LLC",
	"Omega Homecare Systems, Inc",
	"CORNERSTONE HEALTHCARE SYSTEMS LLC",
	"Pinnacle Health Services Inc.",
	"Luna Vista Home Healthcare",
	"LA FAMILIA HEALTH, INC.",
	"KAL HOME HEALTH INC",
	"Century Home Healthcare Services LLC",
	AggregateAgency,
}

var defaultColumns = map[Metric][]int64{
	DAUnsigned:   {62, 3042, 14, 31, 42, 1, 179, 364, 1, 46, 3782},
	DAPrepared3M: {38, 8, 6, 4, 7, 0, 24, 0, 0, 0, 87},
	RPAFound:     {3, 1, 1, 0, 2, 0, 4, 0, 0, 0, 11},
	EHRSigned:    {0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 1},
	// No source populates filed counts yet.
	DAFiled: {0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
}

// DefaultRecords returns the built-in agency dataset: ten agencies followed by
// their "Total" row. Each call returns fresh values.
func DefaultRecords() []Record {
	records := make([]Record, len(defaultAgencies))
	for i, name := range defaultAgencies {
		vals := make(map[Metric]int64, len(defaultColumns))
		for m, col := range defaultColumns {
			vals[m] = col[i]
		}
		records[i] = Record{Agency: name, Values: vals}
	}
	return records
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := BuildTable(DefaultRecords())
	if err != nil {
		panic("metrics: built-in dataset: " + err.Error())
	}
	return t
})

// Default returns the built-in dataset as a Table. It is built on first use
// and shared afterwards.
func Default() *Table {
	return defaultTable()
}
