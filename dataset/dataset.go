// Package dataset loads agency metric records from the built-in literal
// table, a local JSON, CSV or HCL file, or an http(s) URL.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zalepa/agencydash/metrics"
)

// Builtin is the source name for the compiled-in dataset.
const Builtin = "builtin"

var (
	// ErrUnsupportedFormat is returned for a source whose extension is not
	// .json, .csv or .hcl.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrUnknownField is returned for a column that does not name a metric.
	ErrUnknownField = errors.New("unknown field")
	// ErrDuplicateField is returned when one row or header gives the same
	// field twice, including through an alias such as rpa_db_unsigned.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrMissingAgency is returned for a row or header without an agency name.
	ErrMissingAgency = errors.New("no agency")
)

// agencyKeys are the column names accepted for the agency name.
var agencyKeys = []string{"agency", "agency_name", "name"}

func isAgencyKey(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range agencyKeys {
		if s == k {
			return true
		}
	}
	return false
}

// Load reads records from source: "" or "builtin" for the compiled-in table,
// an http(s) URL, or a file path.
func Load(ctx context.Context, source string) ([]metrics.Record, error) {
	switch {
	case source == "" || source == Builtin:
		return metrics.DefaultRecords(), nil
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		data, err := fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		return Decode(urlPath(source), data)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(source, data)
}

// Decode parses data according to the extension of name.
func Decode(name string, data []byte) ([]metrics.Record, error) {
	var (
		records []metrics.Record
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		records, err = decodeJSON(data)
	case ".csv":
		records, err = decodeCSV(data)
	case ".hcl":
		records, err = decodeHCL(filepath.Base(name), data)
	default:
		return nil, fmt.Errorf("%s: %w %q", name, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return records, nil
}

func urlPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return path.Base(raw)
}

// decodeJSON accepts an array of flat objects:
//
//	[{"agency": "KAL HOME HEALTH INC", "da_unsigned": 1, "da_filed": 0}, ...]
func decodeJSON(data []byte) ([]metrics.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}

	records := make([]metrics.Record, 0, len(rows))
	for i, row := range rows {
		rec := metrics.Record{Values: make(map[metrics.Metric]int64)}
		agencyKey := ""
		seen := make(map[metrics.Metric]string)
		for key, raw := range row {
			if isAgencyKey(key) {
				if agencyKey != "" {
					return nil, fmt.Errorf("row %d: %w: agency given as %q and %q", i, ErrDuplicateField, agencyKey, key)
				}
				agencyKey = key
				name, ok := raw.(string)
				if !ok {
					return nil, fmt.Errorf("row %d: %s must be a string", i, key)
				}
				rec.Agency = name
				continue
			}
			m, ok := metrics.ParseMetric(key)
			if !ok {
				return nil, fmt.Errorf("row %d: %w %q", i, ErrUnknownField, key)
			}
			if prev, dup := seen[m]; dup {
				return nil, fmt.Errorf("row %d: %w: %s given as %q and %q", i, ErrDuplicateField, m, prev, key)
			}
			seen[m] = key
			num, ok := raw.(json.Number)
			if !ok {
				return nil, fmt.Errorf("row %d: %s must be a number", i, key)
			}
			v, err := num.Int64()
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i, key, err)
			}
			rec.Values[m] = v
		}
		if agencyKey == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrMissingAgency)
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeCSV expects a header row with an agency column and one column per
// metric. An empty cell leaves that metric undeclared for the row.
func decodeCSV(data []byte) ([]metrics.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV")
	}
	if err != nil {
		return nil, err
	}

	agencyCol := -1
	cols := make([]metrics.Metric, len(header))
	seen := make(map[metrics.Metric]string)
	for i, h := range header {
		if isAgencyKey(h) {
			if agencyCol >= 0 {
				return nil, fmt.Errorf("header: %w: agency given as %q and %q", ErrDuplicateField, header[agencyCol], h)
			}
			agencyCol = i
			continue
		}
		m, ok := metrics.ParseMetric(h)
		if !ok {
			return nil, fmt.Errorf("header: %w %q", ErrUnknownField, h)
		}
		if prev, dup := seen[m]; dup {
			return nil, fmt.Errorf("header: %w: %s given as %q and %q", ErrDuplicateField, m, prev, h)
		}
		seen[m] = h
		cols[i] = m
	}
	if agencyCol < 0 {
		return nil, fmt.Errorf("header: %w column", ErrMissingAgency)
	}

	var records []metrics.Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := metrics.Record{Agency: row[agencyCol], Values: make(map[metrics.Metric]int64)}
		for i, cell := range row {
			if i == agencyCol {
				continue
			}
			cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
			if cell == "" {
				continue
			}
			v, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, cols[i], err)
			}
			rec.Values[cols[i]] = v
		}
		records = append(records, rec)
	}
	return records, nil
}
