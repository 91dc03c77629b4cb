package dataset

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/zalepa/agencydash/metrics"
)

// WriteCSV writes t with an AGENCY column followed by the declared metrics in
// upper case, matching the column names of the source spreadsheets.
func WriteCSV(w io.Writer, t *metrics.Table) error {
	cw := csv.NewWriter(w)

	fields := t.Fields()
	header := []string{"AGENCY"}
	for _, m := range fields {
		header = append(header, strings.ToUpper(string(m)))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range t.Rows() {
		row := []string{r.Agency}
		for _, m := range fields {
			row = append(row, strconv.FormatInt(r.Count(m), 10))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes t as an indented array of flat objects, the same shape
// Decode accepts.
func WriteJSON(w io.Writer, t *metrics.Table) error {
	rows := make([]map[string]any, 0, t.Len())
	for _, r := range t.Rows() {
		obj := map[string]any{"agency": r.Agency}
		for m, v := range r.Counts {
			obj[string(m)] = v
		}
		rows = append(rows, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
