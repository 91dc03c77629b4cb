package metrics

import (
	"sort"
	"strings"
	"unicode"
)

// corporateSuffixes lists trailing business designations. Order matters:
// longer forms must come first so "INCORPORATED" is tried before "INC".
var corporateSuffixes = []string{
	"INCORPORATED", "CORPORATION", "COMPANY", "LIMITED", "CORP", "INC", "LLC", "LLP", "LTD", "CO", "PC",
}

// normalizeAgencyName uppercases name, drops punctuation and strips any
// trailing corporate designations.
func normalizeAgencyName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToUpper(r)
		}
		return ' '
	}, name)
	words := strings.Fields(cleaned)

	for len(words) > 1 {
		last := words[len(words)-1]
		stripped := false
		for _, suffix := range corporateSuffixes {
			if last == suffix {
				words = words[:len(words)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.Join(words, " ")
}

// DuplicatePair is two rows whose agency names likely refer to the same
// agency.
type DuplicatePair struct {
	First      string `json:"first"`
	Second     string `json:"second"`
	FirstRow   int    `json:"firstRow"`
	SecondRow  int    `json:"secondRow"`
	Normalized string `json:"normalized"`
}

// NearDuplicates finds agency names that collapse to the same normalized form
// (case, punctuation and corporate suffix ignored). Exact repeats are
// reported too. The aggregate row is never compared.
func NearDuplicates(t *Table) []DuplicatePair {
	groups := make(map[string][]int)
	for i, r := range t.rows {
		if r.IsAggregate() {
			continue
		}
		key := normalizeAgencyName(r.Agency)
		groups[key] = append(groups[key], i)
	}

	var pairs []DuplicatePair
	for key, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		for i := 0; i < len(idx); i++ {
			for j := i + 1; j < len(idx); j++ {
				pairs = append(pairs, DuplicatePair{
					First:      t.rows[idx[i]].Agency,
					Second:     t.rows[idx[j]].Agency,
					FirstRow:   idx[i],
					SecondRow:  idx[j],
					Normalized: key,
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].FirstRow != pairs[j].FirstRow {
			return pairs[i].FirstRow < pairs[j].FirstRow
		}
		return pairs[i].SecondRow < pairs[j].SecondRow
	})
	return pairs
}
