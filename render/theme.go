package render

import (
	"fmt"
	"image/color"
	"regexp"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Theme holds the colours shared by the charts, the PDF report and the web
// page. Colours are CSS hex strings so the page can use them verbatim.
type Theme struct {
	Graph               string   // bar fill and accent colour
	GraphBackground     string   // chart background
	PageBackground      string   // page body
	TotalsPalette       []string // "Total Summary" pie slices
	DistributionPalette []string // per-agency pie slices
}

// DefaultTheme is the dark violet on lavender scheme of the agency
// dashboards.
func DefaultTheme() Theme {
	return Theme{
		Graph:           "#4B0082",
		GraphBackground: "#FFFFFF",
		PageBackground:  "#E6E6FA",
		TotalsPalette:   []string{"#4B0082", "#6A5ACD", "#8A2BE2", "#9370DB"},
		DistributionPalette: []string{
			"#66C5CC", "#F6CF71", "#F89C74", "#DCB0F2", "#87C55F", "#9EB9F3",
			"#FE88B1", "#C9DB74", "#8BE0A4", "#B497E7", "#B3B3B3",
		},
	}
}

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseHex converts "#RRGGBB" or "#RGB" to a colour.
func ParseHex(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if !hexPattern.MatchString(s) {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#")), nil
}

// Validate checks that every colour in t parses.
func (t Theme) Validate() error {
	all := append([]string{t.Graph, t.GraphBackground, t.PageBackground}, t.TotalsPalette...)
	all = append(all, t.DistributionPalette...)
	for _, s := range all {
		if _, err := ParseHex(s); err != nil {
			return err
		}
	}
	if len(t.TotalsPalette) == 0 || len(t.DistributionPalette) == 0 {
		return fmt.Errorf("theme palettes must not be empty")
	}
	return nil
}

// colorOf parses a colour already checked by Validate, falling back to black.
func colorOf(s string) color.Color {
	c, err := ParseHex(s)
	if err != nil {
		return color.Black
	}
	return c
}

func palette(hexes []string) []color.Color {
	out := make([]color.Color, len(hexes))
	for i, h := range hexes {
		out[i] = colorOf(h)
	}
	return out
}
