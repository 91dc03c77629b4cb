package web

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/zalepa/agencydash/render"
)

//go:embed page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

type card struct {
	Label string
	Value string
}

type chartRef struct {
	ID    string
	Title string
}

type pageData struct {
	Title          string
	PageBackground template.CSS
	Accent         template.CSS
	Columns        int
	Cards          []card
	Charts         []chartRef
	Footer         template.HTML
}

var footerPolicy = bluemonday.UGCPolicy()

// sanitizeFooter strips scripts, handlers and other unsafe markup from
// operator-supplied footer HTML.
func sanitizeFooter(s string) template.HTML {
	return template.HTML(footerPolicy.Sanitize(s))
}

func (h *Handler) pageData() pageData {
	theme := h.cfg.Options.Theme
	d := pageData{
		Title:          h.cfg.Title,
		PageBackground: template.CSS(theme.PageBackground),
		Accent:         template.CSS(theme.Graph),
		Columns:        h.cfg.Columns,
		Footer:         sanitizeFooter(h.cfg.FooterHTML),
	}
	for _, ct := range h.totals.Ordered() {
		d.Cards = append(d.Cards, card{Label: "Total " + ct.Label, Value: render.FormatCount(ct.Total)})
	}
	for _, c := range h.charts {
		d.Charts = append(d.Charts, chartRef{ID: c.ID, Title: c.Title})
	}
	return d
}

func renderPage(d pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
