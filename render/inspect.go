package render

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFInfo summarizes a PDF document.
type PDFInfo struct {
	Pages int
	// ContentBytes is the decoded content stream size of each page; an
	// empty page has zero.
	ContentBytes []int
}

// EmptyPages returns the 1-based numbers of pages with no content.
func (i *PDFInfo) EmptyPages() []int {
	var out []int
	for n, size := range i.ContentBytes {
		if size == 0 {
			out = append(out, n+1)
		}
	}
	return out
}

// InspectPDFFile opens path and inspects it.
func InspectPDFFile(path string) (*PDFInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return InspectPDF(f)
}

// InspectPDF reads a PDF and decodes the content stream of every page.
func InspectPDF(rs io.ReadSeeker) (*PDFInfo, error) {
	ctx, err := pdfcpu.Read(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	if err := pdfcpu.OptimizeXRefTable(ctx); err != nil {
		return nil, fmt.Errorf("optimize xref: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	info := &PDFInfo{Pages: ctx.PageCount, ContentBytes: make([]int, ctx.PageCount)}
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d dict: %w", i, err)
		}

		obj, found := pageDict.Find("Contents")
		if !found {
			continue
		}

		data, err := pageContent(ctx, obj)
		if err != nil {
			return nil, fmt.Errorf("page %d content stream: %w", i, err)
		}
		info.ContentBytes[i-1] = len(bytes.TrimSpace(data))
	}

	return info, nil
}

// pageContent returns the decoded drawing operators behind a page's Contents
// entry. A report page drawn by Report.Write is one stream; other producers
// may split a page into an array of streams, which are concatenated.
func pageContent(ctx *model.Context, obj types.Object) ([]byte, error) {
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case types.StreamDict:
		if err := v.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return v.Content, nil

	case types.Array:
		var buf bytes.Buffer
		for _, item := range v {
			data, err := pageContent(ctx, item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			// Streams of one page may split operators at their boundary.
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("page Contents is a %T, want a stream or array", obj)
	}
}
