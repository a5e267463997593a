package web2pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// mergeSource identifies which render a merged segment comes from.
type mergeSource int

const (
	fromFirst mergeSource = iota // header-visible render
	fromRest                     // header-hidden render
)

// mergeSegment is a contiguous page range taken from one render.
type mergeSegment struct {
	source mergeSource
	from   int // 1-based, inclusive
	to     int // inclusive
}

// pages returns the number of pages the segment contributes.
func (s mergeSegment) pages() int {
	return s.to - s.from + 1
}

// mergePlan computes which pages of which render make up the merged
// document: page 1 of the header-visible render, then pages 2..N of the
// header-hidden render. Both renders depict the same content from page 1
// on, so the header-hidden render's own first page is discarded as a
// duplicate. A render with too few pages simply contributes nothing.
//
// Known limitation: the splice assumes both renders paginate identically
// beyond page 1. Hiding the header could in principle reflow content and
// shift page breaks; no re-pagination is attempted.
func mergePlan(firstPages, restPages int) []mergeSegment {
	var plan []mergeSegment
	if firstPages >= 1 {
		plan = append(plan, mergeSegment{source: fromFirst, from: 1, to: 1})
	}
	if restPages >= 2 {
		plan = append(plan, mergeSegment{source: fromRest, from: 2, to: restPages})
	}
	return plan
}

// planPages returns the total page count of a plan.
func planPages(plan []mergeSegment) int {
	n := 0
	for _, seg := range plan {
		n += seg.pages()
	}
	return n
}

// pdfcpuMerger splices two rendered documents with pdfcpu.
type pdfcpuMerger struct {
	conf *model.Configuration
}

func newPdfcpuMerger() *pdfcpuMerger {
	return &pdfcpuMerger{conf: model.NewDefaultConfiguration()}
}

// Merge stitches firstPath and restPath into outPath following mergePlan
// and returns the merged page count. A zero-page plan writes nothing and
// returns 0; that is a valid degenerate outcome, not an error.
func (m *pdfcpuMerger) Merge(firstPath, restPath, outPath string, ws *workspace) (int, error) {
	firstPages, err := api.PageCountFile(firstPath)
	if err != nil {
		return 0, fmt.Errorf("%w: counting pages of header-visible render: %v", ErrMerge, err)
	}
	restPages, err := api.PageCountFile(restPath)
	if err != nil {
		return 0, fmt.Errorf("%w: counting pages of header-hidden render: %v", ErrMerge, err)
	}

	plan := mergePlan(firstPages, restPages)
	if len(plan) == 0 {
		return 0, nil
	}

	var parts []string
	for i, seg := range plan {
		src := firstPath
		if seg.source == fromRest {
			src = restPath
		}
		sel := fmt.Sprintf("%d-%d", seg.from, seg.to)
		part := outPath
		if len(plan) > 1 {
			part = ws.Path(fmt.Sprintf("part%d", i+1), "pdf")
		}
		if err := api.TrimFile(src, part, []string{sel}, m.conf); err != nil {
			return 0, fmt.Errorf("%w: extracting pages %s: %v", ErrMerge, sel, err)
		}
		parts = append(parts, part)
	}

	if len(parts) > 1 {
		if err := api.MergeCreateFile(parts, outPath, false, m.conf); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMerge, err)
		}
	}

	return planPages(plan), nil
}
