package web2pdf

import (
	"fmt"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tobran/go-web2pdf/internal/stamp"
)

// overlayRecord carries the per-invocation metadata stamped onto every
// page. The timestamp is sampled once at the start of the capture, so all
// pages report the same fetch time.
type overlayRecord struct {
	url       string
	fetchedAt time.Time
	pages     int
}

// stampRecord converts to the writer's representation.
func (r overlayRecord) stampRecord() stamp.Record {
	return stamp.Record{
		URL:       r.url,
		FetchedAt: r.fetchedAt.Format(timestampLayout),
		PageCount: r.pages,
	}
}

// pdfcpuStamper fuses the overlay document onto the merged content with
// pdfcpu: page i of the stamp file is applied on top of page i of the
// content, leaving the content layer untouched underneath.
type pdfcpuStamper struct {
	conf *model.Configuration
}

func newPdfcpuStamper() *pdfcpuStamper {
	return &pdfcpuStamper{conf: model.NewDefaultConfiguration()}
}

// Stamp writes the final document to outPath. A zero-page record produces
// no output and no error (degenerate-but-valid input).
func (s *pdfcpuStamper) Stamp(inPath, outPath string, rec overlayRecord, ws *workspace) error {
	if rec.pages == 0 {
		return nil
	}

	overlayPDF, err := stamp.Build(rec.stampRecord())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOverlay, err)
	}

	stampPath := ws.Path("overlay", "pdf")
	if err := os.WriteFile(stampPath, overlayPDF, 0o644); err != nil {
		return fmt.Errorf("%w: writing stamp document: %v", ErrOverlay, err)
	}

	// One watermark per page, each pulling the matching stamp page.
	wms := make(map[int]*model.Watermark, rec.pages)
	for i := 1; i <= rec.pages; i++ {
		wm, err := api.PDFWatermark(fmt.Sprintf("%s:%d", stampPath, i),
			"pos:c, rot:0, scalefactor:1 abs", true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("%w: building stamp for page %d: %v", ErrOverlay, i, err)
		}
		wms[i] = wm
	}

	// This call writes the final document.
	if err := api.AddWatermarksMapFile(inPath, outPath, wms, s.conf); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return nil
}
