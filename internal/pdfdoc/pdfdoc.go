// Package pdfdoc creates reproducible fpdf documents and inspects finished PDFs
// with pdfcpu.
package pdfdoc

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home on first use.
	api.DisableConfigDir()
}

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// A4 is the page size of the inspection request form.
var A4 = Size{Width: 595.28, Height: 841.89}

// epoch stamps documents rendered without an inspection date.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options controls document metadata.
type Options struct {
	Title string
	// Created is written as both creation and modification date. The zero time
	// stamps a fixed epoch so output never depends on the wall clock.
	Created            time.Time
	DisableCompression bool
}

// New returns a portrait document measured in points with reproducible metadata.
func New(size Size, opts Options) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	stamp := opts.Created
	if stamp.IsZero() {
		stamp = epoch
	}
	stamp = stamp.UTC()
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(!opts.DisableCompression)
	pdf.SetCreator("inspection-request", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	return pdf
}

// Bytes finalizes pdf and returns its content.
func Bytes(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		return nil, fmt.Errorf("failed to write PDF: output has no PDF header")
	}
	return out, nil
}

// Config returns the pdfcpu configuration used for every read of a PDF.
func Config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages of a PDF.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), Config())
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// PageSizes returns the media box dimensions of every page in points.
func PageSizes(data []byte) ([]Size, error) {
	dims, err := api.PageDims(bytes.NewReader(data), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	sizes := make([]Size, 0, len(dims))
	for _, d := range dims {
		sizes = append(sizes, Size{Width: d.Width, Height: d.Height})
	}
	return sizes, nil
}

// Validate checks that data is a well formed PDF.
func Validate(data []byte) error {
	if err := api.Validate(bytes.NewReader(data), Config()); err != nil {
		return fmt.Errorf("failed to validate PDF: %w", err)
	}
	return nil
}

// Streams returns the decoded content of every stream object of a PDF, ordered
// by object number. Page content and form XObjects both show up here.
func Streams(data []byte) ([][]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	nrs := make([]int, 0, len(ctx.XRefTable.Table))
	for nr := range ctx.XRefTable.Table {
		nrs = append(nrs, nr)
	}
	sort.Ints(nrs)

	var streams [][]byte
	for _, nr := range nrs {
		entry := ctx.XRefTable.Table[nr]
		if entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("failed to decode stream %d: %w", nr, err)
		}
		streams = append(streams, sd.Content)
	}
	return streams, nil
}

// Stamp places the first page of the PDF at stampPath on top of the selected pages
// of data. The stamp is drawn at its natural size, anchored bottom-left.
func Stamp(data []byte, stampPath string, pages []string) ([]byte, error) {
	wm, err := api.PDFWatermark(stampPath, "pos:bl, off:0 0, scalefactor:1 abs, rot:0, op:1", true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare overlay stamp: %w", err)
	}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(data), &out, pages, wm, Config()); err != nil {
		return nil, fmt.Errorf("failed to merge overlay: %w", err)
	}
	return out.Bytes(), nil
}

// Close reports whether two sizes match within tol points on both axes.
func (s Size) Close(o Size, tol float64) bool {
	return math.Abs(s.Width-o.Width) <= tol && math.Abs(s.Height-o.Height) <= tol
}
