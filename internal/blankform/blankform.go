// Package blankform draws the static inspection request form that the overlay
// renderer stamps values onto. Labels, headings and check boxes are placed from
// the same layout table the overlay uses, so both always line up.
package blankform

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/Lllllllleong/inspectionrequest/internal/layout"
	"github.com/Lllllllleong/inspectionrequest/internal/pdfdoc"
	"github.com/go-pdf/fpdf"
)

const (
	labelSize   = 7
	headingSize = 9
	boxSide     = 9
	valueWidth  = 150
)

// Generate returns a two page PDF: the form itself and a sign-off page.
func Generate(l *layout.Layout, reg *checklist.Registry, opts pdfdoc.Options) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "Inspection Request Form"
	}
	pdf := pdfdoc.New(pdfdoc.Size{Width: l.Page.Width, Height: l.Page.Height}, opts)
	pdf.SetMargins(36, 36, 36)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	drawHeader(pdf, l)
	drawFields(pdf, tr, l, reg)
	if err := drawHeadings(pdf, tr, l, reg); err != nil {
		return nil, err
	}
	drawItems(pdf, tr, l, reg)

	pdf.AddPage()
	drawSignOff(pdf, tr, l)

	out, err := pdfdoc.Bytes(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to generate blank form: %w", err)
	}
	return out, nil
}

func drawHeader(pdf *fpdf.Fpdf, l *layout.Layout) {
	pdf.SetFont(l.Font.Family, "B", 16)
	pdf.SetXY(36, 36)
	pdf.CellFormat(l.Page.Width-72, 20, "INSPECTION REQUEST", "", 1, "C", false, 0, "")
	pdf.SetFont(l.Font.Family, "I", 8)
	pdf.CellFormat(l.Page.Width-72, 12, "Mechanical, Electrical & Plumbing / Civil Works", "", 1, "C", false, 0, "")
	pdf.SetLineWidth(0.8)
	pdf.Line(36, 74, l.Page.Width-36, 74)
	pdf.SetLineWidth(0.4)
}

func drawFields(pdf *fpdf.Fpdf, tr func(string) string, l *layout.Layout, reg *checklist.Registry) {
	labels := make(map[string]string)
	for _, f := range reg.Fields() {
		labels[f.ID] = f.Label
	}
	pdf.SetFont(l.Font.Family, "B", l.Font.Size)
	for _, id := range l.FieldIDs() {
		p := l.Fields[id]
		label := labels[id]
		if label == "" {
			label = id
		}
		pdf.Text(p.LabelX, p.Y, tr(label+":"))
		pdf.Line(p.X-2, p.Y+2, p.X+valueWidth, p.Y+2)
	}
	pdf.SetLineWidth(0.8)
	pdf.Line(36, 160, l.Page.Width-36, 160)
	pdf.SetLineWidth(0.4)
}

func drawHeadings(pdf *fpdf.Fpdf, tr func(string) string, l *layout.Layout, reg *checklist.Registry) error {
	titles := make(map[string]string)
	for _, c := range reg.Categories() {
		titles[c.ID] = c.Title
		for _, g := range c.Groups {
			if g.ID != "" {
				titles[c.ID+"/"+g.ID] = g.Title
			}
		}
	}
	for _, key := range l.HeadingIDs() {
		p := l.Headings[key]
		t, ok := titles[key]
		if !ok {
			return fmt.Errorf("layout heading %q names no category or group", key)
		}
		if strings.Contains(key, "/") {
			pdf.SetFont(l.Font.Family, "BI", labelSize+1)
		} else {
			pdf.SetFont(l.Font.Family, "B", headingSize)
		}
		pdf.Text(p.X, p.Y, tr(t))
	}
	return nil
}

func drawItems(pdf *fpdf.Fpdf, tr func(string) string, l *layout.Layout, reg *checklist.Registry) {
	pdf.SetFont(l.Font.Family, "", labelSize)
	for _, id := range l.FlagIDs() {
		p := l.Flags[id]
		label := id
		if it, ok := reg.Item(id); ok {
			label = it.Label
		}
		// The mark glyph is drawn on the baseline at p, so the box sits just above it.
		pdf.Rect(p.X-1.5, p.Y-boxSide+1.5, boxSide, boxSide, "D")
		pdf.Text(p.X+boxSide+4, p.Y, tr(label))
	}
}

func drawSignOff(pdf *fpdf.Fpdf, tr func(string) string, l *layout.Layout) {
	width := l.Page.Width - 72

	pdf.SetXY(36, 48)
	pdf.SetFont(l.Font.Family, "B", 12)
	pdf.CellFormat(width, 18, "SIGN-OFF", "", 1, "L", false, 0, "")
	pdf.SetFont(l.Font.Family, "", 9)
	pdf.MultiCell(width, 12, tr("Inspection requests must be submitted at least 24 hours before the "+
		"requested inspection time. Only items ticked on page one will be inspected. Items that fail "+
		"inspection must be re-submitted on a new request with the same serial number."), "", "L", false)
	pdf.Ln(12)

	for _, role := range []string{"Requested by (Contractor)", "Received by (Mall Operations)", "Inspected by (MEP Engineer)", "Inspected by (Civil Engineer)"} {
		y := pdf.GetY() + 24
		pdf.Text(36, y, tr(role+":"))
		pdf.Line(200, y+2, 400, y+2)
		pdf.Text(410, y, "Date:")
		pdf.Line(440, y+2, l.Page.Width-36, y+2)
		pdf.SetY(y + 6)
	}

	y := pdf.GetY() + 30
	pdf.SetFont(l.Font.Family, "B", 9)
	pdf.Text(36, y, "Inspection result:")
	pdf.SetFont(l.Font.Family, "", 9)
	x := 140.0
	for _, result := range []string{"Approved", "Approved with comments", "Rejected"} {
		pdf.Rect(x, y-boxSide+1.5, boxSide, boxSide, "D")
		pdf.Text(x+boxSide+4, y, result)
		x += pdf.GetStringWidth(result) + boxSide + 24
	}

	y += 24
	pdf.SetFont(l.Font.Family, "B", 9)
	pdf.Text(36, y, "Comments:")
	for i := 0; i < 6; i++ {
		y += 20
		pdf.Line(36, y, l.Page.Width-36, y)
	}
}
