package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-pdf/fpdf"
)

// htmlWriter lays out the small HTML subset the form templates use:
// h1-h3, p, div, center, left, right, br, hr, b, strong, i, em, u, span, a, ul, li,
// plus the void tags <check> (ticked box) and <box> (empty box).
// Markup tokens come from fpdf.HTMLBasicTokenize, which leaves entities escaped.
type htmlWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string

	family string
	base   float64
	size   float64
	lineHt float64

	bold, italic, underline int
	sizes                   []float64
	aligns                  []string
	margins                 []float64
	open                    []string
	href                    string
	skip                    int

	// pending collects aligned text until the enclosing block ends.
	pending      strings.Builder
	pendingStyle string
	pendingSize  float64

	lineStart bool
	trim      bool
}

func newHTMLWriter(pdf *fpdf.Fpdf, family string, size float64) *htmlWriter {
	w := &htmlWriter{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		family:    family,
		base:      size,
		size:      size,
		aligns:    []string{"L"},
		lineStart: true,
		trim:      true,
	}
	w.applyFont()
	return w
}

// write lays out markup at the current position.
func (w *htmlWriter) write(markup string) error {
	for _, seg := range fpdf.HTMLBasicTokenize(markup) {
		var err error
		switch seg.Cat {
		case 'T':
			w.text(seg.Str)
		case 'O':
			err = w.openTag(strings.TrimSuffix(seg.Str, "/"), seg.Attr)
		case 'C':
			err = w.closeTag(strings.TrimSpace(seg.Str))
		}
		if err != nil {
			return err
		}
		if w.pdf.Err() {
			return w.pdf.Error()
		}
	}
	if n := len(w.open); n > 0 {
		return fmt.Errorf("unclosed <%s>", w.open[n-1])
	}
	w.flush()
	return w.pdf.Error()
}

func (w *htmlWriter) style() string {
	s := ""
	if w.bold > 0 {
		s += "B"
	}
	if w.italic > 0 {
		s += "I"
	}
	if w.underline > 0 {
		s += "U"
	}
	return s
}

func (w *htmlWriter) applyFont() {
	w.pdf.SetFont(w.family, w.style(), w.size)
	w.lineHt = w.size * 1.3
}

func (w *htmlWriter) align() string {
	return w.aligns[len(w.aligns)-1]
}

func (w *htmlWriter) text(s string) {
	if w.skip > 0 {
		return
	}
	s = html.UnescapeString(collapseSpace(s))
	if w.trim {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	w.trim = false
	w.lineStart = false

	if w.align() != "L" {
		if w.pending.Len() == 0 {
			w.pendingStyle, w.pendingSize = w.style(), w.size
		}
		w.pending.WriteString(s)
		return
	}
	if w.href != "" {
		w.pdf.WriteLinkString(w.lineHt, w.tr(s), w.href)
		return
	}
	w.pdf.Write(w.lineHt, w.tr(s))
}

// flush writes aligned text collected since the block started, one cell per line.
func (w *htmlWriter) flush() {
	if w.pending.Len() == 0 {
		return
	}
	txt := strings.TrimRight(w.pending.String(), " ")
	w.pending.Reset()

	w.pdf.SetFont(w.family, w.pendingStyle, w.pendingSize)
	lineHt := w.pendingSize * 1.3

	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	width := pageW - left - right
	if !w.atLeftMargin() {
		w.pdf.Ln(lineHt)
	}
	for _, line := range w.pdf.SplitLines([]byte(w.tr(txt)), width) {
		w.pdf.SetX(left)
		w.pdf.CellFormat(width, lineHt, string(line), "", 1, w.align(), false, 0, "")
	}
	w.applyFont()
	w.lineStart = true
	w.trim = true
}

func (w *htmlWriter) atLeftMargin() bool {
	left, _, _, _ := w.pdf.GetMargins()
	return w.pdf.GetX() <= left+0.01
}

func (w *htmlWriter) newline() {
	w.flush()
	w.pdf.Ln(w.lineHt)
	w.lineStart = true
	w.trim = true
}

// blockBreak ends the current line unless the cursor already starts one.
func (w *htmlWriter) blockBreak() {
	w.flush()
	if !w.lineStart {
		w.newline()
	}
}

func (w *htmlWriter) push(tag string) {
	w.open = append(w.open, tag)
}

func (w *htmlWriter) pushAlign(attr map[string]string) {
	a := w.align()
	switch strings.ToLower(attr["align"]) {
	case "center":
		a = "C"
	case "right":
		a = "R"
	case "left":
		a = "L"
	}
	w.aligns = append(w.aligns, a)
}

func (w *htmlWriter) popAlign() {
	if len(w.aligns) > 1 {
		w.aligns = w.aligns[:len(w.aligns)-1]
	}
}

func (w *htmlWriter) openTag(tag string, attr map[string]string) error {
	if strings.HasPrefix(tag, "!") {
		return nil
	}
	switch tag {
	case "html", "head", "body", "span":
		w.push(tag)
	case "title", "style":
		w.push(tag)
		w.skip++
	case "meta":
	case "br":
		w.newline()
	case "hr":
		w.blockBreak()
		left, _, right, _ := w.pdf.GetMargins()
		pageW, _ := w.pdf.GetPageSize()
		y := w.pdf.GetY() + w.lineHt/2
		w.pdf.Line(left, y, pageW-right, y)
		w.pdf.SetY(y + w.lineHt/2)
	case "check", "box":
		w.mark(tag == "check")
	case "b", "strong":
		w.push(tag)
		w.bold++
		w.applyFont()
	case "i", "em":
		w.push(tag)
		w.italic++
		w.applyFont()
	case "u":
		w.push(tag)
		w.underline++
		w.applyFont()
	case "a":
		w.push(tag)
		w.href = attr["href"]
		w.underline++
		w.pdf.SetTextColor(0, 0, 200)
		w.applyFont()
	case "h1", "h2", "h3":
		w.blockBreak()
		w.push(tag)
		w.sizes = append(w.sizes, w.size)
		w.size = w.base * map[string]float64{"h1": 1.6, "h2": 1.25, "h3": 1.05}[tag]
		w.bold++
		w.applyFont()
		w.pushAlign(attr)
	case "p", "div", "li":
		w.blockBreak()
		w.push(tag)
		w.pushAlign(attr)
		if tag == "li" {
			w.pdf.Write(w.lineHt, w.tr("• "))
			w.lineStart = false
			w.trim = true
		}
	case "center", "left", "right":
		w.blockBreak()
		w.push(tag)
		w.pushAlign(map[string]string{"align": tag})
	case "ul":
		w.blockBreak()
		w.push(tag)
		left, _, _, _ := w.pdf.GetMargins()
		w.margins = append(w.margins, left)
		w.pdf.SetLeftMargin(left + 14)
		w.pdf.SetX(left + 14)
	default:
		return fmt.Errorf("unsupported tag <%s>", tag)
	}
	return nil
}

func (w *htmlWriter) closeTag(tag string) error {
	switch tag {
	case "br", "hr", "check", "box", "meta":
		return nil
	}
	n := len(w.open)
	if n == 0 {
		return fmt.Errorf("unexpected </%s>", tag)
	}
	if w.open[n-1] != tag {
		return fmt.Errorf("unexpected </%s>, want </%s>", tag, w.open[n-1])
	}
	w.open = w.open[:n-1]

	switch tag {
	case "title", "style":
		w.skip--
	case "b", "strong":
		w.bold--
		w.applyFont()
	case "i", "em":
		w.italic--
		w.applyFont()
	case "u":
		w.underline--
		w.applyFont()
	case "a":
		w.href = ""
		w.underline--
		w.pdf.SetTextColor(0, 0, 0)
		w.applyFont()
	case "h1", "h2", "h3":
		w.blockBreak()
		w.popAlign()
		w.bold--
		w.size = w.sizes[len(w.sizes)-1]
		w.sizes = w.sizes[:len(w.sizes)-1]
		w.applyFont()
		w.pdf.Ln(w.lineHt * 0.3)
	case "p":
		w.blockBreak()
		w.popAlign()
		w.pdf.Ln(w.lineHt * 0.4)
	case "div", "li", "center", "left", "right":
		w.blockBreak()
		w.popAlign()
	case "ul":
		w.blockBreak()
		left := w.margins[len(w.margins)-1]
		w.margins = w.margins[:len(w.margins)-1]
		w.pdf.SetLeftMargin(left)
		w.pdf.SetX(left)
	}
	return nil
}

// mark draws a square check box on the current line, ticked with the
// ZapfDingbats check glyph when checked.
func (w *htmlWriter) mark(checked bool) {
	w.flush()
	side := w.size * 0.8
	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	x, y := w.pdf.GetXY()
	if x+side > pageW-right {
		w.newline()
		x, y = left, w.pdf.GetY()
	}
	top := y + (w.lineHt-side)/2
	w.pdf.Rect(x, top, side, side, "D")
	if checked {
		w.pdf.SetFont("ZapfDingbats", "", side)
		w.pdf.Text(x+side*0.1, top+side*0.85, "4")
		w.applyFont()
	}
	w.pdf.SetX(x + side + 3)
	w.lineStart = false
	w.trim = true
}

// collapseSpace folds runs of white space into a single space.
func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
