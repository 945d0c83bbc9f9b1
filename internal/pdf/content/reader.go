package content

import (
	"bytes"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

const (
	// Default page height (US letter) used when a page has no usable MediaBox
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// Glyph width (1/1000 em) assumed when the font carries no Widths array
	defaultGlyphWidth = 500.0

	// TJ adjustments (1/1000 em) above which a gap is rendered as whitespace.
	// Wide gaps become a run of three spaces, the same separator the register
	// PDFs use between merged columns.
	wordGapThreshold   = 200.0
	columnGapThreshold = 1000.0

	// Nesting limit for form XObjects
	maxFormDepth = 8
)

// Document is an opened PDF document
type Document struct {
	reader *pdf.Reader
	source string
}

// Open parses a PDF held in memory
func Open(data []byte, source string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("PDF reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{reader: reader, source: source}, nil
}

// Source returns the URL or path the document was read from
func (d *Document) Source() string {
	return d.source
}

// NumPages returns the number of pages in the document
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page reads the drawing instructions and text runs of a page (1-based)
func (d *Document) Page(pageNum int) (page Page, err error) {
	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return Page{}, fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, d.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			page = Page{}
			err = fmt.Errorf("page %d content panic: %v\n%s", pageNum, r, debug.Stack())
		}
	}()

	p := d.reader.Page(pageNum)
	if p.V.IsNull() {
		return Page{}, fmt.Errorf("page %d is null or invalid", pageNum)
	}

	width, height := pageSize(p.V)
	w := &walker{
		page: Page{Number: pageNum, Width: width, Height: height},
		ctm:  geometry.Identity(),
		th:   1,
	}
	w.interpretContents(p.V.Key("Contents"), p.Resources(), 0)

	return w.page, nil
}

// pageSize reads the MediaBox, following the Parent chain for inherited values
func pageSize(v pdf.Value) (float64, float64) {
	for depth := 0; v.Kind() == pdf.Dict && depth < 32; depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			x0, y0 := number(box.Index(0)), number(box.Index(1))
			x1, y1 := number(box.Index(2)), number(box.Index(3))
			if x1-x0 != 0 && y1-y0 != 0 {
				w, h := x1-x0, y1-y0
				if w < 0 {
					w = -w
				}
				if h < 0 {
					h = -h
				}
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

func number(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	default:
		return 0
	}
}

type graphicsState struct {
	ctm   geometry.Matrix
	tc    float64
	tw    float64
	th    float64
	tl    float64
	trise float64
	tfs   float64
	font  *font
}

type font struct {
	pdf.Font
	enc       pdf.TextEncoding
	twoByte   bool
	hasWidths bool
}

// walker turns content stream operators into Instructions and TextRuns
type walker struct {
	page  Page
	stack []graphicsState

	ctm   geometry.Matrix
	tm    geometry.Matrix
	tlm   geometry.Matrix
	tc    float64
	tw    float64
	th    float64
	tl    float64
	trise float64
	tfs   float64
	font  *font
}

func (w *walker) interpretContents(contents, resources pdf.Value, depth int) {
	switch contents.Kind() {
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			w.interpret(contents.Index(i), resources, depth)
		}
	case pdf.Stream:
		w.interpret(contents, resources, depth)
	}
}

func (w *walker) interpret(strm, resources pdf.Value, depth int) {
	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "q":
			w.stack = append(w.stack, w.saveState())
			w.emit(Save{})

		case "Q":
			if len(w.stack) == 0 {
				return
			}
			w.restoreState(w.stack[len(w.stack)-1])
			w.stack = w.stack[:len(w.stack)-1]
			w.emit(Restore{})

		case "cm":
			if len(args) != 6 {
				return
			}
			m := matrixOf(args)
			w.ctm = m.Multiply(w.ctm)
			w.emit(Transform{Matrix: m})

		case "m":
			if len(args) == 2 {
				w.emit(MoveTo{X: number(args[0]), Y: number(args[1])})
			}

		case "l":
			if len(args) == 2 {
				w.emit(LineTo{X: number(args[0]), Y: number(args[1])})
			}

		case "re":
			if len(args) == 4 {
				w.emit(Rectangle{
					X:      number(args[0]),
					Y:      number(args[1]),
					Width:  number(args[2]),
					Height: number(args[3]),
				})
			}

		case "f", "F", "f*", "B", "B*", "b", "b*":
			w.emit(Fill{})

		case "S", "s":
			w.emit(Stroke{})

		case "n":
			w.emit(EndPath{})

		case "Do":
			if len(args) == 1 && depth < maxFormDepth {
				w.drawForm(resources.Key("XObject").Key(args[0].Name()), resources, depth)
			}

		case "BT":
			w.tm = geometry.Identity()
			w.tlm = w.tm

		case "Tf":
			if len(args) == 2 {
				w.font = loadFont(resources.Key("Font").Key(args[0].Name()))
				w.tfs = number(args[1])
			}

		case "Tc":
			if len(args) == 1 {
				w.tc = number(args[0])
			}

		case "Tw":
			if len(args) == 1 {
				w.tw = number(args[0])
			}

		case "Tz":
			if len(args) == 1 {
				w.th = number(args[0]) / 100
			}

		case "TL":
			if len(args) == 1 {
				w.tl = number(args[0])
			}

		case "Ts":
			if len(args) == 1 {
				w.trise = number(args[0])
			}

		case "Td", "TD":
			if len(args) != 2 {
				return
			}
			tx, ty := number(args[0]), number(args[1])
			if op == "TD" {
				w.tl = -ty
			}
			w.tlm = geometry.Matrix{1, 0, 0, 1, tx, ty}.Multiply(w.tlm)
			w.tm = w.tlm

		case "Tm":
			if len(args) == 6 {
				w.tm = matrixOf(args)
				w.tlm = w.tm
			}

		case "T*":
			w.nextLine()

		case "Tj":
			if len(args) == 1 {
				w.showText([]pdf.Value{args[0]})
			}

		case "'":
			if len(args) == 1 {
				w.nextLine()
				w.showText([]pdf.Value{args[0]})
			}

		case "\"":
			if len(args) == 3 {
				w.tw = number(args[0])
				w.tc = number(args[1])
				w.nextLine()
				w.showText([]pdf.Value{args[2]})
			}

		case "TJ":
			if len(args) == 1 && args[0].Kind() == pdf.Array {
				items := make([]pdf.Value, args[0].Len())
				for i := range items {
					items[i] = args[0].Index(i)
				}
				w.showText(items)
			}
		}
	})
}

func (w *walker) emit(ins Instruction) {
	w.page.Instructions = append(w.page.Instructions, ins)
}

func (w *walker) saveState() graphicsState {
	return graphicsState{
		ctm: w.ctm, tc: w.tc, tw: w.tw, th: w.th, tl: w.tl,
		trise: w.trise, tfs: w.tfs, font: w.font,
	}
}

func (w *walker) restoreState(gs graphicsState) {
	w.ctm, w.tc, w.tw, w.th, w.tl = gs.ctm, gs.tc, gs.tw, gs.th, gs.tl
	w.trise, w.tfs, w.font = gs.trise, gs.tfs, gs.font
}

func (w *walker) nextLine() {
	w.tlm = geometry.Matrix{1, 0, 0, 1, 0, -w.tl}.Multiply(w.tlm)
	w.tm = w.tlm
}

// drawForm interprets a form XObject inside its own q/cm/Q bracket
func (w *walker) drawForm(xobj, resources pdf.Value, depth int) {
	if xobj.Kind() != pdf.Stream || xobj.Key("Subtype").Name() != "Form" {
		return
	}

	formResources := xobj.Key("Resources")
	if formResources.Kind() != pdf.Dict {
		formResources = resources
	}

	saved := w.saveState()
	w.emit(Save{})
	if m := xobj.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
		args := make([]pdf.Value, 6)
		for i := range args {
			args[i] = m.Index(i)
		}
		matrix := matrixOf(args)
		w.ctm = matrix.Multiply(w.ctm)
		w.emit(Transform{Matrix: matrix})
	}

	w.interpret(xobj, formResources, depth+1)

	w.restoreState(saved)
	w.emit(Restore{})
}

// showText decodes the strings of a Tj or TJ operand into one TextRun and
// advances the text matrix
func (w *walker) showText(items []pdf.Value) {
	if w.font == nil {
		return
	}

	start := geometry.Matrix{w.tfs * w.th, 0, 0, w.tfs, 0, w.trise}.Multiply(w.tm).Multiply(w.ctm)
	startTm := w.tm

	var text strings.Builder
	advance := 0.0
	for _, item := range items {
		switch item.Kind() {
		case pdf.String:
			raw := item.RawString()
			text.WriteString(w.font.enc.Decode(raw))
			advance += w.advanceOf(raw)
		case pdf.Integer, pdf.Real:
			adjust := number(item)
			if -adjust >= columnGapThreshold {
				text.WriteString("   ")
			} else if -adjust >= wordGapThreshold {
				text.WriteString(" ")
			}
			advance += -adjust / 1000 * w.tfs * w.th
		}
	}

	w.tm = geometry.Matrix{1, 0, 0, 1, advance, 0}.Multiply(w.tm)

	decoded := norm.NFKC.String(text.String())
	if strings.TrimSpace(decoded) == "" {
		return
	}

	w.page.TextRuns = append(w.page.TextRuns, TextRun{
		Text:      decoded,
		Transform: start,
		Width:     advance * startTm.Multiply(w.ctm).HorizontalScale(),
	})
}

// advanceOf returns the horizontal displacement of raw in text space units
func (w *walker) advanceOf(raw string) float64 {
	total := 0.0
	step := 1
	if w.font.twoByte {
		step = 2
	}

	for i := 0; i+step <= len(raw); i += step {
		code := int(raw[i])
		if step == 2 {
			code = code<<8 | int(raw[i+1])
		}

		glyph := defaultGlyphWidth
		if w.font.hasWidths && !w.font.twoByte {
			if gw := w.font.Width(code); gw > 0 {
				glyph = gw
			}
		}

		tx := glyph/1000*w.tfs + w.tc
		if step == 1 && code == ' ' {
			tx += w.tw
		}
		total += tx * w.th
	}
	return total
}

func loadFont(v pdf.Value) *font {
	f := &font{Font: pdf.Font{V: v}}
	f.twoByte = v.Key("Subtype").Name() == "Type0"
	f.hasWidths = v.Key("Widths").Kind() == pdf.Array
	f.enc = f.Encoder()
	if f.enc == nil {
		f.enc = rawEncoding{}
	}
	return f
}

// rawEncoding passes bytes through unchanged
type rawEncoding struct{}

func (rawEncoding) Decode(raw string) string {
	return raw
}

func matrixOf(args []pdf.Value) geometry.Matrix {
	var m geometry.Matrix
	for i := 0; i < 6; i++ {
		m[i] = number(args[i])
	}
	return m
}
