package pdf

import (
	"math"
	"strings"
	"unicode"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// glyphAdvance approximates the advance of one glyph as a fraction of the
// font size, since font metrics are not consulted.
const glyphAdvance = 0.5

// Run is a run of text in PDF space: X and Y locate the baseline start in
// points from the page's bottom-left corner.
type Run struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
	FontName string
}

// Overlay converts the run into overlay space for a page rendered at the
// given scale factor.
func (r Run) Overlay(scale, pageHeight float64) annotation.TextRun {
	if scale == 0 {
		scale = 1
	}
	return annotation.TextRun{
		Text:     r.Text,
		X:        r.X / scale,
		Y:        (pageHeight - r.Y) / scale,
		Width:    r.Width / scale,
		Height:   r.FontSize / scale,
		FontSize: r.FontSize / scale,
		FontName: r.FontName,
	}
}

// OverlayRuns converts runs with Run.Overlay.
func OverlayRuns(runs []Run, scale, pageHeight float64) []annotation.TextRun {
	out := make([]annotation.TextRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Overlay(scale, pageHeight))
	}
	return out
}

type textState struct {
	ctm     geometry.Matrix
	tm      geometry.Matrix
	lm      geometry.Matrix
	font    string
	size    float64
	leading float64
	stack   []geometry.Matrix
}

// ParseRuns interprets the text operators of a decoded content stream and
// returns the runs it shows, in PDF space.
func ParseRuns(content []byte) []Run {
	st := &textState{ctm: geometry.Identity(), tm: geometry.Identity(), lm: geometry.Identity(), size: 12}
	var runs []Run

	for _, in := range newLexer(content).instructions() {
		switch in.op {
		case "q":
			st.stack = append(st.stack, st.ctm)
		case "Q":
			if n := len(st.stack); n > 0 {
				st.ctm = st.stack[n-1]
				st.stack = st.stack[:n-1]
			}
		case "cm":
			if m, ok := matrixArgs(in.args); ok {
				st.ctm = m.Mul(st.ctm)
			}
		case "BT":
			st.tm, st.lm = geometry.Identity(), geometry.Identity()
		case "Tf":
			if len(in.args) >= 2 {
				st.font = in.args[0].str
				st.size = in.args[1].num
			}
		case "TL":
			if len(in.args) >= 1 {
				st.leading = in.args[0].num
			}
		case "Td":
			if len(in.args) >= 2 {
				st.moveLine(in.args[0].num, in.args[1].num)
			}
		case "TD":
			if len(in.args) >= 2 {
				st.leading = -in.args[1].num
				st.moveLine(in.args[0].num, in.args[1].num)
			}
		case "Tm":
			if m, ok := matrixArgs(in.args); ok {
				st.tm, st.lm = m, m
			}
		case "T*":
			st.moveLine(0, -st.leading)
		case "Tj":
			if len(in.args) >= 1 {
				runs = st.show(runs, in.args[len(in.args)-1].str)
			}
		case "'":
			st.moveLine(0, -st.leading)
			if len(in.args) >= 1 {
				runs = st.show(runs, in.args[len(in.args)-1].str)
			}
		case "\"":
			st.moveLine(0, -st.leading)
			if len(in.args) >= 3 {
				runs = st.show(runs, in.args[2].str)
			}
		case "TJ":
			if len(in.args) >= 1 {
				runs = st.show(runs, joinTJ(in.args[0]))
			}
		}
	}
	return runs
}

func (st *textState) moveLine(tx, ty float64) {
	st.lm = geometry.Translate(tx, ty).Mul(st.lm)
	st.tm = st.lm
}

func (st *textState) show(runs []Run, raw string) []Run {
	text := decodeText(raw)
	advance := float64(len([]rune(text))) * st.size * glyphAdvance
	defer func() {
		st.tm = geometry.Translate(advance, 0).Mul(st.tm)
	}()

	if strings.TrimSpace(text) == "" {
		return runs
	}

	trm := st.tm.Mul(st.ctm)
	origin := trm.Apply(geometry.Point{})
	size := st.size * math.Hypot(trm[2], trm[3])
	width := advance * math.Hypot(trm[0], trm[1])

	return append(runs, Run{
		Text:     text,
		X:        origin.X,
		Y:        origin.Y,
		Width:    width,
		FontSize: size,
		FontName: st.font,
	})
}

func joinTJ(arr operand) string {
	var b strings.Builder
	for _, it := range arr.items {
		switch it.kind {
		case operandString:
			b.WriteString(it.str)
		case operandNumber:
			// Large negative adjustments separate words in most producers.
			if it.num < -200 {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// decodeText maps single-byte string codes to runes, dropping control
// characters. Composite-font codes are not mapped through a CMap.
func decodeText(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		r := rune(raw[i])
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func matrixArgs(args []operand) (geometry.Matrix, bool) {
	if len(args) < 6 {
		return geometry.Matrix{}, false
	}
	var m geometry.Matrix
	for i, a := range args[len(args)-6:] {
		if a.kind != operandNumber {
			return geometry.Matrix{}, false
		}
		m[i] = a.num
	}
	return m, true
}
