package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Segment is one absolute path command. Op is one of M, L, Q, C or Z and Pts
// holds 1, 1, 2, 3 or 0 points respectively.
type Segment struct {
	Op  byte
	Pts []Point
}

// Path is a parsed SVG-style path restricted to absolute M, L, Q, C and Z commands.
type Path []Segment

var pathArity = map[byte]int{'M': 1, 'L': 1, 'Q': 2, 'C': 3, 'Z': 0}

// ParsePath parses path data such as "M 0 0 L 200 0 Q 10 10 20 20 Z".
// Commands and numbers may be separated by spaces or commas. Repeated
// coordinate pairs after a command repeat that command, as in SVG.
func ParsePath(d string) (Path, error) {
	tokens := strings.FieldsFunc(d, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == '\r'
	})

	var path Path
	var op byte
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if len(tok) == 1 && isPathCommand(tok[0]) {
			op = tok[0]
			i++
			if op == 'Z' {
				path = append(path, Segment{Op: 'Z'})
				continue
			}
		} else if op == 0 || op == 'Z' {
			return nil, fmt.Errorf("path: number %q without command", tok)
		}

		n := pathArity[op]
		if i+2*n > len(tokens) {
			return nil, fmt.Errorf("path: command %c needs %d coordinates", op, 2*n)
		}
		seg := Segment{Op: op, Pts: make([]Point, n)}
		for j := range n {
			x, err := strconv.ParseFloat(tokens[i+2*j], 64)
			if err != nil {
				return nil, fmt.Errorf("path: invalid coordinate %q: %w", tokens[i+2*j], err)
			}
			y, err := strconv.ParseFloat(tokens[i+2*j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("path: invalid coordinate %q: %w", tokens[i+2*j+1], err)
			}
			seg.Pts[j] = Point{X: x, Y: y}
		}
		path = append(path, seg)
		i += 2 * n
		if op == 'M' {
			op = 'L'
		}
	}
	return path, nil
}

func isPathCommand(c byte) bool {
	_, ok := pathArity[c]
	return ok
}

// Bounds returns the bounding box of the path's points, including control points.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, seg := range p {
		for _, pt := range seg.Pts {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m Matrix) Path {
	out := make(Path, len(p))
	for i, seg := range p {
		pts := make([]Point, len(seg.Pts))
		for j, pt := range seg.Pts {
			pts[j] = m.Apply(pt)
		}
		out[i] = Segment{Op: seg.Op, Pts: pts}
	}
	return out
}

// String formats the path back into path data.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(seg.Op)
		for _, pt := range seg.Pts {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(pt.X, 'f', -1, 64))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(pt.Y, 'f', -1, 64))
		}
	}
	return b.String()
}
