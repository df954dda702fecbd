package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/canvas"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/history"
	"github.com/JaimeStill/pdf-annotator/internal/raster"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
)

// Tool is the active editor tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolText      Tool = "text"
	ToolEdit      Tool = "edit"
	ToolHighlight Tool = "highlight"
	ToolLink      Tool = "link"
	ToolDraw      Tool = "draw"
)

// ParseTool resolves a tool name.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolSelect, ToolText, ToolEdit, ToolHighlight, ToolLink, ToolDraw:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
	}
}

// SetTool selects the active tool. It is allowed at any time.
func (s *Session) SetTool(t Tool) error {
	if _, err := ParseTool(string(t)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = t
	return nil
}

// PointerDown marks the start of a user gesture, capturing the state the
// gesture's change will be undone to.
func (s *Session) PointerDown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	s.canvas.PointerDown()
	return nil
}

// ToolOptions parameterize AddTool. Which fields apply depends on the kind.
type ToolOptions struct {
	// Origin is the visible overlay origin new objects are placed from.
	Origin      geometry.Point `json:"origin"`
	Color       string         `json:"color,omitempty"`
	Text        string         `json:"text,omitempty"`
	Rect        geometry.Rect  `json:"rect"`
	URL         string         `json:"url,omitempty"`
	Path        string         `json:"path,omitempty"`
	StrokeWidth float64        `json:"stroke_width,omitempty"`
}

// AddTool creates an object of kind k with its tool defaults and adds it to
// the active page.
func (s *Session) AddTool(k annotation.Kind, opts ToolOptions) (*annotation.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		o   *annotation.Object
		err error
	)

	switch k {
	case annotation.KindText:
		o = annotation.NewText(opts.Origin, opts.Text, opts.Color)
	case annotation.KindRect, annotation.KindCircle, annotation.KindLine,
		annotation.KindArrow, annotation.KindRedaction, annotation.KindWhiteout:
		o, err = annotation.NewShape(k, opts.Origin, opts.Color)
	case annotation.KindStamp:
		o = annotation.NewStamp(opts.Origin, opts.Text)
	case annotation.KindStickyNote:
		o = annotation.NewStickyNote(opts.Origin, opts.Text)
	case annotation.KindTextField, annotation.KindCheckbox, annotation.KindRadio:
		o, err = annotation.NewField(k, opts.Origin, s.deps.Now())
	case annotation.KindHighlight:
		if opts.Rect.Width <= 0 || opts.Rect.Height <= 0 {
			return nil, fmt.Errorf("%w: highlight requires a rect", ErrInvalidOptions)
		}
		o = annotation.NewHighlight(opts.Rect)
	case annotation.KindLink:
		if opts.URL == "" || opts.Rect.Width <= 0 || opts.Rect.Height <= 0 {
			return nil, fmt.Errorf("%w: link requires a url and a rect", ErrInvalidOptions)
		}
		o = annotation.NewLink(opts.Rect, opts.URL)
	case annotation.KindDrawingPath:
		if opts.Path == "" {
			return nil, fmt.Errorf("%w: drawing requires a path", ErrInvalidOptions)
		}
		o, err = annotation.NewDrawingPath(opts.Path, opts.Color, opts.StrokeWidth)
	case annotation.KindImage, annotation.KindDrawingGroup, annotation.KindTextMask,
		annotation.KindTextReplacement, annotation.KindHitbox:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, k)
	default:
		return nil, fmt.Errorf("%w: %d", annotation.ErrUnknownKind, int(k))
	}
	if err != nil {
		return nil, err
	}

	if err := s.canvas.Add(o); err != nil {
		return nil, err
	}
	return annotation.CloneAll([]*annotation.Object{o})[0], nil
}

// AddObject adds a fully specified object to the active page. An object
// without an ID, or whose ID is taken, is given a new one.
func (s *Session) AddObject(obj *annotation.Object) (*annotation.Object, error) {
	if obj == nil || !obj.Kind.Valid() {
		return nil, annotation.ErrUnknownKind
	}
	if obj.IsHitbox() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, obj.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	o := annotation.CloneAll([]*annotation.Object{obj})[0]
	if _, taken := s.canvas.Get(o.ID); o.ID == "" || taken {
		o.ID = uuid.NewString()
	}
	if o.Type == "" {
		o.Type = o.Kind.Primitive()
	}
	if err := s.canvas.Add(o); err != nil {
		return nil, err
	}
	return annotation.CloneAll([]*annotation.Object{o})[0], nil
}

// Patch is a partial update of an object's geometry, style and content.
// Nil fields are left unchanged.
type Patch struct {
	Left        *float64 `json:"left,omitempty"`
	Top         *float64 `json:"top,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	ScaleX      *float64 `json:"scaleX,omitempty"`
	ScaleY      *float64 `json:"scaleY,omitempty"`
	Angle       *float64 `json:"angle,omitempty"`
	Text        *string  `json:"text,omitempty"`
	Fill        *string  `json:"fill,omitempty"`
	Stroke      *string  `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	FontFamily  *string  `json:"fontFamily,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontWeight  *string  `json:"fontWeight,omitempty"`
	FontStyle   *string  `json:"fontStyle,omitempty"`
	Underline   *bool    `json:"underline,omitempty"`
	Background  *string  `json:"backgroundColor,omitempty"`
	URL         *string  `json:"url,omitempty"`
}

// apply writes the patch onto o and reports whether derived dimensions need
// recomputing.
func (p Patch) apply(o *annotation.Object) bool {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	set(&o.Left, p.Left)
	set(&o.Top, p.Top)
	set(&o.Width, p.Width)
	set(&o.Height, p.Height)
	set(&o.ScaleX, p.ScaleX)
	set(&o.ScaleY, p.ScaleY)
	set(&o.Angle, p.Angle)
	set(&o.StrokeWidth, p.StrokeWidth)
	set(&o.Opacity, p.Opacity)
	set(&o.FontSize, p.FontSize)
	str(&o.Text, p.Text)
	str(&o.Fill, p.Fill)
	str(&o.Stroke, p.Stroke)
	str(&o.FontFamily, p.FontFamily)
	str(&o.FontWeight, p.FontWeight)
	str(&o.FontStyle, p.FontStyle)
	str(&o.Background, p.Background)
	if p.Underline != nil {
		o.Underline = *p.Underline
	}
	if p.URL != nil && o.Kind == annotation.KindLink {
		o.Meta.URL = *p.URL
	}
	return p.Text != nil || p.FontSize != nil
}

// ModifyObject applies patch to the user object with the given ID. The
// update is atomic: a patch that leaves the object invalid changes nothing.
func (s *Session) ModifyObject(id string, patch Patch) (*annotation.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.userObject(id); err != nil {
		return nil, err
	}

	var out *annotation.Object
	_, err := s.canvas.Modify(id, func(o *annotation.Object) error {
		c := annotation.CloneAll([]*annotation.Object{o})[0]
		if patch.apply(c) {
			if err := c.Fit(); err != nil {
				return err
			}
		}
		*o = *c
		out = annotation.CloneAll([]*annotation.Object{o})[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveObject deletes the user object with the given ID.
func (s *Session) RemoveObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.userObject(id); err != nil {
		return err
	}
	s.canvas.Remove(id)
	return nil
}

// DuplicateObject adds a copy of an object offset by the duplicate offset as
// a single undoable change. Text replacements cannot be duplicated.
func (s *Session) DuplicateObject(id string) (*annotation.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	o, err := s.userObject(id)
	if err != nil {
		return nil, err
	}
	dup, err := annotation.Duplicate(o)
	if err != nil {
		return nil, err
	}

	if err := s.batch(func() error { return s.canvas.Add(dup) }); err != nil {
		return nil, err
	}
	return annotation.CloneAll([]*annotation.Object{dup})[0], nil
}

// HighlightRun highlights the text run at index on the active page.
func (s *Session) HighlightRun(index int) (*annotation.Object, error) {
	return s.addForRun(index, annotation.NewRunHighlight)
}

// MaskRun covers the text run at index with a white mask.
func (s *Session) MaskRun(index int) (*annotation.Object, error) {
	return s.addForRun(index, annotation.NewTextMask)
}

// ReplaceRun masks the text run at index and places editable replacement
// text over it as a single undoable change. Empty text keeps the run's text.
func (s *Session) ReplaceRun(index int, text string) (*annotation.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	run, err := s.run(index)
	if err != nil {
		return nil, err
	}
	mask := annotation.NewTextMask(run)
	repl := annotation.NewTextReplacement(run, text)

	if err := s.batch(func() error { return s.canvas.Add(mask, repl) }); err != nil {
		return nil, err
	}
	return annotation.CloneAll([]*annotation.Object{repl})[0], nil
}

func (s *Session) addForRun(index int, build func(annotation.TextRun) *annotation.Object) (*annotation.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	run, err := s.run(index)
	if err != nil {
		return nil, err
	}
	o := build(run)
	if err := s.canvas.Add(o); err != nil {
		return nil, err
	}
	return annotation.CloneAll([]*annotation.Object{o})[0], nil
}

// GroupDrawing replaces drawing paths with one drawing group and returns to
// the select tool. With no IDs every drawing path on the page is grouped.
func (s *Session) GroupDrawing(ids []string) (*annotation.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var paths []*annotation.Object
	if len(ids) == 0 {
		for _, o := range s.canvas.UserObjects() {
			if o.Kind == annotation.KindDrawingPath {
				paths = append(paths, o)
			}
		}
	}
	for _, id := range ids {
		o, err := s.userObject(id)
		if err != nil {
			return nil, err
		}
		if o.Kind != annotation.KindDrawingPath {
			return nil, fmt.Errorf("%w: %s is not a drawing path", ErrInvalidOptions, id)
		}
		paths = append(paths, o)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no drawing paths", ErrInvalidOptions)
	}

	group := annotation.GroupDrawing(paths)
	err := s.batch(func() error {
		for _, p := range paths {
			s.canvas.Remove(p.ID)
		}
		return s.canvas.Add(group)
	})
	if err != nil {
		return nil, err
	}

	s.tool = ToolSelect
	return annotation.CloneAll([]*annotation.Object{group})[0], nil
}

// AddImage places an image or signature given as a data URL and records it
// in the matching recent list.
func (s *Session) AddImage(ctx context.Context, origin geometry.Point, src string, signature bool) (*annotation.Object, error) {
	img, err := raster.DecodeDataURL(src)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()

	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	o := annotation.NewImage(origin, src, b.Dx(), b.Dy(), signature)
	if err := s.canvas.Add(o); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	out := annotation.CloneAll([]*annotation.Object{o})[0]
	s.mu.Unlock()

	if s.deps.Recent != nil {
		kind := recent.Images
		if signature {
			kind = recent.Signatures
		}
		if err := s.deps.Recent.Add(ctx, kind, src); err != nil {
			s.logger.Warn("recent list not updated", "list", kind, "error", err)
		}
	}
	return out, nil
}

// userObject returns the live user object with the given ID.
func (s *Session) userObject(id string) (*annotation.Object, error) {
	o, ok := s.canvas.Get(id)
	if !ok || o.IsHitbox() {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return o, nil
}

func (s *Session) run(index int) (annotation.TextRun, error) {
	hitboxes := s.canvas.Hitboxes()
	if index < 0 || index >= len(hitboxes) || hitboxes[index].Meta.Run == nil {
		return annotation.TextRun{}, fmt.Errorf("%w: %d", ErrRunNotFound, index)
	}
	return *hitboxes[index].Meta.Run, nil
}

// batch applies fn as a single undoable change. Canvas events inside fn do
// not record history.
func (s *Session) batch(fn func() error) error {
	page := s.activePage()
	before := s.current()

	s.history.Lock()
	err := fn()
	s.history.Unlock()
	if err != nil {
		return err
	}

	s.history.Push(history.Entry{PageID: page.ID, PageIndex: s.active, State: before})
	s.history.CaptureStart(s.current())
	s.store.ScheduleCommit()
	return nil
}

// onCanvasEvent drives history and autosave from canvas changes. It runs with
// s.mu held.
func (s *Session) onCanvasEvent(e canvas.Event) {
	switch e.Type {
	case canvas.MouseDown:
		s.history.CaptureStart(s.current())
	case canvas.ObjectAdded, canvas.ObjectModified, canvas.ObjectRemoved:
		if (e.Object != nil && e.Object.IsHitbox()) || s.history.Locked() {
			return
		}
		page := s.activePage()
		s.history.Record(page.ID, s.active, s.current())
		s.store.ScheduleCommit()
	}
}
