package annotation

// NewHitbox returns a transparent hit target mirroring a text run.
func NewHitbox(run TextRun) *Object {
	r := runRect(run)
	o := newObject(KindHitbox)
	o.Left, o.Top, o.Width, o.Height = r.Left, r.Top, r.Width, r.Height
	o.Fill = "rgba(0,0,0,0)"
	o.Meta.Run = &run
	return o
}

// Hitboxes returns one hitbox per text run, in run order.
func Hitboxes(runs []TextRun) []*Object {
	out := make([]*Object, 0, len(runs))
	for _, run := range runs {
		out = append(out, NewHitbox(run))
	}
	return out
}

// WithoutHitboxes returns the objects that are not hitboxes, preserving order.
func WithoutHitboxes(objs []*Object) []*Object {
	out := make([]*Object, 0, len(objs))
	for _, o := range objs {
		if !o.IsHitbox() {
			out = append(out, o)
		}
	}
	return out
}

// CountHitboxes returns the number of hitboxes in objs.
func CountHitboxes(objs []*Object) int {
	n := 0
	for _, o := range objs {
		if o.IsHitbox() {
			n++
		}
	}
	return n
}
