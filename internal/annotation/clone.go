package annotation

import "github.com/google/uuid"

// DuplicateOffset is the screen-space offset applied to duplicated objects.
const DuplicateOffset = 20.0

// Clone returns a deep copy of o with a fresh identity. Children of composite
// objects are cloned recursively.
func Clone(o *Object) *Object {
	if o == nil {
		return nil
	}
	c := *o
	c.ID = uuid.NewString()
	c.Meta = o.Meta.clone()
	if o.Children != nil {
		c.Children = make([]*Object, len(o.Children))
		for i, child := range o.Children {
			c.Children[i] = Clone(child)
		}
	}
	return &c
}

// CloneAll clones every object in objs, preserving identity. It is used to
// hand out snapshots that callers may mutate freely.
func CloneAll(objs []*Object) []*Object {
	out := make([]*Object, len(objs))
	for i, o := range objs {
		c := Clone(o)
		c.ID = o.ID
		out[i] = c
	}
	return out
}

// Duplicate clones o and offsets the clone by DuplicateOffset on both axes.
// Text replacements cannot be duplicated.
func Duplicate(o *Object) (*Object, error) {
	if o.Kind == KindTextReplacement {
		return nil, ErrNotDuplicable
	}
	c := Clone(o)
	c.Left += DuplicateOffset
	c.Top += DuplicateOffset
	return c, nil
}
