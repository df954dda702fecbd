package annotation

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion is the version written into every serialized page state.
const DocumentVersion = "6.0.0"

type document struct {
	Version string    `json:"version"`
	Objects []*Object `json:"objects"`
}

type rawDocument struct {
	Version string            `json:"version"`
	Objects []json.RawMessage `json:"objects"`
}

// Encode serializes objs into a versioned document, excluding hitboxes.
// An empty page encodes as {"version":"6.0.0","objects":[]}.
func Encode(objs []*Object) ([]byte, error) {
	doc := document{
		Version: DocumentVersion,
		Objects: WithoutHitboxes(objs),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode objects: %w", err)
	}
	return data, nil
}

// Decode parses a versioned document. Any hitboxes present in the input are
// dropped.
func Decode(data []byte) ([]*Object, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidDocument)
	}
	for _, o := range doc.Objects {
		if o == nil {
			return nil, fmt.Errorf("%w: null object", ErrInvalidDocument)
		}
	}
	return WithoutHitboxes(doc.Objects), nil
}

// DecodeLenient is the fallback decoder. It accepts a document whose envelope
// parses, decoding each object independently and skipping the ones that do
// not. The returned count reports how many objects were skipped.
func DecodeLenient(data []byte) ([]*Object, int, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	objs := make([]*Object, 0, len(raw.Objects))
	skipped := 0
	for _, msg := range raw.Objects {
		var o Object
		if err := json.Unmarshal(msg, &o); err != nil {
			skipped++
			continue
		}
		if o.IsHitbox() {
			continue
		}
		objs = append(objs, &o)
	}
	return objs, skipped, nil
}
