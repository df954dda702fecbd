package api

import (
	"fmt"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/pkg/decode"
)

// OpenRequest opens a document fetched from a URL.
type OpenRequest struct {
	SourceURL string `json:"source_url"`
	Name      string `json:"name,omitempty"`
}

type NavigateRequest struct {
	Page int `json:"page"`
}

type ToolRequest struct {
	Tool string `json:"tool"`
}

type ZoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type OverlayRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height,omitempty"`
}

type OriginRequest struct {
	Viewport geometry.Rect `json:"viewport"`
	Page     geometry.Rect `json:"page"`
}

type GroupRequest struct {
	IDs []string `json:"ids,omitempty"`
}

type ReplaceRequest struct {
	Text string `json:"text,omitempty"`
}

type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type VersionRequest struct {
	Label string `json:"label,omitempty"`
}

// ImageRequest places an image or signature given as a data URL.
type ImageRequest struct {
	Origin    geometry.Point `json:"origin"`
	Src       string         `json:"src"`
	Signature bool           `json:"signature,omitempty"`
}

// addCommand is a decoded POST /objects body. Exactly one of tool, object
// or image is set.
type addCommand struct {
	kind    annotation.Kind
	options session.ToolOptions
	object  *annotation.Object
	image   *ImageRequest
}

// parseAddCommand resolves a loosely typed body of the form
// {"tool": "<kind>", "options": {...}}, {"object": {...}} or
// {"image": {...}}.
func parseAddCommand(body map[string]any) (addCommand, error) {
	var cmd addCommand
	set := 0

	if raw, ok := body["tool"]; ok {
		set++
		name, ok := raw.(string)
		if !ok {
			return cmd, fmt.Errorf("%w: tool must be a kind name", ErrInvalidRequest)
		}
		k, err := annotation.ParseKind(name)
		if err != nil {
			return cmd, err
		}
		opts, err := decode.FromValue[session.ToolOptions](body["options"])
		if err != nil {
			return cmd, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		cmd.kind, cmd.options = k, opts
	}

	if raw, ok := body["object"]; ok {
		set++
		obj, err := decode.FromValue[*annotation.Object](raw)
		if err != nil {
			return cmd, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if obj == nil {
			return cmd, fmt.Errorf("%w: object is empty", ErrInvalidRequest)
		}
		cmd.object = obj
	}

	if raw, ok := body["image"]; ok {
		set++
		img, err := decode.FromValue[ImageRequest](raw)
		if err != nil {
			return cmd, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		cmd.image = &img
	}

	if set != 1 {
		return cmd, fmt.Errorf("%w: expected one of tool, object or image", ErrInvalidRequest)
	}
	return cmd, nil
}
