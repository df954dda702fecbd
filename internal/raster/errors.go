package raster

import "errors"

var (
	// ErrEmptyCanvas is returned when the target size has no area.
	ErrEmptyCanvas = errors.New("raster: empty canvas")

	// ErrImageSource is returned when an image object's source is not a
	// decodable data URL.
	ErrImageSource = errors.New("raster: unsupported image source")
)
