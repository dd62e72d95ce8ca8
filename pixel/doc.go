// Package pixel implements the colors and pixel buffers used by e-ink surfaces.
//
// This package provides palette index and monochrome color models, compatible with
// Go's native [color.Color] and [image.Image] / [draw.Image] interfaces.
package pixel
