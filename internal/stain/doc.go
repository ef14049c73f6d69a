// Package stain turns a color micrograph into a binary stain mask.
//
// A pixel belongs to the mask when each of its three channels falls inside an
// inclusive per-channel range. The ranges are given in a configurable channel
// order; the default tuning is written in blue, green, red order and only
// restricts green, so pixels with little green intensity count as stain.
//
// # Coordinate System
//
// Mask coordinates are 0-based and relative to the top-left pixel of the
// source image, regardless of the image's Bounds().Min.
//
// # Post-processing
//
// Two optional clean-up passes operate on a finished mask:
//   - FillHoles: sets background pockets fully enclosed by stain
//   - Close: morphological closing (dilate then erode) to bridge small gaps
//
// Both return new masks; the input mask is never modified.
package stain
