// Package contour extracts region boundaries from a binary stain mask.
//
// Boundaries are found with topological border following (Suzuki and Abe,
// 1985) over an 8-connected foreground. Every connected foreground region
// yields an outer border, and every background pocket inside a region yields
// a hole border. The parent links between them form the same tree OpenCV
// reports for RETR_TREE.
//
// # Algorithm Overview
//
//  1. Padding: the mask is copied into a label buffer with a one-pixel
//     background frame, so no border touches the buffer edge.
//  2. Raster scan: a border starts where a foreground pixel has background
//     to its left (outer) or to its right (hole).
//  3. Following: each new border is traced pixel by pixel and labelled so it
//     is never started twice.
//  4. Compression: interior points of straight runs are dropped, keeping the
//     turning points only (CHAIN_APPROX_SIMPLE).
//  5. Filtering: borders with fewer than three distinct points, or a zero
//     area moment, are single-pixel noise and are removed.
//
// # Coordinate System
//
// Points use mask coordinates: (0,0) is the top-left pixel, X grows right and
// Y grows down. A point names the pixel center, so a filled 3x3 square has
// corners (0,0) and (2,2).
//
// # Backends
//
// The pure Go tracer is registered as "suzuki". Building with the opencv tag
// additionally registers "opencv", which delegates to gocv and is useful for
// validating results against reference images.
package contour
