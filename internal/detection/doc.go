// Package detection finds stained cells in a micrograph.
//
// A Detector runs the region pipeline for one image at a time:
//
//  1. Masking: threshold the image into a binary stain mask (package stain),
//     optionally closing small gaps and filling enclosed holes
//  2. Contour Finding: trace outer and hole borders of every connected stain
//     region and drop single-pixel noise (package contour)
//  3. Merging: join boundaries whose closest points are within the join
//     distance, so a fragmented stain becomes one cell (package cluster)
//  4. Classification: bound each merged boundary with a rectangle and keep it
//     only if both sides reach the minimum size (package region)
//
// The result lists rectangles and keep flags in matching order and can be
// projected into crop and overlay instructions (package projection).
//
// # Coordinate System
//
// Rectangles are relative to the image's top-left pixel:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Callers holding an image whose Bounds().Min is not the origin must add it
// back before indexing pixels; package imaging does that.
//
// # Thread Safety
//
// A Detector holds only its options. Detect may be called concurrently on
// different images; nothing is retained between calls.
//
// # Tuning
//
// The defaults (green <= 45, join distance 100 px, minimum size 260 px) were
// fitted to one microscope and magnification. Other setups need retuning,
// starting with the minimum size, which scales with magnification.
package detection
