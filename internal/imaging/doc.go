// Package imaging loads micrographs and renders detection results back to disk.
//
// This package is the file-facing side of blast-cropper. It decodes source
// images, cuts kept regions out as separate images, paints the keep/discard
// overlay onto a copy of the source, and encodes the results.
//
// # Coordinate System
//
// Region rectangles from package region are relative to the image's top-left
// pixel. Functions here add img.Bounds().Min before touching pixels, so images
// whose bounds do not start at the origin (sub-images, some decoders) are
// handled correctly.
//
// # Supported Formats
//
// Decoding (registered decoders):
//   - JPEG, PNG, GIF (standard library)
//   - TIFF, BMP, WebP (golang.org/x/image and github.com/chai2010/webp)
//
// EXIF orientation is applied on load, so rectangles match what a viewer shows.
//
// Encoding picks the format from the output extension: ".webp" uses
// github.com/chai2010/webp, everything else goes through
// github.com/disintegration/imaging (JPEG, PNG, GIF, TIFF, BMP).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and never modify their input images.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during loading and saving
//   - Unsupported or corrupt image data
//   - Crop rectangles that do not lie inside the image
//   - Coordinates outside image bounds when sampling colors
package imaging
