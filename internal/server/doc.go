// Package server implements the MCP (Model Context Protocol) server for
// blast-cropper.
//
// It exposes cell detection to MCP clients so that stain thresholds and size
// limits can be tuned interactively before a directory is processed in bulk.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_sample_color: Get color at pixel and whether it counts as stain
//
// Cell Detection:
//   - cells_mask: Stain mask statistics, optionally the mask image
//   - cells_detect: Rectangles, keep flags and overlay instructions
//   - cells_crop: Kept regions as base64 PNG crops
//   - cells_process_dir: Batch process a directory to disk
//
// The cells_* tools start from the server's configuration and accept
// distance_threshold, min_size and fill_holes overrides per call.
//
// # Image Caching
//
// Images are cached by path and reused across tool calls for the lifetime of
// the server process. cells_process_dir reads files directly and does not
// populate the cache.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (invalid params) or
//     -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string
package server
