package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// detectionProperties are the per-call overrides shared by the cells_* tools.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"distance_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Join distance in pixels between boundary fragments. 0 disables merging. Default from config (100)",
		},
		"min_size": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum width and height in pixels for a region to be kept. Default from config (260)",
		},
		"fill_holes": map[string]interface{}{
			"type":        "boolean",
			"description": "Fill background pockets enclosed by stain before tracing",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and channel count. The decoded image is cached for subsequent calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel in hex, RGB and HSL, and whether it passes the configured stain predicate. Use this to tune stain bounds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Cell Detection
		{
			Name:        "cells_mask",
			Description: "Build the stain mask for an image and report how many pixels are stained. Optionally return the mask as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"fill_holes": map[string]interface{}{
						"type":        "boolean",
						"description": "Fill background pockets enclosed by stain",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the mask as a base64-encoded PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "cells_detect",
			Description: "Detect stained cells: returns one bounding rectangle per merged region, its keep flag, and overlay draw instructions (green kept, red discarded).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "cells_crop",
			Description: "Detect stained cells and return every kept region as a base64-encoded PNG crop.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "cells_process_dir",
			Description: "Process every image in a directory: write kept crops as {name}[{i}]{ext} to crop_dir and the annotated overview as {name}r{ext} to box_dir.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"in_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of input images",
					},
					"crop_dir": map[string]interface{}{
						"type":        "string",
						"description": "Output directory for cropped cells",
					},
					"box_dir": map[string]interface{}{
						"type":        "string",
						"description": "Output directory for annotated overviews",
					},
					"extension": map[string]interface{}{
						"type":        "string",
						"description": "Output file extension. Default from config (.JPG)",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Images processed in parallel. Default one per CPU",
					},
				},
				"required": []string{"in_dir", "crop_dir", "box_dir"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
