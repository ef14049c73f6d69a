package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"

	"github.com/ironsheep/blast-cropper/internal/batch"
	"github.com/ironsheep/blast-cropper/internal/detection"
	"github.com/ironsheep/blast-cropper/internal/imaging"
	"github.com/ironsheep/blast-cropper/internal/projection"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "cells_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Cell Detection
	case "cells_mask":
		return s.handleCellsMask(args)
	case "cells_detect":
		return s.handleCellsDetect(args)
	case "cells_crop":
		return s.handleCellsCrop(args)
	case "cells_process_dir":
		return s.handleCellsProcessDir(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// detector builds a Detector from the server config with per-call overrides.
func (s *Server) detector(a detectArgs) (*detection.Detector, error) {
	opts, err := s.cfg.DetectionOptions()
	if err != nil {
		return nil, err
	}
	if a.DistanceThreshold != nil {
		opts.DistanceThreshold = *a.DistanceThreshold
	}
	if a.MinSize != nil {
		opts.MinSize = *a.MinSize
	}
	if a.FillHoles != nil {
		opts.FillHoles = *a.FillHoles
	}
	return detection.New(opts, s.logger)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type sampleColorResult struct {
	*imaging.ColorResult
	Stain bool `json:"stain"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	opts, err := s.cfg.DetectionOptions()
	if err != nil {
		return nil, err
	}
	return &sampleColorResult{
		ColorResult: c,
		Stain:       opts.Stain.Contains(c.RGB.R, c.RGB.G, c.RGB.B),
	}, nil
}

// === Cell Detection Handlers ===

type cellsMaskArgs struct {
	Path         string `json:"path"`
	FillHoles    *bool  `json:"fill_holes"`
	IncludeImage bool   `json:"include_image"`
}

type maskResult struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	StainedPixels   int     `json:"stained_pixels"`
	StainedFraction float64 `json:"stained_fraction"`
	ImageBase64     string  `json:"image_base64,omitempty"`
	MimeType        string  `json:"mime_type,omitempty"`
}

func (s *Server) handleCellsMask(args json.RawMessage) (interface{}, error) {
	var a cellsMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.detector(detectArgs{FillHoles: a.FillHoles})
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	m, err := d.Mask(img)
	if err != nil {
		return nil, err
	}

	res := &maskResult{Width: m.Width, Height: m.Height, StainedPixels: m.Count()}
	if total := m.Width * m.Height; total > 0 {
		res.StainedFraction = float64(res.StainedPixels) / float64(total)
	}
	if a.IncludeImage {
		var buf bytes.Buffer
		if err := png.Encode(&buf, m.Gray()); err != nil {
			return nil, fmt.Errorf("failed to encode mask: %w", err)
		}
		res.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
		res.MimeType = "image/png"
	}
	return res, nil
}

type detectArgs struct {
	Path              string   `json:"path"`
	DistanceThreshold *float64 `json:"distance_threshold"`
	MinSize           *int     `json:"min_size"`
	FillHoles         *bool    `json:"fill_holes"`
}

type detectResult struct {
	*detection.Result
	Kept    int               `json:"kept"`
	Crops   []projection.Crop `json:"crops"`
	Overlay []projection.Draw `json:"overlay"`
}

func (s *Server) detect(args json.RawMessage) (image.Image, *detection.Result, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, nil, err
	}
	d, err := s.detector(a)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	res, err := d.Detect(img)
	if err != nil {
		return nil, nil, err
	}
	return img, res, nil
}

func (s *Server) handleCellsDetect(args json.RawMessage) (interface{}, error) {
	_, res, err := s.detect(args)
	if err != nil {
		return nil, err
	}
	crops, err := res.Crops()
	if err != nil {
		return nil, err
	}
	style, err := s.cfg.Style()
	if err != nil {
		return nil, err
	}
	draws, err := res.Overlay(style)
	if err != nil {
		return nil, err
	}
	return &detectResult{Result: res, Kept: res.Kept(), Crops: crops, Overlay: draws}, nil
}

type cropsResult struct {
	Regions int                   `json:"regions"`
	Crops   []*imaging.CropResult `json:"crops"`
}

func (s *Server) handleCellsCrop(args json.RawMessage) (interface{}, error) {
	img, res, err := s.detect(args)
	if err != nil {
		return nil, err
	}
	crops, err := res.Crops()
	if err != nil {
		return nil, err
	}
	subs, err := imaging.CropAll(img, crops)
	if err != nil {
		return nil, err
	}

	out := &cropsResult{Regions: len(res.Rects), Crops: make([]*imaging.CropResult, 0, len(subs))}
	for i, sub := range subs {
		enc, err := imaging.EncodePNGBase64(sub, crops[i].Index)
		if err != nil {
			return nil, err
		}
		out.Crops = append(out.Crops, enc)
	}
	return out, nil
}

type processDirArgs struct {
	InDir     string `json:"in_dir"`
	CropDir   string `json:"crop_dir"`
	BoxDir    string `json:"box_dir"`
	Extension string `json:"extension"`
	Workers   int    `json:"workers"`
}

func (s *Server) handleCellsProcessDir(args json.RawMessage) (interface{}, error) {
	var a processDirArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts, err := batch.OptionsFromConfig(s.cfg, a.InDir)
	if err != nil {
		return nil, err
	}
	opts.CropDir = a.CropDir
	opts.BoxDir = a.BoxDir
	if a.Extension != "" {
		opts.Extension = a.Extension
	}
	if a.Workers > 0 {
		opts.Workers = a.Workers
	}

	d, err := s.detector(detectArgs{})
	if err != nil {
		return nil, err
	}
	runner, err := batch.NewRunner(d, opts, s.logger)
	if err != nil {
		return nil, err
	}
	return runner.Run(context.Background())
}
