// Package server implements the MCP (Model Context Protocol) server for the
// laser line extractor.
//
// This package provides a JSON-RPC 2.0 server that exposes image loading,
// region selection and sub-pixel line extraction through the MCP protocol,
// so an MCP client can inspect scanner images and tune extraction settings
// interactively.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_crop_roi: Extract a named or explicit region as PNG
//
// Line Extraction:
//   - lines_derive_params: Show the sigma and thresholds for a setting
//   - lines_extract: Find line centers, optionally writing a CSV
//   - lines_overlay: Draw the found lines over the image
//   - lines_scan_folder: Batch extraction over files and directories
//
// Extraction settings that a call leaves out come from the configuration
// passed to NewWithConfig.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// Folder scans read from disk and do not fill the cache.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.NewWithConfig(cfg)
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
