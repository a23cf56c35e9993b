package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format is an output artifact type, named by its file extension.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
)

// AllFormats lists every supported format in the order they are written.
var AllFormats = []Format{FormatXLSX, FormatPDF, FormatCSV}

var renderers = map[Format]func(ExportData) ([]byte, error){
	FormatXLSX: GenerateWorkbook,
	FormatPDF:  GeneratePDF,
	FormatCSV:  GenerateCSV,
}

// ParseFormats parses format names such as "xlsx", "PDF" or ".csv".
// Duplicates are dropped.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var out []Format
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(n), ".")))
		if _, ok := renderers[f]; !ok {
			return nil, fmt.Errorf("unknown output format %q (want xlsx, pdf or csv)", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// RenderError reports an artifact that could not be produced or written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// WriteOutputs renders every requested format and writes the files as
// dir/base.<ext>. All artifacts are rendered before the first file is
// written, and files already written are removed when a later write fails,
// so a failed call leaves no partial output set behind. It returns the
// written paths in format order.
func WriteOutputs(dir, base string, formats []Format, data ExportData) ([]string, error) {
	type artifact struct {
		path    string
		content []byte
	}
	artifacts := make([]artifact, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, base+"."+string(f))
		render, ok := renderers[f]
		if !ok {
			return nil, &RenderError{Path: path, Err: fmt.Errorf("unknown format %q", f)}
		}
		content, err := render(data)
		if err != nil {
			return nil, &RenderError{Path: path, Err: err}
		}
		artifacts = append(artifacts, artifact{path: path, content: content})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &RenderError{Path: dir, Err: err}
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := os.WriteFile(a.path, a.content, 0o644); err != nil {
			for _, written := range paths {
				if rmErr := os.Remove(written); rmErr != nil {
					slog.Warn("failed to remove partial artifact", "path", written, "error", rmErr)
				}
			}
			return nil, &RenderError{Path: a.path, Err: err}
		}
		slog.Debug("wrote artifact", "path", a.path, "bytes", len(a.content))
		paths = append(paths, a.path)
	}
	return paths, nil
}
