package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	maxReadChars   = 3000
	writeSeparator = "|||"
)

// ReadFileTool reads local files.
type ReadFileTool struct {
	fs afero.Fs
}

// NewReadFileTool creates the ReadFile tool over fs. A nil fs uses the OS
// filesystem.
func NewReadFileTool(fs afero.Fs) *ReadFileTool {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ReadFileTool{fs: fs}
}

func (r *ReadFileTool) Name() string {
	return "ReadFile"
}

func (r *ReadFileTool) Description() string {
	return "Read the contents of a local file. Input: file path."
}

func (r *ReadFileTool) Invoke(ctx context.Context, input string) string {
	content, err := r.read(ctx, input)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}
	return content
}

func (r *ReadFileTool) read(ctx context.Context, input string) (string, error) {
	path, err := resolvePath(input)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("read file")

	content, truncated := TruncateRunes(string(data), maxReadChars)
	if truncated {
		return content + "\n... (truncated)", nil
	}
	return content, nil
}

// WriteFileTool writes local files. Its input is "path|||content".
type WriteFileTool struct {
	fs afero.Fs
}

// NewWriteFileTool creates the WriteFile tool over fs. A nil fs uses the OS
// filesystem.
func NewWriteFileTool(fs afero.Fs) *WriteFileTool {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &WriteFileTool{fs: fs}
}

func (w *WriteFileTool) Name() string {
	return "WriteFile"
}

func (w *WriteFileTool) Description() string {
	return "Write content to a local file. Input format: filepath|||content"
}

func (w *WriteFileTool) Invoke(ctx context.Context, input string) string {
	rawPath, content, ok := strings.Cut(input, writeSeparator)
	if !ok {
		return "Error: Input must be in format 'filepath|||content'"
	}

	path, err := w.write(ctx, rawPath, content)
	if err != nil {
		return fmt.Sprintf("Error writing file: %v", err)
	}
	return "Successfully wrote to " + path
}

func (w *WriteFileTool) write(ctx context.Context, rawPath, content string) (string, error) {
	path, err := resolvePath(rawPath)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := afero.WriteFile(w.fs, path, []byte(content), 0o644); err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return path, nil
}

func resolvePath(raw string) (string, error) {
	path := CleanPath(raw)
	if path == "" {
		return "", fmt.Errorf("empty file path")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", path, err)
	}
	return expanded, nil
}
