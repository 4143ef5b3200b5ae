package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/frontier-tools/solarmap/pkg/collector"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileSink writes the mapping as a pretty-printed UTF-8 JSON object.
// Keys appear in fetch order and non-ASCII characters are written unescaped.
// The file is written to a temp file first and renamed into place, so a
// failed run never leaves a truncated mapping behind.
type FileSink struct {
	path   string
	logger zerolog.Logger
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{
		path:   path,
		logger: log.With().Str("component", "file-sink").Logger(),
	}
}

// Path returns the output file path.
func (s *FileSink) Path() string {
	return s.path
}

// Write persists the mapping atomically.
func (s *FileSink) Write(_ context.Context, mapping *collector.Mapping) error {
	var buf bytes.Buffer
	if err := encodeMapping(&buf, mapping); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}

	s.logger.Info().
		Str("path", s.path).
		Int("entries", mapping.Len()).
		Msg("Mapping saved")

	return nil
}

// encodeMapping writes the mapping as a two-space-indented JSON object in
// fetch order.
func encodeMapping(w io.Writer, mapping *collector.Mapping) error {
	entries := mapping.Entries()
	if len(entries) == 0 {
		_, err := io.WriteString(w, "{}")
		return err
	}

	if _, err := io.WriteString(w, "{\n"); err != nil {
		return err
	}
	for i, e := range entries {
		key, err := encodeName(e.Name)
		if err != nil {
			return fmt.Errorf("encode name %q: %w", e.Name, err)
		}

		line := fmt.Sprintf("  %s: %d", key, e.ID)
		if i < len(entries)-1 {
			line += ","
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}

// encodeName JSON-encodes a key without HTML escaping, keeping non-ASCII
// characters as-is.
func encodeName(name string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Load reads a mapping file back, preserving key order.
func Load(path string) (*collector.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()

	return decodeMapping(f)
}

// decodeMapping reads a JSON object of name→id pairs via the token stream,
// so insertion order survives the round trip.
func decodeMapping(r io.Reader) (*collector.Mapping, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("mapping must be a JSON object, got %v", tok)
	}

	mapping := collector.NewMapping()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read mapping key: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("mapping key must be a string, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read mapping value: %w", err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("mapping value for %q must be a number, got %v", name, valTok)
		}
		id, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("mapping value for %q: %w", name, err)
		}

		mapping.Set(name, id)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read mapping end: %w", err)
	}

	return mapping, nil
}
