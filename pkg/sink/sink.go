// Package sink persists collected mappings. The file sink writes the
// pretty-printed JSON object the extraction contract requires; the memory
// sink backs tests.
package sink

import (
	"context"

	"github.com/frontier-tools/solarmap/pkg/collector"
)

// Sink receives a completed mapping. A sink failure never invalidates the
// in-memory mapping; callers report the error and keep using the result.
type Sink interface {
	Write(ctx context.Context, mapping *collector.Mapping) error
}

// MemorySink keeps the last written mapping in memory.
type MemorySink struct {
	// Mapping is a snapshot of the last write.
	Mapping *collector.Mapping

	// Writes counts Write calls.
	Writes int

	// Err, when set, is returned from Write (for failure-path tests).
	Err error
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write snapshots the mapping.
func (s *MemorySink) Write(_ context.Context, mapping *collector.Mapping) error {
	s.Writes++
	if s.Err != nil {
		return s.Err
	}

	snapshot := collector.NewMapping()
	for _, e := range mapping.Entries() {
		snapshot.Set(e.Name, e.ID)
	}
	s.Mapping = snapshot
	return nil
}
