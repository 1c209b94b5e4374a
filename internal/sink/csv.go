// Package sink serializes accepted batch results to disk.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/metrics"
)

// Sink writes the record and address outputs for one batch.
type Sink struct {
	dir     string
	label   string
	columns []string
	logger  *zap.Logger
}

// New returns a Sink rooted at dir writing the given fixed column set. The
// label, when set, is woven into output file names only.
func New(dir, label string, columns []string, logger *zap.Logger) (*Sink, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("column set is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir %s: %w", dir, err)
	}
	return &Sink{dir: dir, label: label, columns: columns, logger: logger}, nil
}

// WriteRecords serializes the records in accumulation order. Every field is
// quoted with embedded quotes doubled; rows carry exactly the configured
// columns, absent values rendering as empty. With no records, no file is
// created and the empty path signals the no-op.
func (s *Sink) WriteRecords(records []carrier.Record) (string, error) {
	if len(records) == 0 {
		s.logger.Info("no records accepted; skipping record output")
		return "", nil
	}

	var b strings.Builder
	writeRow(&b, s.columns)
	for _, rec := range records {
		row := make([]string, len(s.columns))
		for i, col := range s.columns {
			row[i] = rec.Get(col)
		}
		writeRow(&b, row)
	}

	path := s.recordsPath()
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("write records %s: %w", path, err)
	}
	metrics.RecordsWritten.Add(float64(len(records)))
	s.logger.Info("records written",
		zap.String("path", path),
		zap.Int("rows", len(records)),
	)
	return path, nil
}

// WriteAddresses writes accepted lookup addresses newline-separated. With
// no addresses, no file is created.
func (s *Sink) WriteAddresses(addresses []string) (string, error) {
	if len(addresses) == 0 {
		s.logger.Info("no addresses accepted; skipping address output")
		return "", nil
	}
	path := s.addressesPath()
	payload := strings.Join(addresses, "\n") + "\n"
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		return "", fmt.Errorf("write addresses %s: %w", path, err)
	}
	s.logger.Info("addresses written",
		zap.String("path", path),
		zap.Int("count", len(addresses)),
	)
	return path, nil
}

func (s *Sink) recordsPath() string {
	return filepath.Join(s.dir, suffixed("carriers", s.label)+".csv")
}

func (s *Sink) addressesPath() string {
	return filepath.Join(s.dir, suffixed("addresses", s.label)+".txt")
}

func suffixed(base, label string) string {
	if label == "" {
		return base
	}
	return base + "_" + label
}

// writeRow emits one CSV row with every field quoted.
func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
