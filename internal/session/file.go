package session

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/tracker"
)

// FileName is the default export name for a snapshot taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("initiative-session-%s.json", now.UTC().Format("20060102-150405"))
}

// WriteFile writes the document to path, gzipped when path ends in ".gz".
// Missing parent directories are created.
func WriteFile(path string, d Document) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	var w io.Writer = file
	var gzipWriter *gzip.Writer
	if isGzip(path) {
		gzipWriter = gzip.NewWriter(file)
		w = gzipWriter
	}
	_, err = w.Write(data)
	if err != nil {
		err = fmt.Errorf("failed to write session: %w", err)
	}
	if gzipWriter != nil {
		if cerr := gzipWriter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to finish gzip stream: %w", cerr)
		}
	}
	if cerr := file.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close file: %w", cerr)
	}
	return err
}

// ReadFile reads and validates a document from path.
func ReadFile(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if isGzip(path) {
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return Document{}, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read session: %w", err)
	}
	return Decode(data)
}

// ExportFile snapshots tr into path.
func ExportFile(tr *tracker.Tracker, path string, now time.Time, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc := Export(tr.Snapshot(), now)
	if err := WriteFile(path, doc); err != nil {
		return err
	}
	logger.Info("session exported",
		zap.String("path", path),
		zap.Int("roster", len(doc.Roster)),
		zap.Int("graveyard", len(doc.Graveyard)),
	)
	return nil
}

// ImportFile validates the document at path and only then hands it to the
// tracker. A rejected document leaves the tracker untouched.
func ImportFile(tr *tracker.Tracker, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := ReadFile(path)
	if err != nil {
		logger.Warn("session import rejected",
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}
	tr.Import(doc.State())
	return nil
}

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}
