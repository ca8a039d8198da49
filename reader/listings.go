// Package reader ingests listing records from local files into the
// frame the feature pipeline consumes. Supported inputs are NDJSON (one
// listing object per line) and CSV with a header row.
package reader

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"priceflow/internal/frame"
	"priceflow/logger"
	"priceflow/models"
)

type ListingsReader struct {
	log *logger.Log
}

func NewListingsReader() *ListingsReader {
	return &ListingsReader{log: logger.GetLogger()}
}

// ReadFile loads listings from path, dispatching on the extension.
func (r *ListingsReader) ReadFile(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listings file %s: %w", path, err)
	}
	defer f.Close()

	var listings []models.Listing
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		listings, err = r.readCSV(f)
	case ".json", ".ndjson", ".jsonl":
		listings, err = r.readNDJSON(f)
	default:
		return nil, fmt.Errorf("unsupported listings format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read listings %s: %w", path, err)
	}

	r.log.WithComponent("listings_reader").WithFields(logger.Fields{
		"path":    path,
		"records": len(listings),
	}).Info("loaded listings")
	return models.ListingFrame(listings), nil
}

// readNDJSON parses one listing per line. A malformed line is logged and
// skipped rather than failing the batch.
func (r *ListingsReader) readNDJSON(src io.Reader) ([]models.Listing, error) {
	log := r.log.WithComponent("listings_reader")
	var out []models.Listing

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var l models.Listing
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			log.WithError(err).WithFields(logger.Fields{"line": line}).Warn("skipping malformed listing")
			continue
		}
		out = append(out, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan line %d: %w", line, err)
	}
	return out, nil
}

func (r *ListingsReader) readCSV(src io.Reader) ([]models.Listing, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	var out []models.Listing
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		out = append(out, models.ListingFromRecord(header, rec))
	}
	return out, nil
}
