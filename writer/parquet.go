package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	"priceflow/internal/frame"
	"priceflow/logger"
)

// memoryFile implements the ParquetFile interface over an in-memory
// buffer; the finished file is flushed to disk (and optionally S3) in
// one write.
type memoryFile struct {
	buffer *bytes.Buffer
}

func newMemoryFile() *memoryFile {
	return &memoryFile{buffer: &bytes.Buffer{}}
}

func (m *memoryFile) Create(name string) (source.ParquetFile, error) { return m, nil }
func (m *memoryFile) Open(name string) (source.ParquetFile, error)   { return m, nil }

func (m *memoryFile) Seek(offset int64, whence int) (int64, error) {
	return int64(m.buffer.Len()), nil
}

func (m *memoryFile) Read(b []byte) (int, error)  { return m.buffer.Read(b) }
func (m *memoryFile) Write(b []byte) (int, error) { return m.buffer.Write(b) }
func (m *memoryFile) Close() error                { return nil }
func (m *memoryFile) Bytes() []byte               { return m.buffer.Bytes() }

// TableWriter serializes frames to parquet files with a schema derived
// from the frame's column kinds.
type TableWriter struct {
	log *logger.Log
}

func NewTableWriter() *TableWriter {
	return &TableWriter{log: logger.GetLogger()}
}

type jsonSchema struct {
	Tag    string            `json:"Tag"`
	Fields []jsonSchemaField `json:"Fields"`
}

type jsonSchemaField struct {
	Tag string `json:"Tag"`
}

func schemaFor(f *frame.Frame) (string, error) {
	s := jsonSchema{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	for _, name := range f.Names() {
		c := f.Column(name)
		var typ string
		switch c.Kind() {
		case frame.String:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8"
		case frame.Float:
			typ = "type=DOUBLE"
		case frame.Int:
			typ = "type=INT64"
		case frame.Bool:
			typ = "type=BOOLEAN"
		case frame.Time:
			// Epoch milliseconds, matching the convention used for
			// timestamps elsewhere in the storage layer.
			typ = "type=INT64, convertedtype=TIMESTAMP_MILLIS"
		default:
			return "", fmt.Errorf("column %q: unsupported kind %s", name, c.Kind())
		}
		s.Fields = append(s.Fields, jsonSchemaField{
			Tag: fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", name, typ),
		})
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal parquet schema: %w", err)
	}
	return string(raw), nil
}

// Marshal renders a frame to parquet bytes.
func (w *TableWriter) Marshal(f *frame.Frame) ([]byte, error) {
	schema, err := schemaFor(f)
	if err != nil {
		return nil, err
	}

	mf := newMemoryFile()
	jw, err := pqwriter.NewJSONWriter(schema, mf, 2)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	jw.CompressionType = parquet.CompressionCodec_SNAPPY

	names := f.Names()
	for i := 0; i < f.Rows(); i++ {
		row := make(map[string]interface{}, len(names))
		for _, name := range names {
			c := f.Column(name)
			if c.IsNull(i) {
				continue
			}
			switch c.Kind() {
			case frame.String:
				v, _ := c.StringAt(i)
				row[name] = v
			case frame.Float:
				v, _ := c.FloatAt(i)
				row[name] = v
			case frame.Int:
				v, _ := c.IntAt(i)
				row[name] = v
			case frame.Bool:
				v, _ := c.BoolAt(i)
				row[name] = v
			case frame.Time:
				v, _ := c.TimeAt(i)
				row[name] = v.UnixMilli()
			}
		}
		rec, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshal parquet row %d: %w", i, err)
		}
		if err := jw.Write(string(rec)); err != nil {
			return nil, fmt.Errorf("write parquet row %d: %w", i, err)
		}
	}
	if err := jw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet file: %w", err)
	}
	return mf.Bytes(), nil
}

// WriteFile renders a frame and writes it to path, creating parent
// directories as needed.
func (w *TableWriter) WriteFile(f *frame.Frame, path string) error {
	raw, err := w.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write parquet file %s: %w", path, err)
	}
	w.log.WithComponent("table_writer").WithFields(logger.Fields{
		"path":  path,
		"rows":  f.Rows(),
		"cols":  len(f.Names()),
		"bytes": len(raw),
	}).Info("wrote parquet table")
	return nil
}
