package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

const exportPageSize = 500

type parquetRow struct {
	ID         string `parquet:"name=id, type=UTF8"`
	Sequence   int64  `parquet:"name=sequence, type=INT64"`
	Call       string `parquet:"name=call, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Type       string `parquet:"name=type, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Attributes string `parquet:"name=attributes, type=UTF8"`
	EmittedAt  string `parquet:"name=emitted_at, type=UTF8"`
}

// ExportParquet writes every record matching f to a snappy compressed parquet
// file at path and returns the number of rows written. Paging fields of f are
// ignored.
func (s *Store) ExportParquet(ctx context.Context, path string, f Filter) (int, error) {
	if s == nil || s.db == nil {
		return 0, errNilStore
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("indexer: create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 1)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("indexer: parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	written := 0
	f.Limit = exportPageSize
	for offset := 0; ; offset += exportPageSize {
		f.Offset = offset
		page, err := s.Query(ctx, f)
		if err != nil {
			pw.WriteStop()
			file.Close()
			return written, err
		}
		for _, rec := range page {
			attrs, err := json.Marshal(rec.Attributes)
			if err != nil {
				pw.WriteStop()
				file.Close()
				return written, fmt.Errorf("indexer: encode attributes: %w", err)
			}
			row := &parquetRow{
				ID:         rec.ID.String(),
				Sequence:   int64(rec.Sequence),
				Call:       rec.Call,
				Type:       rec.Type,
				Attributes: string(attrs),
				EmittedAt:  rec.EmittedAt.UTC().Format(time.RFC3339),
			}
			if err := pw.Write(row); err != nil {
				pw.WriteStop()
				file.Close()
				return written, fmt.Errorf("indexer: parquet write: %w", err)
			}
			written++
		}
		if len(page) < exportPageSize {
			break
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return written, fmt.Errorf("indexer: parquet finalize: %w", err)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("indexer: close parquet: %w", err)
	}
	return written, nil
}
