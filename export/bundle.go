package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/cwbudde/algo-resp/analysis"
)

// File is one named export.
type File struct {
	Name string
	Data []byte
}

// Options selects the tables written by Files.
type Options struct {
	// Tall adds the tall feature table.
	Tall bool
}

// Files renders the tables of res, named after the recording.
func Files(res *analysis.Result, opts Options) ([]File, error) {
	if err := requireTable(res); err != nil {
		return nil, err
	}

	type table struct {
		suffix string
		render func(*analysis.Result) ([]string, [][]string, error)
	}

	tables := []table{{"_features.csv", Wide}, {"_breaths.csv", Breaths}}
	if opts.Tall {
		tables = append(tables, table{"_features_tall.csv", Reshape})
	}

	files := make([]File, 0, len(tables))
	for _, t := range tables {
		header, rows, err := t.render(res)
		if err != nil {
			return nil, err
		}

		data, err := CSV(header, rows)
		if err != nil {
			return nil, err
		}

		files = append(files, File{Name: res.Recording + t.suffix, Data: data})
	}

	return files, nil
}

// WriteZip writes files as a deflate-compressed zip archive. Entries keep
// the order of files and carry the given modification time.
func WriteZip(w io.Writer, files []File, modified time.Time) error {
	zw := zip.NewWriter(w)

	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("export: zip %s: %w", f.Name, err)
		}

		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("export: zip %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: close zip: %w", err)
	}

	return nil
}

// WriteDir writes every file into dir, creating it if needed.
func WriteDir(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	return nil
}
