package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/sabriallani/GenRapport/internal/models"
)

// ErrSourceNotFound means the data directory holds no readable test sheet
var ErrSourceNotFound = errors.New("no test sheets found")

// Source yields the ordered, finite sequence of test records for one run
type Source interface {
	Records(ctx context.Context) ([]models.TestRecord, error)
}

// DirSource reads every .xlsx (first sheet) and .csv file of a directory.
// Files are taken in lexical name order and their rows concatenated.
type DirSource struct {
	dir string
	log logrus.FieldLogger
}

func NewDirSource(dir string, log logrus.FieldLogger) *DirSource {
	return &DirSource{
		dir: dir,
		log: log.WithField("component", "source"),
	}
}

func (s *DirSource) Records(ctx context.Context) ([]models.TestRecord, error) {
	files, err := s.sheetFiles()
	if err != nil {
		return nil, err
	}

	var records []models.TestRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := readTable(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		before := len(records)
		for _, row := range rowMaps(rows) {
			rec := models.NewTestRecord(row)
			rec.SourceFile = filepath.Base(path)
			rec.Row = len(records) + 1
			records = append(records, rec)
		}

		s.log.WithFields(logrus.Fields{
			"file":    filepath.Base(path),
			"records": len(records) - before,
		}).Debug("loaded test sheet")
	}

	s.log.WithFields(logrus.Fields{
		"files":   len(files),
		"records": len(records),
	}).Info("📂 test records loaded")
	return records, nil
}

func (s *DirSource) sheetFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrSourceNotFound, s.dir)
		}
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		// skip hidden files and office lock files (~$report.xlsx)
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".csv":
			files = append(files, filepath.Join(s.dir, name))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .xlsx or .csv file in %s", ErrSourceNotFound, s.dir)
	}

	sort.Strings(files)
	return files, nil
}

func readTable(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(path)
	}
	return readWorkbook(path)
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// rowMaps keys every data row by the header row. Cells beyond the header are ignored,
// a short row simply lacks the trailing columns. Fully blank rows are dropped.
func rowMaps(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		m := make(map[string]string, len(header))
		for i, value := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			m[header[i]] = value
		}
		out = append(out, m)
	}
	return out
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
