// Package excel loads datasets from Excel and CSV files into the dataset
// table the core consumes. Columns that parse fully as numbers become
// numeric; everything else becomes a factor with levels in sorted label order.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"goeffect/domain/dataset"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	grouping map[string]bool
}

// NewDataReader creates a reader for an .xlsx or .csv file. Columns named in
// groupingColumns are loaded with grouping kind instead of factor kind.
func NewDataReader(filePath string, groupingColumns ...string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	grouping := make(map[string]bool, len(groupingColumns))
	for _, g := range groupingColumns {
		grouping[g] = true
	}
	return &DataReader{filePath: filePath, fileType: fileType, grouping: grouping}
}

// Read loads the file into a dataset table.
func (r *DataReader) Read(ctx context.Context) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var records [][]string
	var err error
	switch r.fileType {
	case "csv":
		records, err = r.readCSV()
	case "xlsx":
		records, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	return r.toTable(records)
}

func (r *DataReader) readCSV() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return records, nil
}

func (r *DataReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) toTable(records [][]string) (*dataset.Table, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("file needs a header row and at least one data row")
	}
	header := records[0]
	body := records[1:]

	columns := make([]dataset.Column, 0, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		raw := make([]string, len(body))
		for i, row := range body {
			if j < len(row) {
				raw[i] = strings.TrimSpace(row[j])
			}
		}
		columns = append(columns, r.buildColumn(name, raw))
	}

	return dataset.NewTable(columns)
}

func (r *DataReader) buildColumn(name string, raw []string) dataset.Column {
	values := make([]float64, len(raw))
	numeric := !r.grouping[name]
	for i, cell := range raw {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}
	if numeric {
		return dataset.Column{Name: name, Kind: dataset.KindNumeric, Values: values}
	}

	// Categorical: stable level order by sorted label.
	levelSet := make(map[string]bool)
	for _, cell := range raw {
		levelSet[cell] = true
	}
	levels := make([]string, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	index := make(map[string]int, len(levels))
	for i, l := range levels {
		index[l] = i
	}
	codes := make([]float64, len(raw))
	for i, cell := range raw {
		codes[i] = float64(index[cell])
	}

	kind := dataset.KindFactor
	if r.grouping[name] {
		kind = dataset.KindGrouping
	}
	return dataset.Column{Name: name, Kind: kind, Values: codes, Levels: levels}
}
