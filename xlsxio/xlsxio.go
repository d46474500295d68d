// Package xlsxio builds sheet snapshots from the formats the portal
// stores worksheets in: uploaded .xlsx workbooks and the JSON snapshot
// document used by the grid API.
package xlsxio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/edusuite/gridcalc/sheet"
)

// ErrInvalidFormat indicates the input is not a valid xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrNoWorksheet indicates the workbook contains no worksheets.
var ErrNoWorksheet = errors.New("workbook has no worksheets")

// Load reads the first worksheet of an xlsx file into a snapshot.
func Load(path string) (sheet.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	return fromWorkbook(f)
}

// LoadReader reads the first worksheet of an xlsx stream into a snapshot.
func LoadReader(r io.Reader) (sheet.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	return fromWorkbook(f)
}

func fromWorkbook(f *excelize.File) (sheet.Sheet, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	name := sheets[0]

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", name, err)
	}

	snapshot := sheet.Sheet{}
	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			axis, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("cell coordinates (%d, %d): %w", colIdx+1, rowIdx+1, err)
			}

			formula, err := f.GetCellFormula(name, axis)
			if err != nil {
				return nil, fmt.Errorf("read formula at %s: %w", axis, err)
			}
			if formula != "" {
				formula = "=" + formula
			}

			if raw == "" && formula == "" {
				continue
			}
			snapshot[axis] = sheet.Cell{Raw: raw, Formula: formula}
		}
	}

	return snapshot, nil
}

// snapshotDoc is the JSON snapshot document exchanged with the grid layer
type snapshotDoc struct {
	Cells map[string]sheet.Cell `json:"cells"`
}

// LoadJSON decodes a JSON snapshot document, normalizing every address to
// its canonical form. Invalid addresses are an error: unlike formula
// references, the storage mapping itself must be well formed.
func LoadJSON(r io.Reader) (sheet.Sheet, error) {
	var doc snapshotDoc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snapshot := make(sheet.Sheet, len(doc.Cells))
	for ref, cell := range doc.Cells {
		addr, ok := sheet.Canonicalize(ref)
		if !ok {
			return nil, fmt.Errorf("invalid cell address %q", ref)
		}
		if cell.Raw == "" && cell.Formula == "" {
			continue
		}
		snapshot[addr] = cell
	}

	return snapshot, nil
}
