package core

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/twpayne/go-vfs"
)

type qTableEntry struct {
	Row    int                 `json:"row"`
	Col    int                 `json:"col"`
	Values [NumActions]float64 `json:"values"`
}

// Record writes the table as JSON lines, one cell per line in row-major order.
func (q *QTable) Record(fs vfs.FS, path string) error {
	bs := new(bytes.Buffer)
	enc := json.NewEncoder(bs)
	for r := 0; r < q.rows; r++ {
		for c := 0; c < q.cols; c++ {
			pos := Position{Row: r, Col: c}
			if err := enc.Encode(qTableEntry{Row: r, Col: c, Values: q.Values(pos)}); err != nil {
				return fmt.Errorf("encoding q-values at %s: %w", pos, err)
			}
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := vfs.MkdirAll(fs, dir, 0755); err != nil {
			return err
		}
	}
	return fs.WriteFile(path, bs.Bytes(), 0644)
}

// ReadQTable loads a table written by Record. Cells missing from the file
// stay zero; entries outside rows x cols fail with ErrShapeMismatch.
func ReadQTable(fs vfs.FS, path string, rows, cols int) (*QTable, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	defer file.Close()

	q := NewQTable(rows, cols)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var entry qTableEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("error reading file contents at line %d: %w", line, err)
		}
		if entry.Row < 0 || entry.Row >= rows || entry.Col < 0 || entry.Col >= cols {
			return nil, fmt.Errorf("%w: entry (%d,%d) outside %dx%d", ErrShapeMismatch, entry.Row, entry.Col, rows, cols)
		}
		for a, v := range entry.Values {
			q.Set(Position{Row: entry.Row, Col: entry.Col}, Action(a), v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return q, nil
}
