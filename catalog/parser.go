package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"marketsync/auth"
	"marketsync/errors"

	"github.com/samber/lo"
)

// ServiceRecord is one accepted row of the CSV.
type ServiceRecord struct {
	Line        int
	Title       string
	CategoryID  string
	Category    string
	Description string
	Price       float64
}

// RowError reports a rejected row without stopping the parse.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Header aliases, Portuguese exports included.
var columns = map[string][]string{
	"title":       {"title", "titulo", "título", "nome"},
	"category_id": {"category_id", "categoria_id", "categoria"},
	"description": {"description", "descricao", "descrição"},
	"price":       {"price", "preco", "preço", "valor"},
}

var required = []string{"title", "category_id"}

// ParseServices reads a header-mapped CSV. Invalid rows are collected and
// returned beside the accepted ones; only an unreadable input or a header
// without the required columns is fatal.
func ParseServices(r io.Reader) ([]ServiceRecord, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	index := mapHeader(header)
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", errors.ErrMissingColumn, name)
		}
	}

	var (
		records []ServiceRecord
		rejects []RowError
	)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				rejects = append(rejects, RowError{Line: line, Err: err})
				continue
			}
			return records, rejects, err
		}
		if lo.EveryBy(row, func(cell string) bool { return strings.TrimSpace(cell) == "" }) {
			continue
		}
		record, err := parseRow(line, row, index)
		if err != nil {
			rejects = append(rejects, RowError{Line: line, Err: err})
			continue
		}
		records = append(records, record)
	}
	return records, rejects, nil
}

func mapHeader(header []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		for name, aliases := range columns {
			if _, seen := index[name]; !seen && lo.Contains(aliases, cell) {
				index[name] = i
			}
		}
	}
	return index
}

func parseRow(line int, row []string, index map[string]int) (ServiceRecord, error) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	price, err := parsePrice(cell("price"))
	if err != nil {
		return ServiceRecord{}, fmt.Errorf("%w: price %q", errors.ErrInvalidRow, cell("price"))
	}
	record := ServiceRecord{
		Line:        line,
		Title:       cell("title"),
		CategoryID:  cell("category_id"),
		Description: cell("description"),
		Price:       price,
	}
	record.Category = CategoryName(record.CategoryID)

	if err := auth.ValidateService(auth.ServiceRequest{
		Title:       record.Title,
		CategoryID:  record.CategoryID,
		Description: record.Description,
		Price:       record.Price,
	}); err != nil {
		return ServiceRecord{}, fmt.Errorf("%w: %v", errors.ErrInvalidRow, err)
	}
	return record, nil
}

// parsePrice accepts "1500", "1500.50", "1.500,50" and "R$ 1.500,50".
func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "R$"))
	if raw == "" {
		return 0, nil
	}
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return strconv.ParseFloat(raw, 64)
}
