package category

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format, use .csv or .xlsx")

// headerAliases maps lower-cased column headers to record fields
var headerAliases = map[string]string{
	"name":             "name",
	"slug":             "slug",
	"description":      "description",
	"parentcategory":   "parentCategory",
	"parent_category":  "parentCategory",
	"parent":           "parentCategory",
	"level":            "level",
	"isactive":         "isActive",
	"is_active":        "isActive",
	"active":           "isActive",
	"sortorder":        "sortOrder",
	"sort_order":       "sortOrder",
	"image":            "image",
	"icon":             "icon",
	"metatitle":        "metaTitle",
	"meta_title":       "metaTitle",
	"metadescription":  "metaDescription",
	"meta_description": "metaDescription",
	"keywords":         "keywords",
}

// ParseFile reads import records from a CSV or XLSX upload
func ParseFile(r io.Reader, filename string) ([]RawCategoryRecord, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func ParseCSV(r io.Reader) ([]RawCategoryRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rowsToRecords(rows)
}

func ParseXLSX(r io.Reader) ([]RawCategoryRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rowsToRecords(rows)
}

// rowsToRecords treats the first row as headers. Unknown columns are ignored
// and blank rows are dropped. Row numbers match the sheet, header included.
func rowsToRecords(rows [][]string) ([]RawCategoryRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	columns := make(map[int]string, len(rows[0]))
	hasName := false
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := headerAliases[key]; ok {
			columns[i] = field
			hasName = hasName || field == "name"
		}
	}
	if !hasName {
		return nil, fmt.Errorf("missing required column: name")
	}

	records := make([]RawCategoryRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := RawCategoryRecord{Row: n + 2}
		var problems []string
		for i, cell := range row {
			field, ok := columns[i]
			if !ok {
				continue
			}
			cell = strings.TrimSpace(cell)
			if err := setField(&rec, field, cell); err != nil {
				problems = append(problems, err.Error())
			}
		}
		rec.Invalid = strings.Join(problems, "; ")
		records = append(records, rec)
	}
	return records, nil
}

func setField(rec *RawCategoryRecord, field, cell string) error {
	switch field {
	case "name":
		rec.Name = cell
	case "slug":
		rec.Slug = cell
	case "description":
		rec.Description = cell
	case "parentCategory":
		rec.ParentCategory = cell
	case "image":
		rec.Image = cell
	case "icon":
		rec.Icon = cell
	case "metaTitle":
		rec.MetaTitle = cell
	case "metaDescription":
		rec.MetaDescription = cell
	case "keywords":
		if cell != "" {
			rec.Keywords = cleanKeywords(strings.Split(cell, ","))
		}
	case "level", "sortOrder":
		if cell == "" {
			return nil
		}
		v, err := strconv.Atoi(cell)
		if err != nil {
			return fmt.Errorf("%s must be a whole number, got %q", field, cell)
		}
		if field == "level" {
			rec.Level = &v
		} else {
			rec.SortOrder = &v
		}
	case "isActive":
		if cell == "" {
			return nil
		}
		v, err := parseBool(cell)
		if err != nil {
			return err
		}
		rec.IsActive = &v
	}
	return nil
}

func parseBool(cell string) (bool, error) {
	switch strings.ToLower(cell) {
	case "1", "true", "yes", "y", "active":
		return true, nil
	case "0", "false", "no", "n", "inactive":
		return false, nil
	}
	return false, fmt.Errorf("isActive must be true or false, got %q", cell)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
