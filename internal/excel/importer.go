// Package excel loads drill collections from Excel or CSV files. It
// implements the drill store's Loader interface.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/drillbot/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	CategoryColumn string // Column with the category
	QuestionColumn string // Column with the question
	AnswerColumn   string // Column with the answer
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		CategoryColumn: "A",
		QuestionColumn: "B",
		AnswerColumn:   "C",
		SheetName:      "Sheet1",
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Loaded         int
	Skipped        int
	Errors         []string
}

// Importer loads drills from the configured file.
type Importer struct {
	Config ImportConfig

	// LastResult holds the outcome of the most recent Load call.
	LastResult ImportResult
}

// New creates an importer for the given configuration.
func New(cfg ImportConfig) *Importer {
	return &Importer{Config: cfg}
}

// Load reads the configured file and returns the drills it contains.
// CSV and Excel are distinguished by file extension.
func (im *Importer) Load() ([]models.Drill, error) {
	im.LastResult = ImportResult{}

	ext := strings.ToLower(filepath.Ext(im.Config.FilePath))
	if ext == ".csv" {
		return im.loadCSV()
	}
	return im.loadExcel()
}

// loadExcel reads drills from an Excel sheet.
func (im *Importer) loadExcel() ([]models.Drill, error) {
	f, err := excelize.OpenFile(im.Config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(im.Config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	var out []models.Drill
	for i, row := range rows {
		// Skip header rows
		if i < im.Config.StartRow-1 {
			continue
		}
		im.LastResult.TotalProcessed++

		category := cellAt(row, im.Config.CategoryColumn)
		question := cellAt(row, im.Config.QuestionColumn)
		answer := cellAt(row, im.Config.AnswerColumn)

		d, err := buildDrill(category, question, answer)
		if err != nil {
			im.LastResult.Skipped++
			im.LastResult.Errors = append(im.LastResult.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		out = append(out, d)
		im.LastResult.Loaded++
	}
	return out, nil
}

// loadCSV reads drills from a CSV file. A row whose first cell is the
// only non-empty one is treated as a category section header applying to
// the rows below it, mirroring the Excel sheet layout people actually
// export.
func (im *Importer) loadCSV() ([]models.Drill, error) {
	file, err := os.Open(im.Config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var out []models.Drill
	currentCategory := ""
	rowNum := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++

		// Skip header rows
		if rowNum < im.Config.StartRow {
			continue
		}

		// Section header row: only the first cell is filled. Rows below
		// it are question,answer pairs in that category.
		if header, ok := sectionHeader(row); ok {
			currentCategory = header
			continue
		}

		im.LastResult.TotalProcessed++

		var category, question, answer string
		if currentCategory != "" {
			category = currentCategory
			question = cellAt(row, "A")
			answer = cellAt(row, "B")
		} else {
			category = cellAt(row, im.Config.CategoryColumn)
			question = cellAt(row, im.Config.QuestionColumn)
			answer = cellAt(row, im.Config.AnswerColumn)
		}

		d, err := buildDrill(category, question, answer)
		if err != nil {
			im.LastResult.Skipped++
			im.LastResult.Errors = append(im.LastResult.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		out = append(out, d)
		im.LastResult.Loaded++
	}
	return out, nil
}

// buildDrill validates and assembles one drill.
func buildDrill(category, question, answer string) (models.Drill, error) {
	category = strings.TrimSpace(category)
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	if question == "" {
		return models.Drill{}, fmt.Errorf("question cannot be empty")
	}
	if answer == "" {
		return models.Drill{}, fmt.Errorf("answer cannot be empty")
	}
	if category == "" {
		category = "General"
	}
	return models.Drill{Category: category, Question: question, Answer: answer}, nil
}

// sectionHeader reports whether the row is a category section header
// (first cell filled, the rest empty).
func sectionHeader(row []string) (string, bool) {
	if len(row) < 2 {
		return "", false
	}
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" {
		return "", false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return "", false
		}
	}
	return first, true
}

// cellAt returns the trimmed cell value for an Excel column letter.
func cellAt(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter to a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
