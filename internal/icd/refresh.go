package icd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gramhealth/assistant/internal/domain"
)

// Chapters with no clinical guidance value; their categories are skipped
// during refresh preparation.
var excludedChapters = map[string]struct{}{
	"Extension Codes": {},
	"Supplementary section for functioning assessment": {},
	"Codes for special purposes":                       {},
}

// PrepareSummary reports what a source preparation produced.
type PrepareSummary struct {
	PreparedRows     int    `json:"prepared_rows"`
	SkippedByChapter int    `json:"skipped_by_chapter"`
	OutputCSV        string `json:"output_csv"`
}

// PrepareCSV converts a raw tab-delimited ICD-11 release export into the
// import-ready CSV consumed by Import. Chapter rows establish the
// chapter titles used for category rows that follow them.
func PrepareCSV(sourcePath, outputPath string) (*PrepareSummary, error) {
	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", sourcePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", sourcePath, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	chapterTitles := make(map[string]string)
	var rows [][]string
	skippedByChapter := 0

	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		classKind := strings.ToLower(cell(row, "ClassKind"))
		chapterNo := cell(row, "ChapterNo")
		title := cleanTitle(cell(row, "Title"))
		code := cell(row, "Code")

		if classKind == "chapter" && chapterNo != "" && title != "" {
			chapterTitles[chapterNo] = title
			continue
		}
		if classKind != "category" || code == "" || title == "" {
			continue
		}

		chapter, ok := chapterTitles[chapterNo]
		if !ok {
			if chapterNo != "" {
				chapter = "Chapter " + chapterNo
			} else {
				chapter = "ICD chapter"
			}
		}
		if _, excluded := excludedChapters[chapter]; excluded {
			skippedByChapter++
			continue
		}

		description := cell(row, "CodingNote")
		if description == "" {
			description = "ICD-11 category under " + chapter + "."
		}

		rows = append(rows, []string{
			code,
			title,
			description,
			chapter,
			"",
			boolString(strings.EqualFold(cell(row, "IsResidual"), "true")),
			boolString(strings.EqualFold(cell(row, "isLeaf"), "true")),
		})
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"code", "title", "description", "chapter", "aliases", "is_residual", "is_leaf"}); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &PrepareSummary{
		PreparedRows:     len(rows),
		SkippedByChapter: skippedByChapter,
		OutputCSV:        outputPath,
	}, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// MergeCuratedWithICD replaces all imported entries with the new set
// while preserving curated records untouched.
func MergeCuratedWithICD(existing, imported []domain.DiseaseRecord) []domain.DiseaseRecord {
	var combined []domain.DiseaseRecord
	for _, item := range existing {
		if !item.IsImported() {
			combined = append(combined, item)
		}
	}

	seen := make(map[string]int)
	for _, item := range imported {
		if item.ID == "" {
			continue
		}
		if i, dup := seen[item.ID]; dup {
			combined[i] = item
			continue
		}
		combined = append(combined, item)
		seen[item.ID] = len(combined) - 1
	}

	sort.Slice(combined, func(i, j int) bool { return combined[i].ID < combined[j].ID })
	return combined
}

// ValidateRecords checks refresh output completeness: every record must
// carry the full guidance shape, and the imported row count must not
// regress below the expected floor.
func ValidateRecords(records []domain.DiseaseRecord, minICDRows int) (total, icdRows int, err error) {
	for i := range records {
		record := &records[i]
		switch {
		case record.ID == "":
			return 0, 0, fmt.Errorf("record %d missing id", i)
		case record.Name == "" || record.Category == "":
			return 0, 0, fmt.Errorf("record %q missing name or category", record.ID)
		case record.Overview == "" || record.TreatmentSummary == "" || record.Source == "":
			return 0, 0, fmt.Errorf("record %q missing guidance fields", record.ID)
		}
		if record.IsImported() {
			icdRows++
		}
	}
	if icdRows < minICDRows {
		return 0, 0, fmt.Errorf("ICD rows too low: %d < %d", icdRows, minICDRows)
	}
	return len(records), icdRows, nil
}

// RefreshState records the provenance of the last refresh run.
type RefreshState struct {
	Release     string `json:"release"`
	TotalRows   int    `json:"total_rows"`
	ICDRows     int    `json:"icd_rows"`
	RefreshedAt string `json:"refreshed_at"`
}

// WriteRefreshState persists the refresh provenance next to the dataset.
func WriteRefreshState(path, release string, totalRows, icdRows int) error {
	state := RefreshState{
		Release:     release,
		TotalRows:   totalRows,
		ICDRows:     icdRows,
		RefreshedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
