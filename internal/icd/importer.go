// Package icd converts ICD classification exports into disease records
// usable by the lookup engine. Imported entries carry templated guidance
// chosen by chapter/title keywords; the low-signal phrasing in those
// templates is what keeps them behind curated entries at ranking time.
package icd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gramhealth/assistant/internal/domain"
)

// SourceRecord is one row of an ICD export.
type SourceRecord struct {
	Code        string
	Title       string
	Description string
	Chapter     string
	Aliases     []string
}

// Columns names the input columns holding each field. AliasesColumn may
// be empty.
type Columns struct {
	Code        string
	Title       string
	Description string
	Chapter     string
	Aliases     string
}

// DefaultColumns matches the import-ready CSV produced by PrepareCSV.
func DefaultColumns() Columns {
	return Columns{
		Code:        "code",
		Title:       "title",
		Description: "description",
		Chapter:     "chapter",
		Aliases:     "aliases",
	}
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	leadingDashes     = regexp.MustCompile(`^(?:-\s*)+`)
	nonSlugChars      = regexp.MustCompile(`[^a-z0-9]+`)
	aliasSeparators   = regexp.MustCompile(`[|;,]`)
)

func normalize(value string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(value), " ")
}

// cleanTitle strips the leading hierarchy dashes ICD exports use for
// nested categories.
func cleanTitle(value string) string {
	cleaned := normalize(value)
	cleaned = leadingDashes.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
}

func slugifyCode(code string) string {
	base := strings.ToLower(strings.TrimSpace(code))
	base = nonSlugChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return "unknown"
	}
	return base
}

func splitAliases(raw string) []string {
	if raw == "" {
		return nil
	}
	var deduped []string
	seen := make(map[string]struct{})
	for _, value := range aliasSeparators.Split(raw, -1) {
		cleaned := normalize(value)
		key := strings.ToLower(cleaned)
		if cleaned == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		deduped = append(deduped, cleaned)
		seen[key] = struct{}{}
	}
	return deduped
}

// LoadRows reads ICD rows from a CSV or JSON export. Rows without a code
// or title are skipped.
func LoadRows(inputPath string, cols Columns) ([]SourceRecord, error) {
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".csv":
		return loadCSVRows(inputPath, cols)
	case ".json":
		return loadJSONRows(inputPath, cols)
	default:
		return nil, fmt.Errorf("unsupported input format %q, use .csv or .json", filepath.Ext(inputPath))
	}
}

func loadCSVRows(inputPath string, cols Columns) ([]SourceRecord, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", inputPath, err)
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
		return row[i]
	}

	var rows []SourceRecord
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		code := normalize(cell(row, cols.Code))
		title := cleanTitle(cell(row, cols.Title))
		if code == "" || title == "" {
			continue
		}
		var aliases []string
		if cols.Aliases != "" {
			aliases = splitAliases(cell(row, cols.Aliases))
		}
		rows = append(rows, SourceRecord{
			Code:        code,
			Title:       title,
			Description: normalize(cell(row, cols.Description)),
			Chapter:     normalize(cell(row, cols.Chapter)),
			Aliases:     aliases,
		})
	}
	return rows, nil
}

func loadJSONRows(inputPath string, cols Columns) ([]SourceRecord, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}
	var payload []map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: JSON input must be a list of row objects: %w", inputPath, err)
	}

	field := func(row map[string]any, column string) string {
		if column == "" {
			return ""
		}
		value, _ := row[column].(string)
		return value
	}

	var rows []SourceRecord
	for _, raw := range payload {
		code := normalize(field(raw, cols.Code))
		title := cleanTitle(field(raw, cols.Title))
		if code == "" || title == "" {
			continue
		}
		rows = append(rows, SourceRecord{
			Code:        code,
			Title:       title,
			Description: normalize(field(raw, cols.Description)),
			Chapter:     normalize(field(raw, cols.Chapter)),
			Aliases:     splitAliases(field(raw, cols.Aliases)),
		})
	}
	return rows, nil
}

// Template holds the guidance text applied to imported records whose
// title/description/chapter mention one of its keywords.
type Template struct {
	Keywords         []string `json:"keywords,omitempty"`
	Category         string   `json:"category"`
	TreatmentSummary string   `json:"treatment_summary"`
	MedicineGuidance []string `json:"medicine_guidance"`
	HomeCare         []string `json:"home_care"`
	RedFlags         []string `json:"red_flags"`
}

// TemplateSet is the template file: keyword rules tried in order, then a
// default.
type TemplateSet struct {
	Rules   []Template `json:"rules"`
	Default *Template  `json:"default"`
}

// LoadTemplates reads and validates the template file.
func LoadTemplates(path string) (*TemplateSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	var set TemplateSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	if set.Default == nil || len(set.Rules) == 0 {
		return nil, fmt.Errorf("template file %s must include 'rules' and 'default'", path)
	}
	return &set, nil
}

func pickTemplate(record SourceRecord, set *TemplateSet) Template {
	blob := strings.ToLower(record.Title + " " + record.Description + " " + record.Chapter)
	for _, rule := range set.Rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(blob, strings.ToLower(keyword)) {
				return rule
			}
		}
	}
	return *set.Default
}

// BuildRecord converts one ICD row into a disease record using the
// matching template.
func BuildRecord(record SourceRecord, set *TemplateSet, sourceLabel string) domain.DiseaseRecord {
	template := pickTemplate(record, set)

	overview := record.Description
	if overview == "" {
		overview = record.Title + " is a recognized condition listed in ICD classification systems."
	}

	var aliases []string
	seen := make(map[string]struct{})
	titleKey := strings.ToLower(record.Title)
	for _, alias := range record.Aliases {
		key := strings.ToLower(alias)
		if key == titleKey {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		aliases = append(aliases, alias)
		seen[key] = struct{}{}
	}

	return domain.DiseaseRecord{
		ID:               domain.ICDIDPrefix + slugifyCode(record.Code),
		Name:             record.Title,
		Aliases:          aliases,
		Category:         template.Category,
		Overview:         overview,
		TreatmentSummary: template.TreatmentSummary,
		MedicineGuidance: template.MedicineGuidance,
		HomeCare:         template.HomeCare,
		RedFlags:         template.RedFlags,
		Source:           sourceLabel + " (" + record.Code + ")",
	}
}

// ImportOptions configures one import run.
type ImportOptions struct {
	InputPath     string
	OutputPath    string
	TemplatePath  string
	MergeExisting bool
	Limit         int
	SourceLabel   string
	Columns       Columns
}

// ImportSummary reports what an import run produced.
type ImportSummary struct {
	InputRows   int    `json:"input_rows"`
	WrittenRows int    `json:"written_rows"`
	OutputPath  string `json:"output_path"`
}

// Import converts an ICD export into disease records and writes the
// output dataset, optionally merging with an existing file by record ID.
func Import(opts ImportOptions) (*ImportSummary, error) {
	rows, err := LoadRows(opts.InputPath, opts.Columns)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	templates, err := LoadTemplates(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	generated := make([]domain.DiseaseRecord, 0, len(rows))
	for _, row := range rows {
		generated = append(generated, BuildRecord(row, templates, opts.SourceLabel))
	}

	final := generated
	if opts.MergeExisting {
		if existing, err := loadRecordList(opts.OutputPath); err == nil {
			byID := make(map[string]domain.DiseaseRecord, len(existing)+len(generated))
			order := make([]string, 0, len(existing)+len(generated))
			for _, item := range existing {
				if _, dup := byID[item.ID]; !dup {
					order = append(order, item.ID)
				}
				byID[item.ID] = item
			}
			for _, item := range generated {
				if _, dup := byID[item.ID]; !dup {
					order = append(order, item.ID)
				}
				byID[item.ID] = item
			}
			final = make([]domain.DiseaseRecord, 0, len(order))
			for _, id := range order {
				final = append(final, byID[id])
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	sort.Slice(final, func(i, j int) bool { return final[i].ID < final[j].ID })

	data, err := json.MarshalIndent(final, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", opts.OutputPath, err)
	}

	return &ImportSummary{
		InputRows:   len(rows),
		WrittenRows: len(final),
		OutputPath:  opts.OutputPath,
	}, nil
}

func loadRecordList(path string) ([]domain.DiseaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.DiseaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("existing output file %s must be a list: %w", path, err)
	}
	return records, nil
}
