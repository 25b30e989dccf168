package icd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gramhealth/assistant/internal/domain"
)

func TestPrepareCSV(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "release.tsv")
	outputPath := filepath.Join(dir, "import_ready.csv")

	source := strings.Join([]string{
		"\ufeffChapterNo\tClassKind\tCode\tTitle\tCodingNote\tIsResidual\tisLeaf",
		"01\tchapter\t\tCertain infectious or parasitic diseases\t\t\t",
		"01\tcategory\t1A00\tCholera\tAcute watery diarrhoea\tfalse\ttrue",
		"01\tcategory\t1A0Z\t- Unspecified cholera\t\ttrue\ttrue",
		"X\tchapter\t\tExtension Codes\t\t\t",
		"X\tcategory\tXA00\tSeverity scale\t\tfalse\ttrue",
		"01\tblock\t\tGastroenteritis block\t\t\t",
	}, "\n")
	if err := os.WriteFile(sourcePath, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	summary, err := PrepareCSV(sourcePath, outputPath)
	if err != nil {
		t.Fatalf("PrepareCSV: %v", err)
	}
	if summary.PreparedRows != 2 {
		t.Errorf("expected 2 prepared rows, got %d", summary.PreparedRows)
	}
	if summary.SkippedByChapter != 1 {
		t.Errorf("expected 1 row skipped by chapter, got %d", summary.SkippedByChapter)
	}

	rows, err := LoadRows(outputPath, DefaultColumns())
	if err != nil {
		t.Fatalf("LoadRows on prepared output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Description != "Acute watery diarrhoea" {
		t.Errorf("coding note should be the description, got %q", rows[0].Description)
	}
	if rows[1].Title != "Unspecified cholera" {
		t.Errorf("hierarchy dashes should be stripped, got %q", rows[1].Title)
	}
	if !strings.Contains(rows[1].Description, "Certain infectious or parasitic diseases") {
		t.Errorf("fallback description should name the chapter, got %q", rows[1].Description)
	}
}

func TestMergeCuratedWithICD(t *testing.T) {
	existing := []domain.DiseaseRecord{
		{ID: "dis-malaria", Name: "Malaria"},
		{ID: "icd-old", Name: "Stale import"},
	}
	imported := []domain.DiseaseRecord{
		{ID: "icd-1a00", Name: "Cholera"},
		{ID: "icd-1a00", Name: "Cholera updated"},
		{ID: "icd-2c60", Name: "Malignant neoplasm of breast"},
	}

	merged := MergeCuratedWithICD(existing, imported)

	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}
	ids := make(map[string]string)
	for _, record := range merged {
		ids[record.ID] = record.Name
	}
	if _, kept := ids["icd-old"]; kept {
		t.Error("stale imports should be replaced")
	}
	if ids["dis-malaria"] != "Malaria" {
		t.Error("curated records should be preserved untouched")
	}
	if ids["icd-1a00"] != "Cholera updated" {
		t.Errorf("duplicate import should keep the last version, got %q", ids["icd-1a00"])
	}
	for i := 1; i < len(merged); i++ {
		if merged[i-1].ID > merged[i].ID {
			t.Errorf("merged records not sorted: %s before %s", merged[i-1].ID, merged[i].ID)
		}
	}
}

func TestValidateRecords(t *testing.T) {
	good := []domain.DiseaseRecord{
		{ID: "dis-malaria", Name: "Malaria", Category: "infectious", Overview: "o", TreatmentSummary: "t", Source: "s"},
		{ID: "icd-1a00", Name: "Cholera", Category: "infectious", Overview: "o", TreatmentSummary: "t", Source: "s"},
	}

	total, icdRows, err := ValidateRecords(good, 1)
	if err != nil {
		t.Fatalf("ValidateRecords: %v", err)
	}
	if total != 2 || icdRows != 1 {
		t.Errorf("expected total 2 and 1 ICD row, got %d and %d", total, icdRows)
	}

	if _, _, err := ValidateRecords(good, 5); err == nil {
		t.Error("expected error when ICD rows regress below the floor")
	}

	bad := []domain.DiseaseRecord{{ID: "dis-x", Name: "X", Category: "c", Overview: "o"}}
	if _, _, err := ValidateRecords(bad, 0); err == nil {
		t.Error("expected error for missing guidance fields")
	}
}

func TestWriteRefreshState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := WriteRefreshState(path, "2025-01", 9000, 8000); err != nil {
		t.Fatalf("WriteRefreshState: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	var state RefreshState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("parse state: %v", err)
	}
	if state.Release != "2025-01" || state.TotalRows != 9000 || state.ICDRows != 8000 {
		t.Errorf("unexpected state %+v", state)
	}
	if state.RefreshedAt == "" {
		t.Error("expected a refresh timestamp")
	}
}
