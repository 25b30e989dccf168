// Package dataset loads the static knowledge datasets at startup. Any
// malformed entry is an error; the process must not start on a bad
// dataset.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gramhealth/assistant/internal/domain"
)

// LoadDiseases reads and validates the disease knowledge base.
func LoadDiseases(path string) ([]domain.DiseaseRecord, error) {
	var records []domain.DiseaseRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}

	for i := range records {
		record := &records[i]
		if record.ID == "" || record.Name == "" || record.Category == "" {
			return nil, fmt.Errorf("disease dataset %s: record %d missing id, name or category", path, i)
		}
		if !record.IsCurated() && !record.IsImported() {
			return nil, fmt.Errorf("disease dataset %s: record %q has unknown id prefix", path, record.ID)
		}
		if record.Overview == "" || record.TreatmentSummary == "" {
			return nil, fmt.Errorf("disease dataset %s: record %q missing overview or treatment summary", path, record.ID)
		}
		if record.Source == "" {
			record.Source = "Verified medical sources"
		}
	}
	return records, nil
}

// LoadKnowledge reads and validates knowledge documents from one or more
// files, concatenated in file order.
func LoadKnowledge(paths ...string) ([]domain.KnowledgeDocument, error) {
	var documents []domain.KnowledgeDocument
	for _, path := range paths {
		var batch []domain.KnowledgeDocument
		if err := readJSON(path, &batch); err != nil {
			return nil, err
		}
		for i := range batch {
			doc := &batch[i]
			if doc.ID == "" || doc.Title == "" || doc.Category == "" || doc.Content == "" || doc.Source == "" {
				return nil, fmt.Errorf("knowledge dataset %s: document %d is incomplete", path, i)
			}
			if doc.Language == "" {
				doc.Language = "en"
			}
		}
		documents = append(documents, batch...)
	}
	return documents, nil
}

// LoadSchemes reads and validates the scheme catalog. Catalog order is
// significant: the first two schemes are the generic fallback.
func LoadSchemes(path string) ([]domain.Scheme, error) {
	var schemes []domain.Scheme
	if err := readJSON(path, &schemes); err != nil {
		return nil, err
	}

	for i := range schemes {
		scheme := &schemes[i]
		if scheme.Name == "" || len(scheme.Keywords) == 0 {
			return nil, fmt.Errorf("scheme dataset %s: scheme %d missing name or keywords", path, i)
		}
		if strings.TrimSpace(scheme.Summaries["en"]) == "" {
			return nil, fmt.Errorf("scheme dataset %s: scheme %q missing English summary", path, scheme.Name)
		}
	}
	return schemes, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return nil
}
