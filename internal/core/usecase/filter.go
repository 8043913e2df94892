package usecase

import (
	"fmt"
	"log/slog"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
)

// FilterValidator enforces the per-type field schema on extraction results
// and checks critical-field presence. It never mutates its input.
type FilterValidator struct {
	registry ports.SchemaRegistry
	logger   *slog.Logger
}

func NewFilterValidator(registry ports.SchemaRegistry, logger *slog.Logger) *FilterValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterValidator{registry: registry, logger: logger}
}

// FilterByDocumentType returns metadata reduced to the allowed field set of
// the type. Unknown documents pass through unfiltered: with no schema to
// trust they are shown in full. For known types every vocabulary field stays
// present in the output; out-of-schema fields are emptied, never dropped.
func (fv *FilterValidator) FilterByDocumentType(metadata *domain.DocumentMetadata, docType domain.DocumentType) *domain.DocumentMetadata {
	if metadata == nil {
		return nil
	}
	if docType == domain.DocumentTypeUnknown {
		return metadata
	}

	allowed := fv.registry.FieldsFor(docType)
	filtered := metadata.Clone()
	for _, name := range domain.FieldVocabulary() {
		if _, ok := allowed[name]; ok {
			if filtered.Field(name) == nil {
				filtered.SetField(name, []string{})
			}
			continue
		}
		filtered.SetField(name, []string{})
	}
	return filtered
}

// Validate checks every critical field of the type and enumerates all the
// missing ones; it never stops at the first failure. Unknown documents skip
// validation with an informational message.
func (fv *FilterValidator) Validate(metadata *domain.DocumentMetadata, docType domain.DocumentType) domain.ValidationResult {
	if docType == domain.DocumentTypeUnknown {
		return domain.ValidationResult{
			IsValid:  true,
			Messages: []string{"validation skipped: unknown document type"},
		}
	}

	result := domain.ValidationResult{IsValid: true, Messages: []string{}}
	for _, field := range fv.registry.CriticalFieldsFor(docType) {
		if hasValue(metadata, field) {
			continue
		}
		result.IsValid = false
		result.Messages = append(result.Messages,
			fmt.Sprintf("missing critical field %q for %s", field, docType.DisplayName()))
	}
	return result
}

// Summary builds the observability view of one extraction result.
func (fv *FilterValidator) Summary(metadata *domain.DocumentMetadata, docType domain.DocumentType) domain.MetadataSummary {
	summary := domain.MetadataSummary{
		DocumentType:     docType.DisplayName(),
		TotalFields:      len(domain.FieldVocabulary()),
		FilteringApplied: docType != domain.DocumentTypeUnknown && fv.registry.HasSchema(docType),
	}
	if metadata != nil {
		summary.DocumentName = metadata.DocumentName
		summary.NonEmptyFields = metadata.NonEmptyFieldCount()
	}
	return summary
}

func hasValue(metadata *domain.DocumentMetadata, field string) bool {
	if metadata == nil {
		return false
	}
	for _, v := range metadata.Field(field) {
		if v != "" {
			return true
		}
	}
	return false
}
