package usecase

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
)

// MetadataService is the text-to-metadata pipeline: classify the document by
// filename, run extraction, apply the type schema, validate. It always
// returns a well-formed record; validation failures are logged, not raised.
type MetadataService struct {
	detector  ports.TypeDetector
	extractor ports.FieldExtractor
	filter    *FilterValidator
	logger    *slog.Logger
}

func NewMetadataService(
	detector ports.TypeDetector,
	extractor ports.FieldExtractor,
	filter *FilterValidator,
	logger *slog.Logger,
) *MetadataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataService{
		detector:  detector,
		extractor: extractor,
		filter:    filter,
		logger:    logger,
	}
}

// ExtractMetadata runs the full pipeline over raw OCR text.
func (s *MetadataService) ExtractMetadata(rawText, fileName string) *domain.DocumentMetadata {
	docType := s.detector.Detect(fileName)

	metadata := &domain.DocumentMetadata{
		DocumentName: DeriveDocumentName(fileName),
		DocumentType: docType.DisplayName(),
		RawText:      rawText,
	}
	for _, name := range domain.FieldVocabulary() {
		metadata.SetField(name, []string{})
	}
	metadata.ApplyFieldSet(s.extractor.Extract(rawText, docType))

	filtered := s.filter.FilterByDocumentType(metadata, docType)

	validation := s.filter.Validate(filtered, docType)
	if !validation.IsValid {
		s.logger.Warn("metadata.validation_failed",
			"file_name", fileName,
			"document_type", docType.String(),
			"messages", strings.Join(validation.Messages, "; "),
		)
	}

	s.logger.Info("metadata.extracted",
		"file_name", fileName,
		"document_type", docType.String(),
		"non_empty_fields", filtered.NonEmptyFieldCount(),
	)
	return filtered
}

// Validate re-runs critical-field validation for a metadata record.
func (s *MetadataService) Validate(metadata *domain.DocumentMetadata, docType domain.DocumentType) domain.ValidationResult {
	return s.filter.Validate(metadata, docType)
}

// Summary exposes the observability view; it is not bundled into
// ExtractMetadata results.
func (s *MetadataService) Summary(metadata *domain.DocumentMetadata, docType domain.DocumentType) domain.MetadataSummary {
	return s.filter.Summary(metadata, docType)
}

// readableNames maps normalized filename prefixes to intake display names.
// First matching prefix wins; order goes from specific to broad.
var readableNames = []struct {
	prefix string
	name   string
}{
	{"formulaireagrege", "Formulaire d'Enrôlement Agrégé OM"},
	{"formulaire", "Formulaire d'Enrôlement OM"},
	{"registrecommerce", "Registre de Commerce"},
	{"rccm", "Registre de Commerce"},
	{"cartecontribuable", "Carte de Contribuable"},
	{"attestationfiscale", "Attestation Fiscale"},
	{"attestation", "Attestation Fiscale"},
	{"recepisse", "Récépissé CNI"},
	{"cni", "Carte Nationale d'Identité"},
	{"niu", "Carte de Contribuable"},
}

// DeriveDocumentName turns an upload filename into a readable document name,
// falling back to the cleaned filename when no prefix substitution applies.
func DeriveDocumentName(fileName string) string {
	trimmed := strings.TrimSpace(fileName)
	if trimmed == "" {
		return "Document"
	}

	base := strings.TrimSuffix(trimmed, filepath.Ext(trimmed))
	normalized := strings.ToLower(base)
	normalized = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(normalized)

	for _, entry := range readableNames {
		if strings.HasPrefix(normalized, entry.prefix) {
			return entry.name
		}
	}

	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(base)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "Document"
	}
	return cleaned
}
