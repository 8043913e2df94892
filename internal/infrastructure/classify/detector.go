package classify

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

// typePatterns binds a document type to the normalized filename fragments
// that identify it. Table order is the tie-break: the first type with a
// matching fragment wins, so broader fragments belong further down.
type typePatterns struct {
	docType  domain.DocumentType
	patterns []string
}

var detectionTable = []typePatterns{
	{domain.DocumentTypeFormulaireAgregeOM, []string{"formulaireagrege", "formulaireom", "agregeom", "enrolement", "enrollement"}},
	{domain.DocumentTypeCniOrRecipice, []string{"cninational", "recepisse", "recipice", "cartenationale", "cni"}},
	{domain.DocumentTypeRegistreCommerce, []string{"registrecommerce", "registreducommerce", "rccm", "registre"}},
	{domain.DocumentTypeCarteContribuable, []string{"cartecontribuable", "contribuable", "niu"}},
	{domain.DocumentTypeAttestationFiscale, []string{"attestationfiscale", "attestationdeconformite", "attestation", "fiscale"}},
}

// Detector classifies documents by filename. Detection is deterministic:
// two filenames that normalize to the same string always classify the same.
type Detector struct {
	logger *slog.Logger
}

func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Detect maps a filename to a document type. A blank filename or the absence
// of any pattern match is not an error and resolves to Unknown.
func (d *Detector) Detect(fileName string) domain.DocumentType {
	normalized := normalizeFileName(fileName)
	if normalized == "" {
		d.logger.Debug("doctype.detect.blank_filename")
		return domain.DocumentTypeUnknown
	}

	for _, entry := range detectionTable {
		for _, pattern := range entry.patterns {
			if strings.Contains(normalized, pattern) {
				d.logger.Debug("doctype.detect.match",
					"file_name", fileName,
					"pattern", pattern,
					"document_type", entry.docType.String(),
				)
				return entry.docType
			}
		}
	}

	d.logger.Debug("doctype.detect.no_match", "file_name", fileName)
	return domain.DocumentTypeUnknown
}

// normalizeFileName strips the extension, lowercases, and removes spaces,
// underscores, hyphens and dots so patterns match regardless of the naming
// convention the uploader used.
func normalizeFileName(fileName string) string {
	trimmed := strings.TrimSpace(fileName)
	if trimmed == "" {
		return ""
	}
	base := strings.TrimSuffix(trimmed, filepath.Ext(trimmed))
	base = strings.ToLower(base)
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")
	return replacer.Replace(base)
}
