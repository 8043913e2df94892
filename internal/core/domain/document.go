package domain

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// DocumentType is the closed set of business document categories the
// pipeline knows how to extract metadata from.
type DocumentType int

const (
	DocumentTypeUnknown DocumentType = iota
	DocumentTypeFormulaireAgregeOM
	DocumentTypeCniOrRecipice
	DocumentTypeRegistreCommerce
	DocumentTypeCarteContribuable
	DocumentTypeAttestationFiscale
)

func (t DocumentType) String() string {
	switch t {
	case DocumentTypeFormulaireAgregeOM:
		return "formulaire_agrege_om"
	case DocumentTypeCniOrRecipice:
		return "cni_or_recipice"
	case DocumentTypeRegistreCommerce:
		return "registre_commerce"
	case DocumentTypeCarteContribuable:
		return "carte_contribuable"
	case DocumentTypeAttestationFiscale:
		return "attestation_fiscale"
	default:
		return "unknown"
	}
}

// DisplayName returns the human-readable label for the type. Unknown has its
// own label; anything unmapped falls back to a generic one.
func (t DocumentType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return "Document d'entreprise"
}

var displayNames = map[DocumentType]string{
	DocumentTypeUnknown:            "Document non identifié",
	DocumentTypeFormulaireAgregeOM: "Formulaire d'enrôlement agrégé OM",
	DocumentTypeCniOrRecipice:      "CNI ou récépissé",
	DocumentTypeRegistreCommerce:   "Registre de commerce",
	DocumentTypeCarteContribuable:  "Carte de contribuable valide",
	DocumentTypeAttestationFiscale: "Attestation fiscale",
}

// AllDocumentTypes lists every known type, Unknown excluded.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeFormulaireAgregeOM,
		DocumentTypeCniOrRecipice,
		DocumentTypeRegistreCommerce,
		DocumentTypeCarteContribuable,
		DocumentTypeAttestationFiscale,
	}
}

// Document is the intake record for one uploaded file. Extraction results are
// not persisted; this record only tracks the stored source bytes through the
// queue.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	IsPDF       bool           `json:"is_pdf"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ValidationResult reports presence of the critical fields for a document
// type. Messages enumerate every missing critical field, not just the first.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Messages []string `json:"messages"`
}

// MetadataSummary is an observability view over one extraction result. It is
// never used for routing or validation decisions.
type MetadataSummary struct {
	DocumentName     string `json:"document_name"`
	DocumentType     string `json:"document_type"`
	NonEmptyFields   int    `json:"non_empty_fields"`
	TotalFields      int    `json:"total_fields"`
	FilteringApplied bool   `json:"filtering_applied"`
}

// DocumentResult is the terminal record for one processed document, published
// to the results subject by the worker and returned per file by the batch
// endpoint.
type DocumentResult struct {
	DocumentID        string            `json:"document_id,omitempty"`
	FileName          string            `json:"file_name"`
	Metadata          *DocumentMetadata `json:"metadata,omitempty"`
	Validation        ValidationResult  `json:"validation"`
	RecommendedEngine string            `json:"recommended_engine,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// OcrErrorPrefix marks backend output that is an error report rather than
// recognized text. Downstream stages treat such text as "no usable text".
const OcrErrorPrefix = "[OCR_ERROR]"

// NoTextMessage is stored in RawText when every OCR attempt came back empty.
const NoTextMessage = "OCR process yielded no text"

// IsUsableText reports whether OCR output carries recognizable content.
func IsUsableText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return !strings.HasPrefix(trimmed, OcrErrorPrefix)
}
