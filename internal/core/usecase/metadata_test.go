package usecase

import (
	"testing"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

func newMetadataService(detector *fakeDetector, extractor *fakeExtractor, registry *fakeRegistry) *MetadataService {
	return NewMetadataService(
		detector,
		extractor,
		NewFilterValidator(registry, testLogger()),
		testLogger(),
	)
}

func TestExtractMetadataPipeline(t *testing.T) {
	detector := &fakeDetector{result: domain.DocumentTypeRegistreCommerce}
	extractor := &fakeExtractor{fields: domain.FieldSet{
		domain.FieldRccmNumbers:   {"RC/YAO/2020/B/1234"},
		domain.FieldBusinessNames: {"ETS KAMGA ET FILS"},
		domain.FieldNiuNumbers:    {"P123456789012A"},
	}}
	registry := &fakeRegistry{
		fields:   []string{domain.FieldRccmNumbers, domain.FieldBusinessNames},
		critical: []string{domain.FieldRccmNumbers, domain.FieldBusinessNames},
	}
	svc := newMetadataService(detector, extractor, registry)

	metadata := svc.ExtractMetadata("REGISTRE DE COMMERCE\nRC/YAO/2020/B/1234", "registre_commerce_kamga.pdf")

	if extractor.lastType != domain.DocumentTypeRegistreCommerce {
		t.Errorf("extractor ran with type %v, want registre_commerce", extractor.lastType)
	}
	if metadata.DocumentType != domain.DocumentTypeRegistreCommerce.DisplayName() {
		t.Errorf("DocumentType = %q, want display name", metadata.DocumentType)
	}
	if got := metadata.Field(domain.FieldRccmNumbers); len(got) != 1 || got[0] != "RC/YAO/2020/B/1234" {
		t.Errorf("rccm_numbers = %v", got)
	}
	if got := metadata.Field(domain.FieldNiuNumbers); len(got) != 0 {
		t.Errorf("niu_numbers = %v, want emptied by schema filter", got)
	}
	for _, name := range domain.FieldVocabulary() {
		if metadata.Field(name) == nil {
			t.Errorf("field %q is nil, want present", name)
		}
	}
	if metadata.RawText == "" {
		t.Error("RawText should carry the OCR text")
	}
}

func TestExtractMetadataUnknownKeepsEverything(t *testing.T) {
	detector := &fakeDetector{result: domain.DocumentTypeUnknown}
	extractor := &fakeExtractor{fields: domain.FieldSet{
		domain.FieldNiuNumbers:     {"P123456789012A"},
		domain.FieldEmailAddresses: {"contact@entreprise.cm"},
	}}
	svc := newMetadataService(detector, extractor, &fakeRegistry{})

	metadata := svc.ExtractMetadata("some text", "scan_0001.jpg")

	if got := metadata.Field(domain.FieldNiuNumbers); len(got) != 1 {
		t.Errorf("niu_numbers = %v, want kept for unknown type", got)
	}
	if got := metadata.Field(domain.FieldEmailAddresses); len(got) != 1 {
		t.Errorf("email_addresses = %v, want kept for unknown type", got)
	}
	if metadata.DocumentType != domain.DocumentTypeUnknown.DisplayName() {
		t.Errorf("DocumentType = %q", metadata.DocumentType)
	}
}

func TestDeriveDocumentName(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"registre_commerce_kamga.pdf", "Registre de Commerce"},
		{"RCCM-scan.jpg", "Registre de Commerce"},
		{"carte_contribuable_2021.png", "Carte de Contribuable"},
		{"niu_scan.pdf", "Carte de Contribuable"},
		{"attestation_fiscale.pdf", "Attestation Fiscale"},
		{"formulaire_agrege_om_v2.pdf", "Formulaire d'Enrôlement Agrégé OM"},
		{"formulaire_om.pdf", "Formulaire d'Enrôlement OM"},
		{"CNI_recto.jpg", "Carte Nationale d'Identité"},
		{"recepisse_cni.jpg", "Récépissé CNI"},
		{"photo_magasin.jpg", "photo magasin"},
		{"", "Document"},
		{"   ", "Document"},
	}
	for _, tc := range tests {
		if got := DeriveDocumentName(tc.fileName); got != tc.want {
			t.Errorf("DeriveDocumentName(%q) = %q, want %q", tc.fileName, got, tc.want)
		}
	}
}

func TestValidateDelegates(t *testing.T) {
	registry := &fakeRegistry{critical: []string{domain.FieldNiuNumbers}}
	svc := newMetadataService(&fakeDetector{}, &fakeExtractor{}, registry)

	result := svc.Validate(&domain.DocumentMetadata{}, domain.DocumentTypeCarteContribuable)
	if result.IsValid {
		t.Error("expected missing critical field to fail validation")
	}
}
