// Package schema holds the per-document-type field configuration: which
// vocabulary fields are in scope for a type and which of them are critical.
// The tables are parsed once from the embedded YAML document and never
// mutated afterwards.
package schema

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

//go:embed schema.yaml
var rawSchema []byte

type schemaFile struct {
	DocumentTypes []schemaEntry `yaml:"document_types"`
}

type schemaEntry struct {
	Type     string   `yaml:"type"`
	Fields   []string `yaml:"fields"`
	Critical []string `yaml:"critical"`
}

type typeSchema struct {
	fields   map[string]struct{}
	critical []string
}

// Registry answers field-schema questions per document type. Construct once
// at process start and share by read-only reference.
type Registry struct {
	byType map[domain.DocumentType]typeSchema
}

// NewRegistry parses the embedded schema document. Field names outside the
// global vocabulary are configuration mistakes and fail construction.
func NewRegistry() (*Registry, error) {
	var file schemaFile
	if err := yaml.Unmarshal(rawSchema, &file); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	if len(file.DocumentTypes) == 0 {
		return nil, fmt.Errorf("schema document defines no document types")
	}

	names := make(map[string]domain.DocumentType, len(domain.AllDocumentTypes()))
	for _, t := range domain.AllDocumentTypes() {
		names[t.String()] = t
	}

	byType := make(map[domain.DocumentType]typeSchema, len(file.DocumentTypes))
	for _, entry := range file.DocumentTypes {
		docType, ok := names[entry.Type]
		if !ok {
			return nil, fmt.Errorf("schema document references unknown type %q", entry.Type)
		}
		if _, dup := byType[docType]; dup {
			return nil, fmt.Errorf("schema document defines type %q twice", entry.Type)
		}

		fields := make(map[string]struct{}, len(entry.Fields))
		for _, name := range entry.Fields {
			if !domain.IsVocabularyField(name) {
				return nil, fmt.Errorf("type %q allows unknown field %q", entry.Type, name)
			}
			fields[name] = struct{}{}
		}
		critical := make([]string, 0, len(entry.Critical))
		for _, name := range entry.Critical {
			if !domain.IsVocabularyField(name) {
				return nil, fmt.Errorf("type %q marks unknown field %q critical", entry.Type, name)
			}
			critical = append(critical, name)
		}

		byType[docType] = typeSchema{fields: fields, critical: critical}
	}

	return &Registry{byType: byType}, nil
}

// FieldsFor returns the allowed field set for a type. A type without an
// explicit schema gets the whole vocabulary, which downstream filtering
// treats as "no filtering" rather than "no fields".
func (r *Registry) FieldsFor(t domain.DocumentType) map[string]struct{} {
	entry, ok := r.byType[t]
	if !ok {
		union := make(map[string]struct{})
		for _, name := range domain.FieldVocabulary() {
			union[name] = struct{}{}
		}
		return union
	}
	out := make(map[string]struct{}, len(entry.fields))
	for name := range entry.fields {
		out[name] = struct{}{}
	}
	return out
}

// CriticalFieldsFor returns the ordered critical field names for a type,
// empty for types without an explicit schema.
func (r *Registry) CriticalFieldsFor(t domain.DocumentType) []string {
	entry, ok := r.byType[t]
	if !ok {
		return nil
	}
	out := make([]string, len(entry.critical))
	copy(out, entry.critical)
	return out
}

// HasSchema reports whether a type carries an explicit schema entry.
func (r *Registry) HasSchema(t domain.DocumentType) bool {
	_, ok := r.byType[t]
	return ok
}
