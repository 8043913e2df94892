// Package extraction runs the per-type regular-expression field extractors
// over raw OCR text. Extraction is a pure function of (text, document type):
// identical inputs always produce identical field sets.
package extraction

import (
	"log/slog"
	"strings"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Extract runs the routine for the given document type over rawText and
// returns one list per field, deduplicated case-sensitively in first-match
// order. A failure in one field category is logged and yields an empty list
// for that field only; the remaining categories still run.
func (e *Engine) Extract(rawText string, docType domain.DocumentType) domain.FieldSet {
	routine, ok := routines[docType]
	if !ok {
		routine = genericRoutine
	}

	result := make(domain.FieldSet, len(routine))
	for _, category := range routine {
		result[category.field] = e.collect(rawText, category, docType)
	}
	return result
}

// collect gathers the values of one field category. The recover guard keeps a
// pathological input from taking the whole document's extraction down with it.
func (e *Engine) collect(text string, category fieldPattern, docType domain.DocumentType) (values []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction.category_failed",
				"field", category.field,
				"document_type", docType.String(),
				"panic", r,
			)
			values = []string{}
		}
	}()

	values = []string{}
	seen := make(map[string]struct{})

	for _, pattern := range category.patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			value := matchValue(match, category.joinWith)
			if value == "" {
				continue
			}
			if category.validate != nil && !category.validate(value) {
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			values = append(values, value)
		}
	}
	return values
}

// matchValue turns one regexp match into a field value. Composite categories
// join every non-empty capture group with joinWith; plain categories keep the
// first non-empty group, or the full match for group-less patterns.
func matchValue(match []string, joinWith string) string {
	if len(match) == 1 {
		return cleanValue(match[0])
	}

	groups := make([]string, 0, len(match)-1)
	for _, g := range match[1:] {
		if cleaned := cleanValue(g); cleaned != "" {
			groups = append(groups, cleaned)
		}
	}
	if len(groups) == 0 {
		return ""
	}
	if joinWith == "" {
		return groups[0]
	}
	return strings.Join(groups, joinWith)
}

func cleanValue(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimRight(value, ",;:")
	return strings.TrimSpace(value)
}

// isPlausibleEmail rejects regex matches that are not shaped like a usable
// address: the @ must be interior and the domain part needs a dot and some
// substance.
func isPlausibleEmail(candidate string) bool {
	at := strings.Index(candidate, "@")
	if at <= 0 || at == len(candidate)-1 {
		return false
	}
	if strings.Count(candidate, "@") != 1 {
		return false
	}
	dom := candidate[at+1:]
	if len(dom) <= 3 {
		return false
	}
	return strings.Contains(dom, ".")
}
