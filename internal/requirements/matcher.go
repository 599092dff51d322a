// Package requirements extracts requirement identifiers from free text and
// validates them against the canonical requirements document.
package requirements

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher applies the configured identifier patterns to text.
// Patterns are compiled once; order only determines scan order.
type Matcher struct {
	bare []*regexp.Regexp
	// document variants recognize identifiers behind markdown markup:
	// line start, whitespace, "- **" or "**"
	document []*regexp.Regexp
	// described variants capture an identifier plus its description from
	// lines shaped "**FR-1.1**: text"
	described []*regexp.Regexp
}

// NewMatcher compiles the configured patterns. A malformed pattern is a
// configuration error and fails loudly.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		bare, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement pattern %q: %w", p, err)
		}
		document, err := regexp.Compile(`(?im)(?:^|\s|-\s\*\*|\*\*)(` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement pattern %q: %w", p, err)
		}
		described, err := regexp.Compile(`(?im)\*\*(` + p + `)\*\*:\s+(.+)`)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement pattern %q: %w", p, err)
		}
		m.bare = append(m.bare, bare)
		m.document = append(m.document, document)
		m.described = append(m.described, described)
	}
	return m, nil
}

// Extract returns the set of identifiers found in text, upper-cased.
// Empty text yields an empty set.
func (m *Matcher) Extract(text string) IDSet {
	found := make(IDSet)
	if text == "" {
		return found
	}
	for _, re := range m.bare {
		for _, match := range re.FindAllString(text, -1) {
			found.Add(strings.ToUpper(match))
		}
	}
	return found
}

// ExtractDocument returns identifiers found in a markdown requirements
// document, recognizing headers, bullet items and bold markers in addition
// to identifiers in prose.
func (m *Matcher) ExtractDocument(content string) IDSet {
	found := make(IDSet)
	if content == "" {
		return found
	}
	for _, re := range m.document {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			found.Add(strings.ToUpper(match[1]))
		}
	}
	return found
}

// ExtractDescriptions returns the identifier-to-description mapping for
// requirements defined as "**FR-1.1**: description" lines.
func (m *Matcher) ExtractDescriptions(content string) map[string]string {
	found := make(map[string]string)
	if content == "" {
		return found
	}
	for _, re := range m.described {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			found[strings.ToUpper(match[1])] = strings.TrimSpace(match[2])
		}
	}
	return found
}
