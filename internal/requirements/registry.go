package requirements

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// UnknownRequirementError reports that a test references identifiers not
// present in the requirements document.
type UnknownRequirementError struct {
	Test   string
	IDs    []string
	Source string
}

func (e *UnknownRequirementError) Error() string {
	return fmt.Sprintf("test %q references invalid requirements: %s. Valid requirements are defined in %s",
		e.Test, strings.Join(e.IDs, ", "), e.Source)
}

// Registry holds the canonical set of valid requirement identifiers,
// loaded once from the requirements document.
type Registry struct {
	path    string
	matcher *Matcher

	mu    sync.Mutex
	valid IDSet // nil until loaded
}

// NewRegistry creates a registry backed by the requirements document at path
func NewRegistry(path string, matcher *Matcher) *Registry {
	return &Registry{path: path, matcher: matcher}
}

// Path returns the requirements document path
func (r *Registry) Path() string {
	return r.path
}

// ValidIDs returns the set of valid requirement identifiers, memoized after
// the first load. A missing or unreadable document yields an empty set, never
// an error: the tool stays usable before a requirements document exists.
func (r *Registry) ValidIDs() IDSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.valid != nil {
		return r.valid
	}

	content, err := os.ReadFile(r.path)
	if err != nil {
		r.valid = make(IDSet)
		return r.valid
	}

	r.valid = r.matcher.ExtractDocument(string(content))
	return r.valid
}

// Descriptions returns the identifier-to-description mapping from the
// requirements document. Fails soft to an empty map.
func (r *Registry) Descriptions() map[string]string {
	content, err := os.ReadFile(r.path)
	if err != nil {
		return map[string]string{}
	}
	return r.matcher.ExtractDescriptions(string(content))
}

// Validate checks refs against the valid set. An empty valid set disables
// validation entirely. On failure the returned error names the owning test
// and the offending identifiers.
func (r *Registry) Validate(refs IDSet, owner string) error {
	valid := r.ValidIDs()
	if len(valid) == 0 {
		return nil
	}

	invalid := refs.Minus(valid)
	if len(invalid) == 0 {
		return nil
	}

	return &UnknownRequirementError{
		Test:   owner,
		IDs:    invalid.Sorted(),
		Source: r.path,
	}
}

// Reset clears the memoized valid set so the next ValidIDs call re-reads the
// document. Used after the document is known to have changed.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valid = nil
}
