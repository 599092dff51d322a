// Package changes detects semantic changes to the requirements document
// between runs and maps them to the tests that previously covered them.
package changes

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"
	"time"

	"github.com/drew/treqt/internal/requirements"
	"github.com/drew/treqt/internal/store"
)

// Report classifies every requirement as added, modified or removed since
// the previous run, with the tests that may need review.
type Report struct {
	DocumentChanged bool     `json:"document_changed"`
	Added           []string `json:"added"`
	Modified        []string `json:"modified"`
	Removed         []string `json:"removed"`
	AffectedTests   []string `json:"affected_tests"`
}

// HasChanges reports whether any requirement-level change was detected
func (r Report) HasChanges() bool {
	return r.DocumentChanged
}

// Detector compares the requirements document against the previously
// persisted hash snapshot.
type Detector struct {
	registry *requirements.Registry
	store    *store.Store
	now      func() time.Time
}

// NewDetector creates a detector for the registry's document
func NewDetector(registry *requirements.Registry, st *store.Store) *Detector {
	return &Detector{registry: registry, store: st, now: time.Now}
}

// Detect classifies requirement changes and persists the new hash snapshot.
// A missing requirements document is a normal state: no changes, no error.
func (d *Detector) Detect() (Report, error) {
	report := Report{
		Added:         []string{},
		Modified:      []string{},
		Removed:       []string{},
		AffectedTests: []string{},
	}

	content, err := os.ReadFile(d.registry.Path())
	if err != nil {
		return report, nil
	}

	fileHash := hashBytes(content)
	previous, hadPrevious := d.store.ReadHashes()

	// Fast path: identical document hash means the stored snapshot is
	// already current, individual hashes included.
	if hadPrevious && previous.FileHash == fileHash {
		return report, nil
	}

	report.DocumentChanged = true

	// The document changed under us; drop the memoized valid set.
	d.registry.Reset()

	currentHashes := RequirementHashes(d.registry.Descriptions())

	for id := range currentHashes {
		prev, existed := previous.RequirementHashes[id]
		switch {
		case !existed:
			report.Added = append(report.Added, id)
		case prev != currentHashes[id]:
			report.Modified = append(report.Modified, id)
		}
	}
	for id := range previous.RequirementHashes {
		if _, exists := currentHashes[id]; !exists {
			report.Removed = append(report.Removed, id)
		}
	}
	sort.Strings(report.Added)
	sort.Strings(report.Modified)
	sort.Strings(report.Removed)

	report.AffectedTests = d.affectedTests(report)

	snapshot := store.HashSnapshot{
		FileHash:          fileHash,
		RequirementHashes: currentHashes,
		LastCheck:         d.now().Format(time.RFC3339),
	}
	if err := d.store.WriteHashes(snapshot); err != nil {
		return report, err
	}

	return report, nil
}

// affectedTests looks changed requirements up in the most recent coverage
// snapshot. A requirement that was never covered contributes no tests.
func (d *Detector) affectedTests(report Report) []string {
	data := d.store.ReadCoverage()
	if data == nil {
		return []string{}
	}

	affected := requirements.NewIDSet()
	for _, group := range [][]string{report.Added, report.Modified, report.Removed} {
		for _, id := range group {
			for _, entry := range data.Requirements[id] {
				affected.Add(entry.FullName)
			}
		}
	}
	return affected.Sorted()
}

// RequirementHashes computes the per-requirement content hashes:
// hash(id ++ ":" ++ description). Deterministic across process restarts.
func RequirementHashes(descriptions map[string]string) map[string]string {
	hashes := make(map[string]string, len(descriptions))
	for id, description := range descriptions {
		hashes[id] = hashBytes([]byte(id + ":" + description))
	}
	return hashes
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
