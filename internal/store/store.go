// Package store persists coverage and requirement-hash snapshots as single
// JSON files under the cache directory, with exact-overwrite semantics.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drew/treqt/internal/coverage"
	"github.com/drew/treqt/internal/requirements"
)

const (
	coverageFile = "requirements_coverage.json"
	hashFile     = "req_cache.json"
)

// PersistenceError wraps a failed snapshot write. Callers surface it as a
// warning: coverage data loss must never fail the test suite itself.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TestEntry is one test under a requirement in the persisted layout
type TestEntry struct {
	TestName string `json:"test_name"`
	FullName string `json:"full_name"`
	Result   string `json:"result"`
}

// Summary holds the persisted run totals
type Summary struct {
	TotalTests        int `json:"total_tests"`
	TotalRequirements int `json:"total_requirements"`
}

// CoverageData is the persisted coverage snapshot document
type CoverageData struct {
	CommandInfo  coverage.ExecutionContext `json:"command_info"`
	Requirements map[string][]TestEntry    `json:"requirements"`
	Summary      Summary                   `json:"summary"`
}

// HashSnapshot is the persisted requirement-hash document
type HashSnapshot struct {
	FileHash          string            `json:"file_hash"`
	RequirementHashes map[string]string `json:"requirement_hashes"`
	LastCheck         string            `json:"last_check"`
}

// Store reads and writes the cached snapshots for one project
type Store struct {
	cacheDir string
}

// New creates a store rooted at cacheDir
func New(cacheDir string) *Store {
	return &Store{cacheDir: cacheDir}
}

// CoveragePath returns the coverage snapshot file path
func (s *Store) CoveragePath() string {
	return filepath.Join(s.cacheDir, coverageFile)
}

// HashPath returns the hash snapshot file path
func (s *Store) HashPath() string {
	return filepath.Join(s.cacheDir, hashFile)
}

// EncodeSnapshot converts an in-memory snapshot to the persisted layout
func EncodeSnapshot(snap coverage.Snapshot) CoverageData {
	data := CoverageData{
		CommandInfo:  snap.Context,
		Requirements: make(map[string][]TestEntry),
		Summary: Summary{
			TotalTests:        len(snap.Records),
			TotalRequirements: len(snap.Index),
		},
	}

	outcomes := make(map[string]coverage.Outcome, len(snap.Records))
	for _, rec := range snap.Records {
		outcomes[rec.Identity] = rec.Outcome
	}

	for req, tests := range snap.Index {
		entries := make([]TestEntry, 0, len(tests))
		for _, identity := range tests {
			entries = append(entries, TestEntry{
				TestName: ShortName(identity),
				FullName: identity,
				Result:   string(outcomes[identity]),
			})
		}
		data.Requirements[req] = entries
	}

	return data
}

// Snapshot reconstructs the in-memory snapshot from the persisted layout
func (d *CoverageData) Snapshot() coverage.Snapshot {
	snap := coverage.Snapshot{
		Index:   make(map[string][]string),
		Context: d.CommandInfo,
	}

	reqs := make([]string, 0, len(d.Requirements))
	for req := range d.Requirements {
		reqs = append(reqs, req)
	}
	sort.Strings(reqs)

	recorded := make(map[string]int)
	for _, req := range reqs {
		for _, entry := range d.Requirements[req] {
			snap.Index[req] = append(snap.Index[req], entry.FullName)
			if i, seen := recorded[entry.FullName]; seen {
				snap.Records[i].Requirements.Add(req)
				continue
			}
			recorded[entry.FullName] = len(snap.Records)
			snap.Records = append(snap.Records, coverage.TestRecord{
				Identity:     entry.FullName,
				Requirements: requirements.NewIDSet(req),
				Outcome:      coverage.Outcome(entry.Result),
			})
		}
	}

	return snap
}

// WriteCoverage persists the coverage snapshot, overwriting the previous one
func (s *Store) WriteCoverage(snap coverage.Snapshot) error {
	return s.writeJSON(s.CoveragePath(), EncodeSnapshot(snap))
}

// ReadCoverage loads the cached coverage snapshot. A missing or malformed
// file means "no usable cached coverage" and returns nil without error.
func (s *Store) ReadCoverage() *CoverageData {
	raw, err := os.ReadFile(s.CoveragePath())
	if err != nil {
		return nil
	}

	var data CoverageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if data.Requirements == nil {
		data.Requirements = make(map[string][]TestEntry)
	}
	return &data
}

// WriteHashes persists the requirement-hash snapshot
func (s *Store) WriteHashes(h HashSnapshot) error {
	return s.writeJSON(s.HashPath(), h)
}

// ReadHashes loads the previous hash snapshot; ok is false when no usable
// snapshot exists.
func (s *Store) ReadHashes() (HashSnapshot, bool) {
	raw, err := os.ReadFile(s.HashPath())
	if err != nil {
		return HashSnapshot{}, false
	}

	var h HashSnapshot
	if err := json.Unmarshal(raw, &h); err != nil {
		return HashSnapshot{}, false
	}
	if h.RequirementHashes == nil {
		h.RequirementHashes = make(map[string]string)
	}
	return h, true
}

// writeJSON writes v atomically: temp file in the cache dir, then rename.
func (s *Store) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(s.cacheDir, filepath.Base(path)+".tmp*")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

// ShortName returns the test function name (with subtest segments) from a
// fully-qualified identity like "internal/store.TestWrite/atomic". Test
// functions always start with "Test", which disambiguates the package
// qualifier from dots inside subtest names.
func ShortName(identity string) string {
	if i := strings.Index(identity, ".Test"); i >= 0 {
		return identity[i+1:]
	}
	if i := strings.LastIndex(identity, "."); i >= 0 {
		return identity[i+1:]
	}
	return identity
}
