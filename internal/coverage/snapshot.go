package coverage

import (
	"github.com/drew/treqt/internal/requirements"
)

// TestRecord ties one test to its cited requirements and terminal outcome
type TestRecord struct {
	Identity     string
	Requirements requirements.IDSet
	Outcome      Outcome
}

// Snapshot is one self-contained view of coverage: per-test records plus the
// derived requirement-to-tests inverse index. Every identity in Index values
// appears in Records and every requirement cited by a record is an Index key.
type Snapshot struct {
	Records []TestRecord
	Index   map[string][]string
	Context ExecutionContext
}

// Empty reports whether the snapshot carries no coverage data
func (s Snapshot) Empty() bool {
	return len(s.Records) == 0
}

// rebuildIndex derives Index from Records: tests appear under each cited
// requirement in record order, duplicates suppressed.
func (s *Snapshot) rebuildIndex() {
	s.Index = make(map[string][]string)
	for _, rec := range s.Records {
		for req := range rec.Requirements {
			if !containsString(s.Index[req], rec.Identity) {
				s.Index[req] = append(s.Index[req], rec.Identity)
			}
		}
	}
}

// Merge combines per-worker fragments into one consistent snapshot.
// Records union by identity; a repeated identity indicates a re-run rather
// than genuine conflict, so the last-merged fragment wins, outcome included.
// The index is rebuilt from the merged records, never unioned from fragment
// indices. Zero fragments (or all-empty fragments) yield an empty snapshot.
func Merge(fragments []Snapshot) Snapshot {
	merged := Snapshot{Index: make(map[string][]string)}

	pos := make(map[string]int)
	for _, frag := range fragments {
		for _, rec := range frag.Records {
			if i, seen := pos[rec.Identity]; seen {
				merged.Records[i] = rec
				continue
			}
			pos[rec.Identity] = len(merged.Records)
			merged.Records = append(merged.Records, rec)
		}
	}

	merged.rebuildIndex()
	return merged
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
