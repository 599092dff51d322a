package requirements

import (
	"reflect"
	"testing"
)

func defaultMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher([]string{`FR-\d+\.?\d*`, `BR-\d+\.?\d*`})
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	return m
}

func TestExtract(t *testing.T) {
	m := defaultMatcher(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "no identifiers",
			text: "Verifies the widget frobnicates correctly.",
			want: []string{},
		},
		{
			name: "single identifier",
			text: "Requires: FR-1.1",
			want: []string{"FR-1.1"},
		},
		{
			name: "multiple patterns",
			text: "Covers FR-1.2 and BR-3 behavior.",
			want: []string{"BR-3", "FR-1.2"},
		},
		{
			name: "lowercase is normalized",
			text: "covers fr-2.1",
			want: []string{"FR-2.1"},
		},
		{
			name: "duplicates collapse",
			text: "FR-1.1 then FR-1.1 again",
			want: []string{"FR-1.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Extract(tt.text).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractDocument(t *testing.T) {
	m := defaultMatcher(t)

	content := `# Requirements

## FR-1.1

- **FR-1.2**: Users can delete objects
- **BR-2**: Deletions are audited

Plain prose mentioning fr-3.1 also counts.
**FR-4**: bold without bullet
`

	got := m.ExtractDocument(content).Sorted()
	want := []string{"BR-2", "FR-1.1", "FR-1.2", "FR-3.1", "FR-4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractDocument() = %v, want %v", got, want)
	}
}

func TestExtractDescriptions(t *testing.T) {
	m := defaultMatcher(t)

	content := `
- **FR-1.1**: Users can create objects
- **fr-1.2**: Users can delete objects
**BR-2**: Deletions are audited
## FR-9
`

	got := m.ExtractDescriptions(content)
	want := map[string]string{
		"FR-1.1": "Users can create objects",
		"FR-1.2": "Users can delete objects",
		"BR-2":   "Deletions are audited",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractDescriptions() = %v, want %v", got, want)
	}
}

func TestNewMatcherInvalidPattern(t *testing.T) {
	if _, err := NewMatcher([]string{`FR-[\d`}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}
