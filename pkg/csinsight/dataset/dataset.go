// Package dataset loads conversation summaries from CSV.
package dataset

import (
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/textfeat"
)

// Column is the required CSV column.
const Column = "conversation_summary"

// summaryExamples is how many rows Summary quotes.
const summaryExamples = 3

// Dataset is one uploaded file reduced to its summary column.
type Dataset struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Records  []string  `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh ULID.
func NewID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// Load parses CSV from r and keeps the conversation_summary column.
func Load(r io.Reader, name string) (*Dataset, error) {
	return LoadColumn(r, name, Column)
}

// LoadColumn parses CSV from r and keeps the named column. Rows shorter than
// the header contribute an empty value.
func LoadColumn(r io.Reader, name, column string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %q", internalerr.ErrMissingColumn, column)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", internalerr.ErrInvalidInput, err)
	}

	idx := -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", internalerr.ErrMissingColumn, column)
	}

	var records []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err)
		}
		if idx < len(row) {
			records = append(records, row[idx])
		} else {
			records = append(records, "")
		}
	}

	now := time.Now().UTC()
	return &Dataset{
		ID:       NewID(now),
		Name:     name,
		Records:  records,
		LoadedAt: now,
	}, nil
}

// Texts returns the non-blank records.
func (d *Dataset) Texts() []string {
	out := make([]string, 0, len(d.Records))
	for _, r := range d.Records {
		if strings.TrimSpace(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

// Summary renders the upload acknowledgement: entry count, word statistics
// and the first few examples.
func (d *Dataset) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processing '%s' column\n", Column)
	fmt.Fprintf(&b, "Number of conversation summaries: %d\n", len(d.Records))
	b.WriteString("\nQuick Summary:\n")
	fmt.Fprintf(&b, "- Total entries: %d\n", len(d.Records))

	texts := d.Texts()
	if st, err := textfeat.Stats(texts); err == nil {
		fmt.Fprintf(&b, "\nComplete Statistics (all %d entries):\n", len(d.Records))
		fmt.Fprintf(&b, "- Average words per summary: %.1f\n", st.AvgWords)
		fmt.Fprintf(&b, "- Shortest summary: %d words\n", st.MinWords)
		fmt.Fprintf(&b, "- Longest summary: %d words\n", st.MaxWords)
	}

	if len(texts) > 0 {
		b.WriteString("\nExample Summaries:\n")
		for i, t := range texts {
			if i == summaryExamples {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, t)
		}
	}
	return b.String()
}
