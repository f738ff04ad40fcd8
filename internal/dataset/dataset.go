// Package dataset loads the record set consumed by the checker.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Record is one dataset entry. The ID is opaque and kept verbatim;
// Name feeds the canonical URL construction.
type Record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both string and numeric ids, since the dataset
// producer is not consistent about quoting them.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	r.Name = raw.Name
	if len(raw.ID) == 0 {
		r.ID = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.ID, &s); err == nil {
		r.ID = s
		return nil
	}
	r.ID = string(bytes.TrimSpace(raw.ID))
	return nil
}

// ErrEmptyDataset indicates the file parsed but holds no records.
var ErrEmptyDataset = errors.New("dataset contains no records")

type document struct {
	Records []Record `json:"records"`
}

// Load reads the dataset file and returns its records. A missing file,
// malformed JSON, or an empty record list is an input error; callers
// treat it as fatal before any network activity.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(doc.Records) == 0 {
		return nil, ErrEmptyDataset
	}
	return doc.Records, nil
}
