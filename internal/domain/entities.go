package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Seed is an ordered list of name fragments assigned to one generation position.
// Candidates are formed by taking one item from every seed, lowest position first.
type Seed struct {
	// Position orders the seed within a seed set (0 = first fragment).
	Position int `json:"seedPosition"`
	// Items are the fragments available at this position.
	Items []string `json:"seedItems"`
}

// Legacy seed position names used by two-position seed files.
const (
	SeedPositionStart = "start"
	SeedPositionEnd   = "end"
)

// UnmarshalJSON accepts seedPosition as an integer or as "start"/"end".
func (s *Seed) UnmarshalJSON(data []byte) error {
	var raw struct {
		Position json.RawMessage `json:"seedPosition"`
		Items    []string        `json:"seedItems"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Position) == 0 {
		return errors.New("seed is missing seedPosition")
	}

	var pos int
	if err := json.Unmarshal(raw.Position, &pos); err != nil {
		var name string
		if err := json.Unmarshal(raw.Position, &name); err != nil {
			return fmt.Errorf("seedPosition must be an integer or a position name: %s", raw.Position)
		}
		switch strings.ToLower(name) {
		case SeedPositionStart:
			pos = 0
		case SeedPositionEnd:
			pos = 1
		default:
			return fmt.Errorf("unknown seedPosition %q", name)
		}
	}

	s.Position = pos
	s.Items = raw.Items
	return nil
}

// Source identifies which external service produced a verdict.
type Source string

// Availability sources.
const (
	SourceDomain   Source = "domain"
	SourceUsername Source = "username"
)

// Result field keys written to the result store.
const (
	FieldName     = "name"
	FieldDomain   = "domain"
	FieldUsername = "GitHub"
)

// DomainField returns the result field for a domain ending.
// The primary ending (index 0) is stored under "domain", further endings
// under "domain.<ending>".
func DomainField(index int, ending string) string {
	if index == 0 {
		return FieldDomain
	}
	return FieldDomain + "." + ending
}

// Verdict is the availability determination for one name against one source.
type Verdict struct {
	// Name is the candidate the verdict belongs to (the result key).
	Name string `json:"name"`
	// Source is the service that was queried.
	Source Source `json:"source"`
	// Identifier is the resource actually checked (e.g. "AnnCo.com").
	Identifier string `json:"identifier"`
	// Field is the result field the verdict is stored under.
	Field string `json:"field"`
	// Available is true only when the service positively reported availability.
	Available bool `json:"available"`
}

// Record converts the verdict into a single-field result record.
func (v Verdict) Record() Record {
	r := NewRecord(v.Name)
	r.Fields[v.Field] = v.Available
	return r
}

// Record is one persisted result entry keyed by Name.
// Fields holds every source field merged into the entry over time; values
// read back from storage keep whatever JSON type they were written with.
type Record struct {
	Name   string
	Fields map[string]any
}

// NewRecord returns an empty record for name.
func NewRecord(name string) Record {
	return Record{Name: name, Fields: make(map[string]any)}
}

// Merge overlays other's fields onto r. Fields of r that other does not
// carry are left untouched.
func (r *Record) Merge(other Record) {
	if r.Fields == nil {
		r.Fields = make(map[string]any, len(other.Fields))
	}
	for k, v := range other.Fields {
		r.Fields[k] = v
	}
}

// Has reports whether the record carries field key.
func (r Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Bool returns the field value when it is a boolean.
func (r Record) Bool(key string) (value, ok bool) {
	value, ok = r.Fields[key].(bool)
	return value, ok
}

// MarshalJSON writes "name" first followed by the fields in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	name, err := json.Marshal(r.Name)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"name":`)
	buf.Write(name)

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		if k != FieldName {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Fields[k])
		if err != nil {
			return nil, fmt.Errorf("marshaling field %q of %q: %w", k, r.Name, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object that must carry a string "name".
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name, ok := raw[FieldName].(string)
	if !ok {
		return errors.New("result record is missing a string \"name\"")
	}
	delete(raw, FieldName)

	r.Name = name
	r.Fields = raw
	return nil
}

// BatchSummary captures the outcome of one processed batch.
type BatchSummary struct {
	// Index is the zero-based batch number.
	Index int `json:"index"`
	// Names is the number of candidates in the batch.
	Names int `json:"names"`
	// Verdicts is the number of verdicts merged into the store.
	Verdicts int `json:"verdicts"`
	// DomainAvailable counts names whose primary domain is available.
	DomainAvailable int `json:"domain_available"`
	// UsernameAvailable counts names whose username is available.
	UsernameAvailable int `json:"username_available"`
}

// RunSummary contains the totals for a complete run.
type RunSummary struct {
	RunID             string         `json:"run_id"`
	Environment       string         `json:"environment"`
	StartedAt         time.Time      `json:"started_at"`
	Duration          string         `json:"duration"`
	Candidates        int            `json:"candidates"`
	Skipped           int            `json:"skipped"`
	TotalBatches      int            `json:"total_batches"`
	Batches           []BatchSummary `json:"batches"`
	NamesProcessed    int            `json:"names_processed"`
	DomainAvailable   int            `json:"domain_available"`
	UsernameAvailable int            `json:"username_available"`
	ResultsPath       string         `json:"results_path"`
}

// DomainRate returns the percentage of processed names with an available domain.
func (s *RunSummary) DomainRate() float64 {
	if s.NamesProcessed == 0 {
		return 0
	}
	return 100.0 * float64(s.DomainAvailable) / float64(s.NamesProcessed)
}

// UsernameRate returns the percentage of processed names with an available username.
func (s *RunSummary) UsernameRate() float64 {
	if s.NamesProcessed == 0 {
		return 0
	}
	return 100.0 * float64(s.UsernameAvailable) / float64(s.NamesProcessed)
}
