package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/profile"
)

var (
	// ErrInvalidRecord marks a catalog record that failed validation.
	ErrInvalidRecord = errors.New("invalid scheme record")
	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("scheme not found")
)

//go:embed schema.json
var recordSchema []byte

// RecordError describes the first invalid record of a batch.
type RecordError struct {
	Index  int
	ID     string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid scheme at index %d: %s", e.Index, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// LoadFile reads and validates a catalog file.
func LoadFile(path string, logger *zap.Logger) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	entries, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}

	if logger != nil {
		logger.Info("catalog loaded", zap.String("path", path), zap.Int("count", len(entries)))
	}
	return entries, nil
}

// Load decodes a JSON array of entries. The batch is rejected as a whole when
// any record is invalid.
func Load(r io.Reader) ([]*Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}

	entries := make([]*Entry, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, raw := range records {
		entry, err := decodeRecord(schema, raw)
		if err != nil {
			return nil, &RecordError{Index: i, Reason: err.Error()}
		}
		if prev, dup := seen[entry.ID]; dup {
			return nil, &RecordError{Index: i, ID: entry.ID, Reason: fmt.Sprintf("duplicate id %q (first at index %d)", entry.ID, prev)}
		}
		seen[entry.ID] = i
		entries = append(entries, entry)
	}

	return entries, nil
}

func decodeRecord(schema *gojsonschema.Schema, raw json.RawMessage) (*Entry, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, errors.New(strings.Join(errs, "; "))
	}

	var entry Entry
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&entry); err != nil {
		return nil, err
	}

	if err := checkRules(entry.Eligibility); err != nil {
		return nil, err
	}
	return &entry, nil
}

func checkRules(r Rules) error {
	if r.MinAge != nil && (*r.MinAge < profile.MinAge || *r.MinAge > profile.MaxAge) {
		return fmt.Errorf("min_age %d outside %d-%d", *r.MinAge, profile.MinAge, profile.MaxAge)
	}
	if r.MaxAge != nil && (*r.MaxAge < profile.MinAge || *r.MaxAge > profile.MaxAge) {
		return fmt.Errorf("max_age %d outside %d-%d", *r.MaxAge, profile.MinAge, profile.MaxAge)
	}
	if r.MinAge != nil && r.MaxAge != nil && *r.MinAge > *r.MaxAge {
		return fmt.Errorf("min_age %d is greater than max_age %d", *r.MinAge, *r.MaxAge)
	}
	if r.IncomeMax != nil && *r.IncomeMax < 0 {
		return fmt.Errorf("income_max %d is negative", *r.IncomeMax)
	}
	return nil
}

// FindByID returns the entry with the given id.
func FindByID(entries []*Entry, id string) (*Entry, error) {
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
}
