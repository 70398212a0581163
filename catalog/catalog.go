package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrEmptyDataset      = errors.New("empty dataset")
	ErrMissingField      = errors.New("missing required field")
	ErrDuplicateSubject  = errors.New("duplicate subject identifier")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Subject is a single catalog entry. The set is immutable after load.
type Subject struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Embedding   []float64 `json:"-"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Core        bool      `json:"core"`
	Depth       bool      `json:"depth"`
	Elective    bool      `json:"elective"`
	Eng         bool      `json:"eng"`
	Mgmt        bool      `json:"mgmt"`
}

// Category derives the display class used by the companion plot legend.
func (s Subject) Category() string {
	switch {
	case s.Core:
		return "Core"

	case s.Depth:
		if s.Eng {
			if s.Mgmt {
				return "Eng & Mgmt Depth"
			}

			return "Eng Depth"
		}

		return "Mgmt Depth"

	case s.Elective:
		if s.Eng {
			if s.Mgmt {
				return "Eng & Mgmt Elective"
			}

			return "Eng Elective"
		}

		return "Mgmt Elective"

	default:
		return "Other"
	}
}

// CanonicalID normalizes a subject identifier for lookup.
func CanonicalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// flag accepts the 0/1 numbers the dataset exporter writes, as well as
// plain booleans.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "0", "false", "null":
		*f = false
	case "1", "true":
		*f = true
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}

		*f = n != 0
	}

	return nil
}

type rawSubject struct {
	ID          *string   `json:"id"`
	Title       *string   `json:"t"`
	Description *string   `json:"d"`
	Embedding   []float64 `json:"e"`
	X           *float64  `json:"x"`
	Y           *float64  `json:"y"`
	Core        flag      `json:"core"`
	Depth       flag      `json:"depth"`
	Elective    flag      `json:"elect"`
	Eng         flag      `json:"eng"`
	Mgmt        flag      `json:"mgmt"`
}

func (raw *rawSubject) validate(index int) error {
	switch {
	case raw.ID == nil:
		return fmt.Errorf("%w: entry %d: id", ErrMissingField, index)
	case raw.Title == nil:
		return fmt.Errorf("%w: entry %d: t", ErrMissingField, index)
	case raw.Description == nil:
		return fmt.Errorf("%w: entry %d: d", ErrMissingField, index)
	case len(raw.Embedding) == 0:
		return fmt.Errorf("%w: entry %d: e", ErrMissingField, index)
	case raw.X == nil:
		return fmt.Errorf("%w: entry %d: x", ErrMissingField, index)
	case raw.Y == nil:
		return fmt.Errorf("%w: entry %d: y", ErrMissingField, index)
	}

	return nil
}

// Catalog owns the subject set for the process lifetime. All access is
// read-only after construction, so it is safe to share across sessions.
type Catalog struct {
	subjects  []Subject
	index     map[string]int
	dimension int
}

// Load reads the precomputed dataset file. Entries repeating an earlier
// title are dropped, first occurrence wins.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	return Parse(data)
}

// Parse builds a catalog from raw dataset bytes.
func Parse(data []byte) (*Catalog, error) {
	var raws []rawSubject
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	seenTitles := make(map[string]struct{})

	subjects := make([]Subject, 0, len(raws))
	for i, raw := range raws {
		if err := raw.validate(i); err != nil {
			return nil, err
		}

		if _, ok := seenTitles[*raw.Title]; ok {
			continue
		}
		seenTitles[*raw.Title] = struct{}{}

		subjects = append(subjects, Subject{
			ID:          CanonicalID(*raw.ID),
			Title:       *raw.Title,
			Description: *raw.Description,
			Embedding:   raw.Embedding,
			X:           *raw.X,
			Y:           *raw.Y,
			Core:        bool(raw.Core),
			Depth:       bool(raw.Depth),
			Elective:    bool(raw.Elective),
			Eng:         bool(raw.Eng),
			Mgmt:        bool(raw.Mgmt),
		})
	}

	return New(subjects)
}

// New builds a catalog from already-parsed subjects, validating that
// identifiers are unique and that all vectors share one dimensionality.
func New(subjects []Subject) (*Catalog, error) {
	if len(subjects) == 0 {
		return nil, ErrEmptyDataset
	}

	dimension := len(subjects[0].Embedding)
	index := make(map[string]int, len(subjects))

	for i := range subjects {
		subjects[i].ID = CanonicalID(subjects[i].ID)

		id := subjects[i].ID
		if _, ok := index[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubject, id)
		}
		index[id] = i

		if len(subjects[i].Embedding) != dimension {
			return nil, fmt.Errorf("%w: subject %s has %d dimensions, expected %d",
				ErrDimensionMismatch, id, len(subjects[i].Embedding), dimension)
		}
	}

	return &Catalog{
		subjects:  subjects,
		index:     index,
		dimension: dimension,
	}, nil
}

// Get looks up a subject by identifier, case-insensitively.
func (c *Catalog) Get(id string) (Subject, bool) {
	i, ok := c.index[CanonicalID(id)]
	if !ok {
		return Subject{}, false
	}

	return c.subjects[i], true
}

// All returns the subjects in dataset order.
func (c *Catalog) All() []Subject {
	subjects := make([]Subject, len(c.subjects))
	copy(subjects, c.subjects)

	return subjects
}

func (c *Catalog) Len() int {
	return len(c.subjects)
}

func (c *Catalog) Dimension() int {
	return c.dimension
}
