package assessment

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// FieldKind classifies how a field's value is stored and validated.
type FieldKind int

const (
	KindCode FieldKind = iota // single code from a closed option list
	KindText                  // free text
	KindDate                  // calendar date, YYYY-MM-DD
	KindCheckGroup            // set of boolean options, possibly with a "none" option
	KindSignatureList         // ordered list of signature entries
)

// Option is one allowed code for a KindCode or KindCheckGroup field.
type Option struct {
	Code  string
	Label string
}

// FieldDef describes one item in the record dictionary. Fields are addressed
// by item number plus an optional dot-letter sub-field, e.g. "J2051.A".
type FieldDef struct {
	Path          string
	Label         string
	Kind          FieldKind
	Options       []Option
	NoneOption    string // option code that excludes all siblings, "" if none
	Required      bool   // baseline required-ness for ungoverned fields
	AdmissionOnly bool
}

// Section returns the section letter a field path belongs to.
func (d FieldDef) Section() string {
	return d.Path[:1]
}

// SignatureEntry is one row of the Z0400 signature list.
type SignatureEntry struct {
	Name              string `json:"name"`
	Title             string `json:"title"`
	SectionsCompleted string `json:"sections_completed"`
	Date              string `json:"date"`
}

const (
	// MinSignatures and MaxSignatures bound the Z0400 list.
	MinSignatures = 1
	MaxSignatures = 12
)

// Record holds the current value of every field in one in-progress
// assessment. It has no behavior beyond typed get/set; all conditional
// logic lives in the evaluator, reconciler and validators.
type Record struct {
	scalars    map[string]string
	groups     map[string]map[string]bool
	signatures []SignatureEntry
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{
		scalars: make(map[string]string),
		groups:  make(map[string]map[string]bool),
	}
}

// Get returns the stored scalar value for path, or "" when unset.
func (r *Record) Get(path string) string {
	return r.scalars[path]
}

// Set stores a scalar value. Setting "" is equivalent to Clear.
func (r *Record) Set(path, value string) {
	if value == "" {
		delete(r.scalars, path)
		return
	}
	r.scalars[path] = value
}

// Clear removes any value held at path, scalar or group.
func (r *Record) Clear(path string) {
	delete(r.scalars, path)
	delete(r.groups, path)
}

// OptionChecked reports whether an option in a checkbox-group field is set.
func (r *Record) OptionChecked(group, option string) bool {
	return r.groups[group][option]
}

// SetOption toggles one option of a checkbox-group field.
func (r *Record) SetOption(group, option string, checked bool) {
	g := r.groups[group]
	if g == nil {
		if !checked {
			return
		}
		g = make(map[string]bool)
		r.groups[group] = g
	}
	if checked {
		g[option] = true
	} else {
		delete(g, option)
		if len(g) == 0 {
			delete(r.groups, group)
		}
	}
}

// CheckedOptions returns the sorted option codes currently set for a group.
func (r *Record) CheckedOptions(group string) []string {
	g := r.groups[group]
	if len(g) == 0 {
		return nil
	}
	out := make([]string, 0, len(g))
	for code := range g {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the field at path holds no value. Signature lists are
// never empty once the record has an entry; they are bounded separately.
func (r *Record) Empty(path string) bool {
	if path == PathSignatures {
		return len(r.signatures) == 0
	}
	if _, ok := r.scalars[path]; ok {
		return false
	}
	return len(r.groups[path]) == 0
}

// Signatures returns the signature list in order.
func (r *Record) Signatures() []SignatureEntry {
	out := make([]SignatureEntry, len(r.signatures))
	copy(out, r.signatures)
	return out
}

// AddSignature appends an entry to the Z0400 list. The mutation is rejected,
// leaving the record unchanged, when it would exceed the upper bound.
func (r *Record) AddSignature(e SignatureEntry) error {
	if len(r.signatures) >= MaxSignatures {
		return &CardinalityError{Count: len(r.signatures) + 1}
	}
	r.signatures = append(r.signatures, e)
	return nil
}

// RemoveSignature deletes the entry at index. Removing the last remaining
// entry is rejected: a record in progress always keeps at least one signature.
func (r *Record) RemoveSignature(index int) error {
	if index < 0 || index >= len(r.signatures) {
		return fmt.Errorf("signature index %d out of range", index)
	}
	if len(r.signatures) <= MinSignatures {
		return &CardinalityError{Count: len(r.signatures) - 1}
	}
	r.signatures = append(r.signatures[:index], r.signatures[index+1:]...)
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := NewRecord()
	for k, v := range r.scalars {
		c.scalars[k] = v
	}
	for k, g := range r.groups {
		cg := make(map[string]bool, len(g))
		for code, set := range g {
			cg[code] = set
		}
		c.groups[k] = cg
	}
	c.signatures = append(c.signatures, r.signatures...)
	return c
}

// MarshalJSON serializes the record as a nested mapping keyed by section,
// with checkbox groups as objects of boolean flags and the signature list as
// an ordered array.
func (r *Record) MarshalJSON() ([]byte, error) {
	sections := make(map[string]map[string]interface{})
	put := func(path string, v interface{}) {
		sec := path[:1]
		if sections[sec] == nil {
			sections[sec] = make(map[string]interface{})
		}
		sections[sec][path] = v
	}
	for path, v := range r.scalars {
		put(path, v)
	}
	for path, g := range r.groups {
		flags := make(map[string]bool, len(g))
		for code := range g {
			flags[code] = true
		}
		put(path, flags)
	}
	if len(r.signatures) > 0 {
		put(PathSignatures, r.signatures)
	}
	return json.Marshal(sections)
}

// UnmarshalJSON rebuilds a record from its nested serialized form. Field
// kinds come from the dictionary; unknown paths and signature lists above
// the upper bound are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var sections map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return err
	}
	*r = *NewRecord()
	for _, fields := range sections {
		for path, raw := range fields {
			def, ok := Dictionary[path]
			if !ok {
				return fmt.Errorf("unknown field path %q", path)
			}
			switch def.Kind {
			case KindCheckGroup:
				var flags map[string]bool
				if err := json.Unmarshal(raw, &flags); err != nil {
					return fmt.Errorf("field %s: %w", path, err)
				}
				for code, set := range flags {
					r.SetOption(path, code, set)
				}
			case KindSignatureList:
				var entries []SignatureEntry
				if err := json.Unmarshal(raw, &entries); err != nil {
					return fmt.Errorf("field %s: %w", path, err)
				}
				if len(entries) > MaxSignatures {
					return fmt.Errorf("field %s: %w", path, &CardinalityError{Count: len(entries)})
				}
				r.signatures = entries
			default:
				var v string
				if err := json.Unmarshal(raw, &v); err != nil {
					return fmt.Errorf("field %s: %w", path, err)
				}
				r.Set(path, v)
			}
		}
	}
	return nil
}

// Assessment maps to the assessment table. The record column holds the
// serialized field values; everything else is envelope metadata.
type Assessment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Reason      string     `db:"reason" json:"reason"`
	Variant     string     `db:"variant" json:"variant"`
	Status      string     `db:"status" json:"status"`
	Record      *Record    `db:"record" json:"record"`
	CreatedByID *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
}

// Assessment lifecycle statuses.
const (
	StatusInProgress = "in-progress"
	StatusSubmitted  = "submitted"
)
