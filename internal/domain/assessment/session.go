package assessment

import (
	"fmt"
	"time"
)

// State is the lifecycle position of an editing session.
type State int

const (
	StateUninitialized State = iota
	StateVariantSelected
	StateSectionsComplete
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateVariantSelected:
		return "variant-selected"
	case StateSectionsComplete:
		return "sections-complete"
	case StateSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session owns one record for the duration of an editing session. Every
// mutation runs the full pipeline synchronously before returning: evaluate
// the active set, reconcile stale values, apply clear rules, normalize
// checkbox groups. The record is never observable between those steps.
type Session struct {
	rec    *Record
	fs     FieldSet
	active ActiveSet
	state  State
	now    func() time.Time
}

// NewSession starts a session for the given record reason code. The
// discriminant is the only pre-set field.
func NewSession(reason string) (*Session, error) {
	s := &Session{rec: NewRecord(), now: time.Now}
	fs, err := SelectVariant(reason)
	if err != nil {
		return nil, err
	}
	s.rec.Set(PathReason, reason)
	s.fs = fs
	s.active = Evaluate(s.rec, s.fs)
	s.state = StateVariantSelected
	s.updateState()
	return s, nil
}

// ResumeSession wraps an existing record, normalizing it through the full
// pipeline first so stale values from storage never survive into the
// session.
func ResumeSession(rec *Record) (*Session, error) {
	fs, err := SelectVariant(rec.Get(PathReason))
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	s := &Session{rec: rec, fs: fs, state: StateVariantSelected, now: time.Now}
	// Fields outside the variant's field set are dropped outright.
	for path := range Dictionary {
		if !fs.Has(path) {
			rec.Clear(path)
		}
	}
	s.active = Evaluate(rec, fs)
	// Treat every field of the variant as previously active so reconciling
	// strips stored values whose governing conditions no longer hold.
	prev := make(ActiveSet, len(fs.paths))
	for path := range fs.paths {
		prev[path] = false
	}
	s.settle(prev)
	s.updateState()
	return s, nil
}

// SetClock overrides the session clock, for validation against a fixed
// submission time.
func (s *Session) SetClock(now func() time.Time) { s.now = now }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Variant returns the document variant selected by the discriminant.
func (s *Session) Variant() VariantKind { return s.fs.Variant }

// ActiveFields returns a copy of the current active set.
func (s *Session) ActiveFields() ActiveSet {
	out := make(ActiveSet, len(s.active))
	for path, req := range s.active {
		out[path] = req
	}
	return out
}

// Record returns a deep copy of the current record.
func (s *Session) Record() *Record { return s.rec.Clone() }

// SetField writes a scalar field and runs the mutation pipeline. Only
// currently active fields accept writes, so an inactive field can never hold
// a value. Changing the discriminant re-runs the assembler and then the full
// pass, dropping values of fields the new variant does not carry.
func (s *Session) SetField(path, value string) error {
	if s.state == StateSubmitted {
		return fmt.Errorf("record already submitted")
	}
	def, ok := Dictionary[path]
	if !ok {
		return fmt.Errorf("unknown field path %q", path)
	}
	if def.Kind == KindCheckGroup || def.Kind == KindSignatureList {
		return fmt.Errorf("field %s is not scalar", path)
	}
	if !s.fs.Has(path) {
		return fmt.Errorf("field %s does not exist for the %s variant", path, s.fs.Variant)
	}
	if !s.active.Active(path) {
		return fmt.Errorf("field %s is not active", path)
	}
	if def.Kind == KindCode && value != "" && !validOption(def, value) {
		return fmt.Errorf("field %s: %q is not an allowed code", path, value)
	}

	if path == PathReason {
		return s.setReason(value)
	}

	prev := s.active
	s.rec.Set(path, value)
	s.active = Evaluate(s.rec, s.fs)
	s.settle(prev)
	s.updateState()
	return nil
}

// SetOption toggles one option of a checkbox-group field, enforcing the
// group's mutual-exclusion invariant as part of the same mutation.
func (s *Session) SetOption(group, option string, checked bool) error {
	if s.state == StateSubmitted {
		return fmt.Errorf("record already submitted")
	}
	def, ok := Dictionary[group]
	if !ok || def.Kind != KindCheckGroup {
		return fmt.Errorf("unknown checkbox group %q", group)
	}
	if !s.fs.Has(group) {
		return fmt.Errorf("field %s does not exist for the %s variant", group, s.fs.Variant)
	}
	if !s.active.Active(group) {
		return fmt.Errorf("field %s is not active", group)
	}
	if !validOption(def, option) {
		return fmt.Errorf("group %s has no option %q", group, option)
	}

	prev := s.active
	s.rec.SetOption(group, option, checked)
	ApplyExclusion(s.rec, group, option)
	s.active = Evaluate(s.rec, s.fs)
	s.settle(prev)
	s.updateState()
	return nil
}

// AddSignature appends a Z0400 entry, rejecting the mutation when the list
// would exceed its upper bound.
func (s *Session) AddSignature(e SignatureEntry) error {
	if s.state == StateSubmitted {
		return fmt.Errorf("record already submitted")
	}
	if err := s.rec.AddSignature(e); err != nil {
		return err
	}
	s.updateState()
	return nil
}

// RemoveSignature deletes a Z0400 entry, rejecting the removal of the last
// remaining one.
func (s *Session) RemoveSignature(index int) error {
	if s.state == StateSubmitted {
		return fmt.Errorf("record already submitted")
	}
	if err := s.rec.RemoveSignature(index); err != nil {
		return err
	}
	s.updateState()
	return nil
}

// Validate runs the cross-field temporal validator for live advisory use.
func (s *Session) Validate() ValidationResult {
	return ValidateOrdering(s.rec, s.now())
}

// Finalize checks every invariant a submitted record must satisfy. On
// success the session becomes terminal and the returned record is an
// immutable snapshot; on failure the record is left unchanged and editable
// and the blocking issues are returned alongside any warnings.
func (s *Session) Finalize() (*Record, ValidationResult, error) {
	if s.state == StateSubmitted {
		return nil, ValidationResult{}, fmt.Errorf("record already submitted")
	}

	result := ValidateOrdering(s.rec, s.now())
	for _, path := range s.fs.Paths() {
		if s.active.Required(path) && s.rec.Empty(path) {
			result.Errors = append(result.Errors, Issue{
				Code:    IssueMissingRequired,
				Path:    path,
				Message: fmt.Sprintf("%s is required", Dictionary[path].Label),
			})
		}
	}
	if !result.OK() {
		return nil, result, nil
	}

	s.state = StateSubmitted
	return s.rec.Clone(), result, nil
}

// setReason handles a discriminant change: re-run the assembler, then the
// full evaluate/reconcile pass so admission-only values are dropped when the
// new variant does not carry them.
func (s *Session) setReason(value string) error {
	fs, err := SelectVariant(value)
	if err != nil {
		return err
	}
	prev := s.active
	s.rec.Set(PathReason, value)
	s.fs = fs
	for path := range Dictionary {
		if !fs.Has(path) {
			s.rec.Clear(path)
		}
	}
	s.active = Evaluate(s.rec, s.fs)
	s.settle(prev)
	s.updateState()
	return nil
}

// settle drives the pipeline to a fixpoint. Reconciling can clear values
// that other predicates read, so the active set is re-derived until stable.
// The cleared set only grows, so the loop terminates.
func (s *Session) settle(prev ActiveSet) {
	for {
		Reconcile(prev, s.active, s.rec)
		ApplyClearRules(s.rec)
		NormalizeExclusions(s.rec)
		next := Evaluate(s.rec, s.fs)
		if next.Equal(s.active) {
			return
		}
		prev, s.active = s.active, next
	}
}

// updateState flips between VariantSelected and SectionsComplete depending
// on whether every required active field holds a value. Submitted is
// terminal and never left.
func (s *Session) updateState() {
	if s.state == StateSubmitted {
		return
	}
	for path, required := range s.active {
		if required && s.rec.Empty(path) {
			s.state = StateVariantSelected
			return
		}
	}
	s.state = StateSectionsComplete
}

func validOption(def FieldDef, code string) bool {
	for _, opt := range def.Options {
		if opt.Code == code {
			return true
		}
	}
	return false
}
