package assessment

import "fmt"

// IssueCode classifies a validation finding.
type IssueCode string

const (
	// IssueFormat: a raw value does not parse as its declared kind. The
	// field is treated as empty for evaluation until corrected.
	IssueFormat IssueCode = "format"
	// IssueOrdering: two present, active date fields violate the declared
	// chronological relation. Blocks finalize.
	IssueOrdering IssueCode = "ordering"
	// IssueFutureDate: a date field lies after the submission time.
	IssueFutureDate IssueCode = "future-date"
	// IssueMissingRequired: an active required field holds no value. Blocks
	// finalize.
	IssueMissingRequired IssueCode = "missing-required"
	// IssueProximity: the follow-up visit falls more than two calendar days
	// after the screening. Warning only, never blocks finalize.
	IssueProximity IssueCode = "proximity"
)

// Issue is one structured validation finding. Ordering issues name both
// fields and the expected relation.
type Issue struct {
	Code      IssueCode `json:"code"`
	Path      string    `json:"path"`
	OtherPath string    `json:"other_path,omitempty"`
	Message   string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Code, i.Path, i.Message)
}

// ValidationResult separates blocking findings from advisory warnings so the
// caller can surface them distinctly.
type ValidationResult struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports whether the result carries no blocking errors.
func (v ValidationResult) OK() bool { return len(v.Errors) == 0 }

// CardinalityError reports a mutation that would push the signature list
// outside its bounds. The mutation is rejected rather than applied.
type CardinalityError struct {
	Count int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("signature list must hold between %d and %d entries, mutation would leave %d",
		MinSignatures, MaxSignatures, e.Count)
}
