package assessment

import (
	"fmt"
	"time"
)

// DateLayout is the single calendar format used across the record.
const DateLayout = "2006-01-02"

// followUpProximityDays is the advisory window between screening and
// follow-up visit.
const followUpProximityDays = 2

// dateChain lists the chronological partial order, earliest first. Adjacent
// pairs must satisfy earlier <= later when both are present and active; the
// signature dates slot in between completion and verification.
var dateChain = []string{
	PathAdmitDate,
	PathScreeningDate,
	PathFollowUpDate,
	PathCompletionDate,
}

// ValidateOrdering checks format and ordering invariants across every
// date-valued field of the record. Absent or inactive fields are skipped,
// not treated as violations. now is the submission-time reference for the
// future-date check.
func ValidateOrdering(rec *Record, now time.Time) ValidationResult {
	var result ValidationResult

	fs, err := SelectVariant(rec.Get(PathReason))
	if err != nil {
		// No variant selected yet; only per-field checks are possible.
		fs = FieldSet{paths: map[string]bool{}}
	}
	active := Evaluate(rec, fs)

	// Parsed dates live in UTC, so "today" is built from now's calendar
	// components rather than truncating the instant, which would shift the
	// day boundary for zone-local clocks.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Parse every present date once; malformed values surface a format
	// issue and drop out of the ordering checks.
	dates := make(map[string]time.Time)
	parse := func(path, raw string) (time.Time, bool) {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			result.Errors = append(result.Errors, Issue{
				Code:    IssueFormat,
				Path:    path,
				Message: fmt.Sprintf("%q is not a valid %s date", raw, DateLayout),
			})
			return time.Time{}, false
		}
		if t.After(today) {
			result.Errors = append(result.Errors, Issue{
				Code:    IssueFutureDate,
				Path:    path,
				Message: fmt.Sprintf("%s lies in the future", raw),
			})
			return time.Time{}, false
		}
		return t, true
	}
	for path, def := range Dictionary {
		if def.Kind != KindDate || rec.Empty(path) {
			continue
		}
		if t, ok := parse(path, rec.Get(path)); ok {
			dates[path] = t
		}
	}
	sigDates := make([]time.Time, 0, len(rec.signatures))
	for i, sig := range rec.signatures {
		if sig.Date == "" {
			continue
		}
		path := fmt.Sprintf("%s[%d].date", PathSignatures, i)
		if t, ok := parse(path, sig.Date); ok {
			sigDates = append(sigDates, t)
		} else {
			sigDates = append(sigDates, time.Time{})
		}
	}

	ordered := func(earlier, later string, a, b time.Time) {
		if a.After(b) {
			result.Errors = append(result.Errors, Issue{
				Code:      IssueOrdering,
				Path:      earlier,
				OtherPath: later,
				Message:   fmt.Sprintf("%s must be on or before %s", earlier, later),
			})
		}
	}

	// Chain pairs between present, active fields. A missing link does not
	// break the chain: admission date is still checked against completion
	// date when no screening date exists.
	var prevPath string
	var prevDate time.Time
	for _, path := range dateChain {
		if !active.Active(path) {
			continue
		}
		t, ok := dates[path]
		if !ok {
			continue
		}
		if prevPath != "" {
			ordered(prevPath, path, prevDate, t)
		}
		prevPath, prevDate = path, t
	}

	// Completion <= each signature date <= verification.
	completion, hasCompletion := dates[PathCompletionDate]
	verification, hasVerification := dates[PathVerificationDate]
	for i, t := range sigDates {
		if t.IsZero() {
			continue
		}
		path := fmt.Sprintf("%s[%d].date", PathSignatures, i)
		if hasCompletion {
			ordered(PathCompletionDate, path, completion, t)
		}
		if hasVerification {
			ordered(path, PathVerificationDate, t, verification)
		}
	}
	if hasCompletion && hasVerification {
		ordered(PathCompletionDate, PathVerificationDate, completion, verification)
	}

	// Advisory proximity window between screening and follow-up visit.
	screening, okS := dates[PathScreeningDate]
	followUp, okF := dates[PathFollowUpDate]
	if okS && okF && active.Active(PathScreeningDate) && active.Active(PathFollowUpDate) {
		if followUp.Sub(screening) > followUpProximityDays*24*time.Hour {
			result.Warnings = append(result.Warnings, Issue{
				Code:      IssueProximity,
				Path:      PathFollowUpDate,
				OtherPath: PathScreeningDate,
				Message: fmt.Sprintf("follow-up visit should occur within %d days of the screening",
					followUpProximityDays),
			})
		}
	}

	return result
}
