package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates assessment drafts: it owns no conditional logic
// itself, it runs each mutation through a Session and persists the
// reconciled result.
type Service struct {
	repo AssessmentRepository
	now  func() time.Time
}

func NewService(repo AssessmentRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the service clock, for tests that validate against a
// fixed submission time.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateAssessment opens a new draft for the given record reason.
func (s *Service) CreateAssessment(ctx context.Context, patientID uuid.UUID, reason string, createdBy *uuid.UUID) (*Assessment, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	sess, err := NewSession(reason)
	if err != nil {
		return nil, err
	}
	a := &Assessment{
		PatientID:   patientID,
		Reason:      reason,
		Variant:     string(sess.Variant()),
		Status:      StatusInProgress,
		Record:      sess.Record(),
		CreatedByID: createdBy,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteAssessment discards a draft. Submitted records are immutable and
// cannot be deleted through the editing surface.
func (s *Service) DeleteAssessment(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == StatusSubmitted {
		return fmt.Errorf("submitted record cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAssessments(ctx context.Context, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListAssessmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// SetField applies one scalar field mutation and persists the reconciled
// record.
func (s *Service) SetField(ctx context.Context, id uuid.UUID, path, value string) (*Assessment, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.SetField(path, value)
	})
}

// SetOption toggles one checkbox-group option and persists the reconciled,
// exclusion-normalized record.
func (s *Service) SetOption(ctx context.Context, id uuid.UUID, group, option string, checked bool) (*Assessment, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.SetOption(group, option, checked)
	})
}

// AddSignature appends a Z0400 entry.
func (s *Service) AddSignature(ctx context.Context, id uuid.UUID, e SignatureEntry) (*Assessment, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.AddSignature(e)
	})
}

// RemoveSignature deletes a Z0400 entry by index.
func (s *Service) RemoveSignature(ctx context.Context, id uuid.UUID, index int) (*Assessment, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.RemoveSignature(index)
	})
}

// ActiveFields returns the current active set for a draft.
func (s *Service) ActiveFields(ctx context.Context, id uuid.UUID) (ActiveSet, error) {
	sess, _, err := s.resume(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.ActiveFields(), nil
}

// Validate runs the temporal validator for live advisory use, without
// touching the stored draft.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (ValidationResult, error) {
	sess, _, err := s.resume(ctx, id)
	if err != nil {
		return ValidationResult{}, err
	}
	return sess.Validate(), nil
}

// Finalize validates the draft for submission. On success the stored record
// becomes the immutable submitted snapshot; on failure nothing is written
// and the blocking issues are returned.
func (s *Service) Finalize(ctx context.Context, id uuid.UUID) (*Assessment, ValidationResult, error) {
	sess, a, err := s.resume(ctx, id)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	snapshot, result, err := sess.Finalize()
	if err != nil {
		return nil, ValidationResult{}, err
	}
	if !result.OK() {
		return nil, result, nil
	}
	now := s.now()
	a.Record = snapshot
	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, ValidationResult{}, err
	}
	return a, result, nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Assessment, error) {
	sess, a, err := s.resume(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	a.Record = sess.Record()
	a.Reason = a.Record.Get(PathReason)
	a.Variant = string(sess.Variant())
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) resume(ctx context.Context, id uuid.UUID) (*Session, *Assessment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if a.Status == StatusSubmitted {
		return nil, nil, fmt.Errorf("record already submitted")
	}
	sess, err := ResumeSession(a.Record)
	if err != nil {
		return nil, nil, err
	}
	sess.SetClock(s.now)
	return sess, a, nil
}
