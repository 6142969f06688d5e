package assessment

import (
	"testing"
	"time"
)

func fixedClock(date string) func() time.Time {
	t, _ := time.Parse(DateLayout, date)
	return func() time.Time { return t }
}

func TestNewSession(t *testing.T) {
	sess, err := NewSession(ReasonAdmission)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Variant() != VariantAdmission {
		t.Errorf("expected admission variant, got %s", sess.Variant())
	}
	if sess.State() != StateVariantSelected {
		t.Errorf("expected variant-selected state, got %s", sess.State())
	}
	if got := sess.Record().Get(PathReason); got != ReasonAdmission {
		t.Errorf("discriminant should be pre-set, got %q", got)
	}
}

func TestNewSession_UnknownReason(t *testing.T) {
	if _, err := NewSession("42"); err == nil {
		t.Fatal("expected error for unknown reason code")
	}
}

func TestSession_SetFieldValidation(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)

	if err := sess.SetField("B9999", "1"); err == nil {
		t.Error("expected error for unknown path")
	}
	if err := sess.SetField(PathRace, "A"); err == nil {
		t.Error("expected error writing a checkbox group as a scalar")
	}
	if err := sess.SetField(PathSiteOfCare, "1"); err == nil {
		t.Error("expected error for admission-only field on a discharge record")
	}
	if err := sess.SetField(PathScreening, "7"); err == nil {
		t.Error("expected error for a code outside the option list")
	}
	if err := sess.SetField(PathScreening, "1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// An inactive field never accepts a write, so no stored value can bypass
// its governing conditions.
func TestSession_RejectsInactiveWrites(t *testing.T) {
	sess, _ := NewSession(ReasonAdmission)

	if err := sess.SetField(PathScreeningDate, "2024-01-05"); err == nil {
		t.Error("expected error writing the screening date before the screening is completed")
	}
	if !sess.Record().Empty(PathScreeningDate) {
		t.Error("rejected write must leave the field empty")
	}
	if err := sess.SetField(PathInterpreter, "1"); err == nil {
		t.Error("expected error writing the interpreter item before a language is recorded")
	}
	if err := sess.SetOption(PathSkinTypes, "A", true); err == nil {
		t.Error("expected error checking a skin type before conditions are reported")
	}
	if !sess.Record().Empty(PathSkinTypes) {
		t.Error("rejected option write must leave the group empty")
	}

	// The same fields accept writes once their triggers hold.
	sess.SetField(PathScreening, "1")
	if err := sess.SetField(PathScreeningDate, "2024-01-05"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	sess.SetField(PathSkinConditions, "1")
	if err := sess.SetOption(PathSkinTypes, "A", true); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// Clearing a trigger clears every dependent value in the same mutation.
func TestSession_ReconcileCascade(t *testing.T) {
	sess, _ := NewSession(ReasonAdmission)
	steps := [][2]string{
		{PathScreening, "1"},
		{PathScreeningDate, "2024-01-16"},
		{PathImpactAssess, "1"},
		{ImpactSlotPath("A"), ImpactSevere},
		{PathFollowUp, "1"},
		{PathFollowUpDate, "2024-01-18"},
		{ReassessSlotPath("A"), ImpactSlight},
	}
	for _, step := range steps {
		if err := sess.SetField(step[0], step[1]); err != nil {
			t.Fatalf("set %s: %v", step[0], err)
		}
	}

	if err := sess.SetField(PathScreening, "0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := sess.Record()
	for _, path := range []string{PathScreeningDate, PathImpactAssess, ImpactSlotPath("A"),
		PathFollowUp, PathFollowUpDate, ReassessSlotPath("A")} {
		if !rec.Empty(path) {
			t.Errorf("%s should have been cleared when the screening flipped to not completed", path)
		}
	}
	active := sess.ActiveFields()
	for _, path := range []string{PathScreeningDate, PathImpactAssess, PathFollowUp} {
		if active.Active(path) {
			t.Errorf("%s should be inactive after the cascade", path)
		}
	}
}

// Downgrading the only threshold symptom deactivates the follow-up item, and
// reconciling its value must not resurrect anything downstream.
func TestSession_ThresholdWithdrawal(t *testing.T) {
	sess, _ := NewSession(ReasonAdmission)
	sess.SetField(PathScreening, "1")
	sess.SetField(PathImpactAssess, "1")
	sess.SetField(ImpactSlotPath("G"), ImpactModerate)
	sess.SetField(PathFollowUp, "0")
	sess.SetField(PathFollowUpReason, "1")

	if err := sess.SetField(ImpactSlotPath("G"), ImpactSlight); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := sess.Record()
	if !rec.Empty(PathFollowUp) || !rec.Empty(PathFollowUpReason) {
		t.Error("follow-up values should be cleared once no symptom reaches the threshold")
	}
	if sess.ActiveFields().Active(PathFollowUp) {
		t.Error("follow-up should be inactive once no symptom reaches the threshold")
	}
}

func TestSession_DiscriminantChangeDropsAdmissionFields(t *testing.T) {
	sess, _ := NewSession(ReasonAdmission)
	sess.SetField(PathSiteOfCare, "1")
	sess.SetField(PathLanguage, "Spanish")
	sess.SetOption(PathRace, "A", true)
	sess.SetField(PathAdmitDate, "2024-01-15")

	if err := sess.SetField(PathReason, ReasonDischarge); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Variant() != VariantDischarge {
		t.Errorf("expected discharge variant, got %s", sess.Variant())
	}

	rec := sess.Record()
	for _, path := range []string{PathSiteOfCare, PathLanguage, PathRace} {
		if !rec.Empty(path) {
			t.Errorf("%s should be dropped when the variant no longer carries it", path)
		}
	}
	if rec.Get(PathAdmitDate) != "2024-01-15" {
		t.Error("shared fields must survive a discriminant change")
	}
}

func TestSession_DiscriminantChangeRejectsUnknownCode(t *testing.T) {
	sess, _ := NewSession(ReasonAdmission)
	sess.SetField(PathAdmitDate, "2024-01-15")

	if err := sess.SetField(PathReason, "77"); err == nil {
		t.Fatal("expected error for unknown reason code")
	}
	if sess.Variant() != VariantAdmission {
		t.Error("failed discriminant change must leave the variant unchanged")
	}
	if sess.Record().Get(PathAdmitDate) != "2024-01-15" {
		t.Error("failed discriminant change must leave the record unchanged")
	}
}

func TestSession_MutualExclusion(t *testing.T) {
	sess, _ := NewSession(ReasonAdmission)

	sess.SetOption(PathRace, "A", true)
	sess.SetOption(PathRace, "B", true)
	sess.SetOption(PathRace, "X", true)
	rec := sess.Record()
	if rec.OptionChecked(PathRace, "A") || rec.OptionChecked(PathRace, "B") {
		t.Error("checking the none option must clear every sibling")
	}
	if !rec.OptionChecked(PathRace, "X") {
		t.Error("the none option itself should be set")
	}

	sess.SetOption(PathRace, "D", true)
	rec = sess.Record()
	if rec.OptionChecked(PathRace, "X") {
		t.Error("checking a sibling must clear the none option")
	}
	if !rec.OptionChecked(PathRace, "D") {
		t.Error("the sibling should be set")
	}

	// Unchecking never creates a conflict.
	sess.SetOption(PathRace, "D", false)
	if !sess.Record().Empty(PathRace) {
		t.Error("group should be empty after unchecking the only option")
	}
}

func TestSession_SetOptionValidation(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)
	if err := sess.SetOption(PathAdmitDate, "A", true); err == nil {
		t.Error("expected error for a non-group field")
	}
	if err := sess.SetOption(PathRace, "A", true); err == nil {
		t.Error("expected error for an admission-only group on a discharge record")
	}
	if err := sess.SetOption(PathSkinTypes, "Q", true); err == nil {
		t.Error("expected error for an option outside the group")
	}
}

func TestSession_SkinConditionGroups(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)

	if sess.ActiveFields().Active(PathSkinTypes) {
		t.Error("skin type group should be hidden before conditions are reported")
	}

	sess.SetField(PathSkinConditions, "1")
	active := sess.ActiveFields()
	if !active.Required(PathSkinTypes) || !active.Required(PathSkinTreatments) {
		t.Error("reporting skin conditions should require both detail groups")
	}

	sess.SetOption(PathSkinTypes, "A", true)
	sess.SetOption(PathSkinTreatments, "Z", true)

	sess.SetField(PathSkinConditions, "0")
	rec := sess.Record()
	if !rec.Empty(PathSkinTypes) || !rec.Empty(PathSkinTreatments) {
		t.Error("detail groups should be cleared when conditions are withdrawn")
	}
}

// A draft loaded from storage is normalized through the same pipeline, so
// values whose governing conditions no longer hold never enter the session.
func TestResumeSession_StripsStaleValues(t *testing.T) {
	rec := NewRecord()
	rec.Set(PathReason, ReasonAdmission)
	rec.Set(PathScreening, "0")
	rec.Set(PathImpactAssess, "1")
	rec.Set(ImpactSlotPath("A"), ImpactSevere)
	rec.Set(PathFollowUp, "1")
	rec.Set(PathFollowUpDate, "2024-01-20")
	// Admission-only value on a record about to resume as admission is kept.
	rec.Set(PathSiteOfCare, "1")

	sess, err := ResumeSession(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := sess.Record()
	for _, path := range []string{PathImpactAssess, ImpactSlotPath("A"), PathFollowUp, PathFollowUpDate} {
		if !got.Empty(path) {
			t.Errorf("%s should be stripped on resume", path)
		}
	}
	if got.Get(PathScreening) != "0" || got.Get(PathSiteOfCare) != "1" {
		t.Error("in-scope values must survive resume")
	}
}

func TestResumeSession_DropsOutOfVariantValues(t *testing.T) {
	rec := NewRecord()
	rec.Set(PathReason, ReasonDischarge)
	rec.Set(PathSiteOfCare, "1")
	rec.SetOption(PathEthnicity, "A", true)

	sess, err := ResumeSession(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := sess.Record()
	if !got.Empty(PathSiteOfCare) || !got.Empty(PathEthnicity) {
		t.Error("admission-only values must be dropped on a discharge record")
	}
	_ = sess
}

func TestResumeSession_NormalizesExclusions(t *testing.T) {
	rec := NewRecord()
	rec.Set(PathReason, ReasonDischarge)
	rec.Set(PathSkinConditions, "1")
	rec.SetOption(PathSkinTypes, "A", true)
	rec.SetOption(PathSkinTypes, "Z", true)

	sess, err := ResumeSession(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := sess.Record()
	if got.OptionChecked(PathSkinTypes, "Z") {
		t.Error("none option should lose against a checked sibling on bulk load")
	}
	if !got.OptionChecked(PathSkinTypes, "A") {
		t.Error("sibling should survive normalization")
	}
}

func fillDischargeRequired(t *testing.T, sess *Session) {
	t.Helper()
	steps := [][2]string{
		{PathAdmitDate, "2024-01-01"},
		{PathScreening, "0"},
		{PathSkinConditions, "0"},
		{PathOpioidScheduled, "0"},
		{PathOpioidPRN, "0"},
		{PathCompletionDate, "2024-02-01"},
		{PathVerificationDate, "2024-02-02"},
	}
	for _, step := range steps {
		if err := sess.SetField(step[0], step[1]); err != nil {
			t.Fatalf("set %s: %v", step[0], err)
		}
	}
	if err := sess.AddSignature(SignatureEntry{Name: "RN Alvarez", Title: "RN", SectionsCompleted: "A,J,M,N,Z", Date: "2024-02-01"}); err != nil {
		t.Fatalf("add signature: %v", err)
	}
}

func TestSession_StateMachine(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)
	sess.SetClock(fixedClock("2024-03-01"))

	if sess.State() != StateVariantSelected {
		t.Fatalf("expected variant-selected, got %s", sess.State())
	}

	fillDischargeRequired(t, sess)
	if sess.State() != StateSectionsComplete {
		t.Fatalf("expected sections-complete, got %s", sess.State())
	}

	// Blanking a required field moves the session back.
	sess.SetField(PathScreening, "")
	if sess.State() != StateVariantSelected {
		t.Fatalf("expected variant-selected after blanking, got %s", sess.State())
	}
	sess.SetField(PathScreening, "0")

	snapshot, result, err := sess.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected clean finalize, got %v", result.Errors)
	}
	if snapshot == nil {
		t.Fatal("expected submitted snapshot")
	}
	if sess.State() != StateSubmitted {
		t.Fatalf("expected submitted, got %s", sess.State())
	}

	// Submitted is terminal.
	if err := sess.SetField(PathScreening, "1"); err == nil {
		t.Error("mutations after submission must be rejected")
	}
	if err := sess.AddSignature(SignatureEntry{Name: "Late"}); err == nil {
		t.Error("signature mutations after submission must be rejected")
	}
	if _, _, err := sess.Finalize(); err == nil {
		t.Error("double finalize must be rejected")
	}
}

func TestSession_FinalizeReportsMissingRequired(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)
	sess.SetClock(fixedClock("2024-03-01"))
	sess.SetField(PathAdmitDate, "2024-01-01")

	snapshot, result, err := sess.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if snapshot != nil {
		t.Fatal("failed finalize must not produce a snapshot")
	}
	if result.OK() {
		t.Fatal("expected blocking issues")
	}
	missing := map[string]bool{}
	for _, issue := range result.Errors {
		if issue.Code != IssueMissingRequired {
			t.Errorf("unexpected issue %v", issue)
		}
		missing[issue.Path] = true
	}
	for _, path := range []string{PathScreening, PathSkinConditions, PathOpioidScheduled,
		PathOpioidPRN, PathCompletionDate, PathSignatures, PathVerificationDate} {
		if !missing[path] {
			t.Errorf("expected missing-required issue for %s", path)
		}
	}
	if sess.State() == StateSubmitted {
		t.Error("failed finalize must leave the session editable")
	}

	// The record is still editable and a later finalize can succeed.
	fillDischargeRequired(t, sess)
	if _, result, err := sess.Finalize(); err != nil || !result.OK() {
		t.Fatalf("expected clean finalize after filling, got %v / %v", result.Errors, err)
	}
}

func TestSession_FinalizeBlockedByOrdering(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)
	sess.SetClock(fixedClock("2024-03-01"))
	fillDischargeRequired(t, sess)
	sess.SetField(PathAdmitDate, "2024-02-15") // after completion date

	_, result, err := sess.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if result.OK() {
		t.Fatal("expected ordering violation to block finalize")
	}
	if sess.State() == StateSubmitted {
		t.Error("blocked finalize must not transition to submitted")
	}
}

func TestSession_SignatureFlow(t *testing.T) {
	sess, _ := NewSession(ReasonDischarge)

	for i := 0; i < MaxSignatures; i++ {
		if err := sess.AddSignature(SignatureEntry{Name: "Clinician", Date: "2024-02-01"}); err != nil {
			t.Fatalf("signature %d: %v", i, err)
		}
	}
	if err := sess.AddSignature(SignatureEntry{Name: "Thirteenth"}); err == nil {
		t.Fatal("expected rejection past the upper bound")
	}

	for i := 0; i < MaxSignatures-1; i++ {
		if err := sess.RemoveSignature(0); err != nil {
			t.Fatalf("remove %d: %v", i, err)
		}
	}
	if err := sess.RemoveSignature(0); err == nil {
		t.Fatal("expected rejection removing the last signature")
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUninitialized:    "uninitialized",
		StateVariantSelected:  "variant-selected",
		StateSectionsComplete: "sections-complete",
		StateSubmitted:        "submitted",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
