package assessment

// Field paths. Sub-fields use a dot plus a capital option letter, e.g.
// "J2051.A". The bowel-regimen date sub-field follows the same scheme as
// every other sub-field in the dictionary.
const (
	PathReason      = "A0250" // record reason, the variant discriminant
	PathAdmitDate   = "A0220"
	PathSiteOfCare  = "A0260"
	PathEthnicity   = "A1005"
	PathRace        = "A1010"
	PathLanguage    = "A1110.A"
	PathInterpreter = "A1110.B"

	PathScreening     = "J2030"
	PathScreeningDate = "J2030.A"
	PathImpactAssess  = "J2040"

	PathFollowUp       = "J2050"
	PathFollowUpDate   = "J2050.A"
	PathFollowUpReason = "J2050.B"

	PathBowelRegimen     = "J2051"
	PathBowelRegimenDate = "J2051.A"

	PathSkinConditions = "M1190"
	PathSkinTypes      = "M1195"
	PathSkinTreatments = "M1200"

	PathOpioidScheduled = "N0500"
	PathOpioidPRN       = "N0510"

	PathCompletionDate   = "Z0300"
	PathSignatures       = "Z0400"
	PathVerificationDate = "Z0500"
)

// SymptomSlots lists the eight symptom slots of the impact assessment, in
// option-letter order. The follow-up reassessment repeats the same slots
// under J2052.
var SymptomSlots = []struct {
	Letter string
	Name   string
}{
	{"A", "Pain"},
	{"B", "Shortness of breath"},
	{"C", "Anxiety"},
	{"D", "Nausea"},
	{"E", "Vomiting"},
	{"F", "Diarrhea"},
	{"G", "Constipation"},
	{"H", "Agitation"},
}

// ImpactSlotPath returns the assessment slot path for a symptom letter.
func ImpactSlotPath(letter string) string { return PathImpactAssess + "." + letter }

// ReassessSlotPath returns the follow-up reassessment slot path.
func ReassessSlotPath(letter string) string { return "J2052." + letter }

// Symptom impact codes, a closed five-value set.
const (
	ImpactNotPresent = "0"
	ImpactSlight     = "1"
	ImpactModerate   = "2"
	ImpactSevere     = "3"
	ImpactNoResponse = "9"
)

var impactOptions = []Option{
	{ImpactNotPresent, "Not at all"},
	{ImpactSlight, "Slightly"},
	{ImpactModerate, "Moderately"},
	{ImpactSevere, "Severely"},
	{ImpactNoResponse, "Unable to respond"},
}

var yesNoOptions = []Option{
	{"0", "No"},
	{"1", "Yes"},
}

// Dictionary indexes every field definition by path.
var Dictionary = map[string]FieldDef{}

// DictionaryOrder lists field paths in instrument order.
var DictionaryOrder []string

func register(defs ...FieldDef) {
	for _, d := range defs {
		Dictionary[d.Path] = d
		DictionaryOrder = append(DictionaryOrder, d.Path)
	}
}

func init() {
	register(
		FieldDef{Path: PathReason, Label: "Reason for record", Kind: KindCode, Required: true, Options: []Option{
			{ReasonAdmission, "Admission"},
			{ReasonTransferInpatient, "Transfer to inpatient facility"},
			{ReasonTransferReturn, "Return from transfer"},
			{ReasonDeathAtHome, "Death at home"},
			{ReasonUpdateVisit1, "Update visit 1"},
			{ReasonUpdateVisit2, "Update visit 2"},
			{ReasonTransferRevocation, "Transfer due to revocation"},
			{ReasonDeathInFacility, "Death in facility"},
			{ReasonDischarge, "Discharge"},
		}},
		FieldDef{Path: PathAdmitDate, Label: "Admission date", Kind: KindDate, Required: true},
		FieldDef{Path: PathSiteOfCare, Label: "Site of service at admission", Kind: KindCode, Required: true, AdmissionOnly: true, Options: []Option{
			{"1", "Home"},
			{"2", "Assisted living facility"},
			{"3", "Nursing facility"},
			{"4", "Hospice inpatient unit"},
			{"5", "Hospital"},
		}},
		FieldDef{Path: PathEthnicity, Label: "Ethnicity", Kind: KindCheckGroup, Required: true, AdmissionOnly: true, NoneOption: "X", Options: []Option{
			{"A", "Mexican, Mexican American, Chicano"},
			{"B", "Puerto Rican"},
			{"C", "Cuban"},
			{"D", "Another Hispanic, Latino, or Spanish origin"},
			{"X", "No, not of Hispanic, Latino, or Spanish origin"},
		}},
		FieldDef{Path: PathRace, Label: "Race", Kind: KindCheckGroup, Required: true, AdmissionOnly: true, NoneOption: "X", Options: []Option{
			{"A", "White"},
			{"B", "Black or African American"},
			{"C", "American Indian or Alaska Native"},
			{"D", "Asian"},
			{"E", "Native Hawaiian or Other Pacific Islander"},
			{"X", "Unable to determine"},
		}},
		FieldDef{Path: PathLanguage, Label: "Preferred language", Kind: KindText, AdmissionOnly: true},
		FieldDef{Path: PathInterpreter, Label: "Interpreter needed", Kind: KindCode, AdmissionOnly: true, Options: yesNoOptions},
	)

	register(
		FieldDef{Path: PathScreening, Label: "Symptom impact screening completed", Kind: KindCode, Required: true, Options: yesNoOptions},
		FieldDef{Path: PathScreeningDate, Label: "Screening date", Kind: KindDate},
		FieldDef{Path: PathImpactAssess, Label: "Symptom impact assessment completed", Kind: KindCode, Options: yesNoOptions},
	)
	for _, s := range SymptomSlots {
		register(FieldDef{Path: ImpactSlotPath(s.Letter), Label: s.Name + " impact", Kind: KindCode, Options: impactOptions})
	}
	register(
		FieldDef{Path: PathFollowUp, Label: "Symptom follow-up visit completed", Kind: KindCode, Options: yesNoOptions},
		FieldDef{Path: PathFollowUpDate, Label: "Follow-up visit date", Kind: KindDate},
		FieldDef{Path: PathFollowUpReason, Label: "Reason follow-up visit not completed", Kind: KindCode, Options: []Option{
			{"1", "Patient or caregiver declined"},
			{"2", "Patient unavailable"},
			{"3", "Patient expired"},
			{"4", "Discharged before visit"},
		}},
	)
	for _, s := range SymptomSlots {
		register(FieldDef{Path: ReassessSlotPath(s.Letter), Label: s.Name + " impact at follow-up", Kind: KindCode, Options: impactOptions})
	}
	register(
		FieldDef{Path: PathBowelRegimen, Label: "Bowel regimen initiated or continued", Kind: KindCode, Options: []Option{
			{"0", "No"},
			{"1", "Yes"},
			{"2", "No, but reason documented"},
		}},
		FieldDef{Path: PathBowelRegimenDate, Label: "Date reason documented", Kind: KindDate},
	)

	register(
		FieldDef{Path: PathSkinConditions, Label: "Skin conditions present", Kind: KindCode, Required: true, Options: yesNoOptions},
		FieldDef{Path: PathSkinTypes, Label: "Type of skin conditions", Kind: KindCheckGroup, NoneOption: "Z", Options: []Option{
			{"A", "Pressure ulcer or injury"},
			{"B", "Venous or arterial ulcer"},
			{"C", "Diabetic foot ulcer"},
			{"D", "Open lesion other than ulcer"},
			{"E", "Surgical wound"},
			{"F", "Skin tear"},
			{"Z", "None of the above"},
		}},
		FieldDef{Path: PathSkinTreatments, Label: "Skin treatments in place", Kind: KindCheckGroup, NoneOption: "Z", Options: []Option{
			{"A", "Pressure-reducing device"},
			{"B", "Turning or repositioning program"},
			{"C", "Nutrition or hydration intervention"},
			{"D", "Ulcer or wound care"},
			{"E", "Application of dressings"},
			{"Z", "None of the above"},
		}},
	)

	register(
		FieldDef{Path: PathOpioidScheduled, Label: "Scheduled opioid initiated or continued", Kind: KindCode, Required: true, Options: yesNoOptions},
		FieldDef{Path: PathOpioidPRN, Label: "PRN opioid initiated or continued", Kind: KindCode, Required: true, Options: yesNoOptions},
	)

	register(
		FieldDef{Path: PathCompletionDate, Label: "Record completion date", Kind: KindDate, Required: true},
		FieldDef{Path: PathSignatures, Label: "Signatures of persons completing the record", Kind: KindSignatureList, Required: true},
		FieldDef{Path: PathVerificationDate, Label: "Verification date", Kind: KindDate, Required: true},
	)
}
