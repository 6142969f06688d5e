package assessment

// Effect is what a dependency rule does to its targets when its predicate
// holds (or, for Clear, what happens to them when it does not).
type Effect int

const (
	// EffectShow makes the targets visible but optional.
	EffectShow Effect = iota
	// EffectRequire makes the targets visible and required.
	EffectRequire
	// EffectClear wipes the targets' values whenever the predicate is false,
	// catching stale values that never passed through an active set, e.g.
	// on records loaded from storage.
	EffectClear
	// EffectMutuallyExclude enforces the group's none-option invariant.
	EffectMutuallyExclude
)

// Predicate decides whether a rule fires for the current record values.
type Predicate func(r *Record) bool

// Rule binds trigger fields to an effect on target fields. Rules are static
// configuration; the set is evaluated as one flat table and must be
// confluent, so no rule may depend on another rule's effect.
type Rule struct {
	Name     string
	Triggers []string
	When     Predicate
	Targets  []string
	Effect   Effect
}

func equals(path, value string) Predicate {
	return func(r *Record) bool { return r.Get(path) == value }
}

func anyEquals(paths []string, value string) Predicate {
	return func(r *Record) bool {
		for _, p := range paths {
			if r.Get(p) == value {
				return true
			}
		}
		return false
	}
}

// anyImpactAtThreshold reports a moderate or severe code in any of the eight
// assessment slots.
func anyImpactAtThreshold(r *Record) bool {
	for _, s := range SymptomSlots {
		switch r.Get(ImpactSlotPath(s.Letter)) {
		case ImpactModerate, ImpactSevere:
			return true
		}
	}
	return false
}

func impactSlotPaths() []string {
	out := make([]string, len(SymptomSlots))
	for i, s := range SymptomSlots {
		out[i] = ImpactSlotPath(s.Letter)
	}
	return out
}

func reassessSlotPaths() []string {
	out := make([]string, len(SymptomSlots))
	for i, s := range SymptomSlots {
		out[i] = ReassessSlotPath(s.Letter)
	}
	return out
}

// Rules is the full dependency table, grouped by section for readability and
// evaluated over the whole record as one flat set.
var Rules = buildRules()

func buildRules() []Rule {
	var rules []Rule

	// Section A. Interpreter need is asked once a preferred language is
	// recorded; it stays optional.
	rules = append(rules,
		Rule{
			Name:     "language-recorded-shows-interpreter",
			Triggers: []string{PathLanguage},
			When:     func(r *Record) bool { return r.Get(PathLanguage) != "" },
			Targets:  []string{PathInterpreter},
			Effect:   EffectShow,
		},
		Rule{Name: "ethnicity-none-option", Targets: []string{PathEthnicity}, Effect: EffectMutuallyExclude},
		Rule{Name: "race-none-option", Targets: []string{PathRace}, Effect: EffectMutuallyExclude},
	)

	// Section J: screening -> impact assessment -> follow-up visit ->
	// reassessment, a three-level chain.
	rules = append(rules,
		Rule{
			Name:     "screening-completed-requires-date",
			Triggers: []string{PathScreening},
			When:     equals(PathScreening, "1"),
			Targets:  []string{PathScreeningDate},
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "screening-completed-requires-assessment",
			Triggers: []string{PathScreening},
			When:     equals(PathScreening, "1"),
			Targets:  []string{PathImpactAssess},
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "assessment-completed-requires-slots",
			Triggers: []string{PathImpactAssess},
			When:     equals(PathImpactAssess, "1"),
			Targets:  impactSlotPaths(),
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "impact-threshold-requires-follow-up",
			Triggers: impactSlotPaths(),
			When:     anyImpactAtThreshold,
			Targets:  []string{PathFollowUp},
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "follow-up-completed-requires-date-and-reassessment",
			Triggers: []string{PathFollowUp},
			When:     equals(PathFollowUp, "1"),
			Targets:  append([]string{PathFollowUpDate}, reassessSlotPaths()...),
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "follow-up-not-completed-requires-reason",
			Triggers: []string{PathFollowUp},
			When:     equals(PathFollowUp, "0"),
			Targets:  []string{PathFollowUpReason},
			Effect:   EffectRequire,
		},
	)

	// Bowel regimen: governed by the two opioid flags in section N.
	opioids := []string{PathOpioidScheduled, PathOpioidPRN}
	rules = append(rules,
		Rule{
			Name:     "opioid-initiated-requires-bowel-regimen",
			Triggers: opioids,
			When:     anyEquals(opioids, "1"),
			Targets:  []string{PathBowelRegimen},
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "opioid-initiated-clears-bowel-regimen",
			Triggers: opioids,
			When:     anyEquals(opioids, "1"),
			Targets:  []string{PathBowelRegimen, PathBowelRegimenDate},
			Effect:   EffectClear,
		},
		Rule{
			Name:     "bowel-regimen-documented-requires-date",
			Triggers: []string{PathBowelRegimen},
			When:     equals(PathBowelRegimen, "2"),
			Targets:  []string{PathBowelRegimenDate},
			Effect:   EffectRequire,
		},
	)

	// Section M: skin condition presence governs both checkbox groups.
	rules = append(rules,
		Rule{
			Name:     "skin-conditions-require-detail-groups",
			Triggers: []string{PathSkinConditions},
			When:     equals(PathSkinConditions, "1"),
			Targets:  []string{PathSkinTypes, PathSkinTreatments},
			Effect:   EffectRequire,
		},
		Rule{
			Name:     "skin-conditions-clear-detail-groups",
			Triggers: []string{PathSkinConditions},
			When:     equals(PathSkinConditions, "1"),
			Targets:  []string{PathSkinTypes, PathSkinTreatments},
			Effect:   EffectClear,
		},
		Rule{Name: "skin-types-none-option", Targets: []string{PathSkinTypes}, Effect: EffectMutuallyExclude},
		Rule{Name: "skin-treatments-none-option", Targets: []string{PathSkinTreatments}, Effect: EffectMutuallyExclude},
	)

	return rules
}

// rulesByTarget indexes the visibility-governing rules (Show and Require) by
// target path. A field with no entry here is always active when its variant
// field set includes it.
var rulesByTarget = func() map[string][]*Rule {
	idx := make(map[string][]*Rule)
	for i := range Rules {
		r := &Rules[i]
		if r.Effect != EffectShow && r.Effect != EffectRequire {
			continue
		}
		for _, t := range r.Targets {
			idx[t] = append(idx[t], r)
		}
	}
	return idx
}()

// clearRules returns the rules with EffectClear.
func clearRules() []*Rule {
	var out []*Rule
	for i := range Rules {
		if Rules[i].Effect == EffectClear {
			out = append(out, &Rules[i])
		}
	}
	return out
}

// exclusionGroups returns the group paths carrying a mutual-exclusion rule.
func exclusionGroups() []string {
	var out []string
	for i := range Rules {
		if Rules[i].Effect == EffectMutuallyExclude {
			out = append(out, Rules[i].Targets...)
		}
	}
	return out
}
