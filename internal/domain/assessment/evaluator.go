package assessment

// ActiveSet is the derived set of currently visible fields, each tagged
// required or optional. It is recomputed from scratch on every mutation and
// never persisted.
type ActiveSet map[string]bool

// Active reports whether the field is currently visible.
func (a ActiveSet) Active(path string) bool {
	_, ok := a[path]
	return ok
}

// Required reports whether the field is currently visible and required.
func (a ActiveSet) Required(path string) bool {
	return a[path]
}

// Equal reports whether two active sets contain the same fields with the
// same required tags.
func (a ActiveSet) Equal(b ActiveSet) bool {
	if len(a) != len(b) {
		return false
	}
	for path, req := range a {
		other, ok := b[path]
		if !ok || other != req {
			return false
		}
	}
	return true
}

// Evaluate computes the active field set for the current record values. It
// is pure and deterministic: same record, same field set, same result.
//
// A field is visible iff the variant field set contains it, every governing
// rule's predicate holds, and every trigger of every governing rule is itself
// visible. The last condition is the transitive cascade: hiding the screening
// item hides the impact assessment, the follow-up visit and the reassessment
// slots in one pass, regardless of what stale values those fields hold.
func Evaluate(rec *Record, fs FieldSet) ActiveSet {
	visMemo := make(map[string]bool)

	var visible func(path string) bool
	visible = func(path string) bool {
		if v, ok := visMemo[path]; ok {
			return v
		}
		// The rule table is acyclic; mark the path hidden while resolving so
		// a malformed table terminates instead of recursing forever.
		visMemo[path] = false

		v := fs.Has(path)
		if v {
			for _, rule := range rulesByTarget[path] {
				if !rule.When(rec) {
					v = false
					break
				}
				for _, trigger := range rule.Triggers {
					if !visible(trigger) {
						v = false
						break
					}
				}
				if !v {
					break
				}
			}
		}
		visMemo[path] = v
		return v
	}

	active := make(ActiveSet)
	for path, def := range Dictionary {
		if !visible(path) {
			continue
		}
		required := def.Required
		for _, rule := range rulesByTarget[path] {
			if rule.Effect == EffectRequire {
				required = true
			}
		}
		active[path] = required
	}
	return active
}
