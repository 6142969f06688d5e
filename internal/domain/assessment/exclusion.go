package assessment

// ApplyExclusion enforces the none-option invariant for a single checkbox
// group after one option changed. If the designated none option was just
// checked, every sibling is forced false; if any other option was just
// checked, the none option is forced false. The operation never reaches
// across groups.
func ApplyExclusion(rec *Record, group, changedOption string) {
	def, ok := Dictionary[group]
	if !ok || def.NoneOption == "" {
		return
	}
	if !rec.OptionChecked(group, changedOption) {
		// Unchecking never creates a conflict.
		return
	}
	if changedOption == def.NoneOption {
		for _, opt := range def.Options {
			if opt.Code != def.NoneOption {
				rec.SetOption(group, opt.Code, false)
			}
		}
		return
	}
	rec.SetOption(group, def.NoneOption, false)
}

// NormalizeExclusions re-establishes the invariant for every group after a
// bulk set, e.g. a record loaded from storage. It runs after all values are
// in place so the outcome does not depend on the order options were written:
// when the none option and any sibling are both true, the siblings win.
func NormalizeExclusions(rec *Record) {
	for _, group := range exclusionGroups() {
		def := Dictionary[group]
		others := false
		for _, opt := range def.Options {
			if opt.Code != def.NoneOption && rec.OptionChecked(group, opt.Code) {
				others = true
				break
			}
		}
		if others {
			rec.SetOption(group, def.NoneOption, false)
		}
	}
}
