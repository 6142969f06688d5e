package assessment

// Reconcile clears the value of every field that was active before a
// mutation and is not active after it. It runs synchronously on the mutation
// path so no observable state ever holds a value that is out of scope.
func Reconcile(prev, next ActiveSet, rec *Record) {
	for path := range prev {
		if !next.Active(path) {
			rec.Clear(path)
		}
	}
}

// ApplyClearRules wipes the targets of every clear rule whose predicate no
// longer holds. Reconcile only sees fields leaving the active set, so this
// is what catches values that never entered one, e.g. a draft loaded from
// storage that was written by an older rule table.
func ApplyClearRules(rec *Record) {
	for _, rule := range clearRules() {
		if rule.When(rec) {
			continue
		}
		for _, target := range rule.Targets {
			rec.Clear(target)
		}
	}
}
