package assessment

import "fmt"

// VariantKind is the document variant selected by the A0250 discriminant.
type VariantKind string

const (
	VariantAdmission   VariantKind = "admission"
	VariantUpdateVisit VariantKind = "update-visit"
	VariantDischarge   VariantKind = "discharge"
)

// A0250 record reason codes.
const (
	ReasonAdmission          = "01"
	ReasonTransferInpatient  = "02"
	ReasonTransferReturn     = "03"
	ReasonDeathAtHome        = "04"
	ReasonUpdateVisit1       = "05"
	ReasonUpdateVisit2       = "06"
	ReasonTransferRevocation = "07"
	ReasonDeathInFacility    = "08"
	ReasonDischarge          = "09"
)

// reasonVariants maps every discriminant code to its variant. Transfer and
// death codes use the discharge field set.
var reasonVariants = map[string]VariantKind{
	ReasonAdmission:          VariantAdmission,
	ReasonTransferInpatient:  VariantDischarge,
	ReasonTransferReturn:     VariantDischarge,
	ReasonDeathAtHome:        VariantDischarge,
	ReasonUpdateVisit1:       VariantUpdateVisit,
	ReasonUpdateVisit2:       VariantUpdateVisit,
	ReasonTransferRevocation: VariantDischarge,
	ReasonDeathInFacility:    VariantDischarge,
	ReasonDischarge:          VariantDischarge,
}

// FieldSet is the set of fields that exist at all for a variant, before any
// conditional logic runs. The evaluator and reconciler consult it so that
// admission-only fields never appear outside an admission record.
type FieldSet struct {
	Variant VariantKind
	paths   map[string]bool
}

// Has reports whether a field exists for this variant.
func (fs FieldSet) Has(path string) bool { return fs.paths[path] }

// Paths returns the member paths in dictionary order.
func (fs FieldSet) Paths() []string {
	out := make([]string, 0, len(fs.paths))
	for _, p := range DictionaryOrder {
		if fs.paths[p] {
			out = append(out, p)
		}
	}
	return out
}

// SelectVariant maps a discriminant code to its variant kind and field-set
// definition. Unknown codes are rejected.
func SelectVariant(reason string) (FieldSet, error) {
	variant, ok := reasonVariants[reason]
	if !ok {
		return FieldSet{}, fmt.Errorf("unknown record reason code %q", reason)
	}
	fs := FieldSet{Variant: variant, paths: make(map[string]bool, len(Dictionary))}
	for path, def := range Dictionary {
		if def.AdmissionOnly && variant != VariantAdmission {
			continue
		}
		fs.paths[path] = true
	}
	return fs, nil
}
