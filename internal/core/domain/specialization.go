package domain

import "strings"

// Specialization is the fixed category of diagnostic testing a lab
// technician is qualified for.
type Specialization string

const (
	SpecializationHematology           Specialization = "HEMATOLOGY"
	SpecializationBiochemistry         Specialization = "BIOCHEMISTRY"
	SpecializationMicrobiology         Specialization = "MICROBIOLOGY"
	SpecializationImmunology           Specialization = "IMMUNOLOGY"
	SpecializationPathology            Specialization = "PATHOLOGY"
	SpecializationUrinalysis           Specialization = "URINALYSIS"
	SpecializationEndocrinology        Specialization = "ENDOCRINOLOGY"
	SpecializationToxicology           Specialization = "TOXICOLOGY"
	SpecializationMolecularDiagnostics Specialization = "MOLECULAR_DIAGNOSTICS"
	SpecializationGeneral              Specialization = "GENERAL"
)

var specializations = map[Specialization]struct{}{
	SpecializationHematology:           {},
	SpecializationBiochemistry:         {},
	SpecializationMicrobiology:         {},
	SpecializationImmunology:           {},
	SpecializationPathology:            {},
	SpecializationUrinalysis:           {},
	SpecializationEndocrinology:        {},
	SpecializationToxicology:           {},
	SpecializationMolecularDiagnostics: {},
	SpecializationGeneral:              {},
}

// ParseSpecialization normalizes case and surrounding whitespace before
// matching against the fixed enumeration.
func ParseSpecialization(str string) (Specialization, bool) {
	candidate := Specialization(strings.ToUpper(strings.TrimSpace(str)))
	if _, ok := specializations[candidate]; ok {
		return candidate, true
	}
	return "", false
}

type ResolutionSource string

const (
	ResolutionSourceDirect   ResolutionSource = "direct"
	ResolutionSourceCatalog  ResolutionSource = "catalog"
	ResolutionSourceFallback ResolutionSource = "fallback"
	ResolutionSourceNone     ResolutionSource = "none"
)

// SpecializationResolution is the explicit outcome of the hint resolution
// chain. Resolved=false means no specialization filter is applied, which
// callers can now tell apart from a filter that matched.
type SpecializationResolution struct {
	Value    Specialization
	Resolved bool
	Source   ResolutionSource
}

func ResolvedSpecialization(value Specialization, source ResolutionSource) SpecializationResolution {
	return SpecializationResolution{Value: value, Resolved: true, Source: source}
}

func UnresolvedSpecialization() SpecializationResolution {
	return SpecializationResolution{Source: ResolutionSourceNone}
}
