package lexicon

// Module identifies one of the four clinical knowledge areas.
type Module string

const (
	ModuleWarningSigns  Module = "M1" // ten warning signs vs. normal aging
	ModuleStage         Module = "M2" // progression stage (mild/moderate/severe)
	ModuleBPSD          Module = "M3" // behavioral and psychological symptoms
	ModuleCareResources Module = "M4" // care-resource navigation
)

// All returns the modules in canonical order.
func All() []Module {
	return []Module{ModuleWarningSigns, ModuleStage, ModuleBPSD, ModuleCareResources}
}

// Parse maps a module code (e.g. "M3") to a Module.
func Parse(s string) (Module, bool) {
	switch Module(s) {
	case ModuleWarningSigns, ModuleStage, ModuleBPSD, ModuleCareResources:
		return Module(s), true
	}
	return "", false
}

// Bucket groups a matched-signal count into a narrative template bucket.
type Bucket int

const (
	BucketNone   Bucket = iota // no signals matched
	BucketSingle               // exactly one
	BucketPair                 // exactly two
	BucketMany                 // three or more
)

// BucketFor returns the template bucket for a matched-signal count.
func BucketFor(count int) Bucket {
	switch {
	case count <= 0:
		return BucketNone
	case count == 1:
		return BucketSingle
	case count == 2:
		return BucketPair
	default:
		return BucketMany
	}
}
