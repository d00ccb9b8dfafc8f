package effect

// Kind tags the family of an effect-size statistic
type Kind string

const (
	KindCohensD     Kind = "cohens_d"
	KindGlassDelta  Kind = "glass_delta"
	KindCorrelation Kind = "r"
	KindCohensF2    Kind = "cohens_f2"
)

// Value is one effect-size statistic together with the sufficient statistics
// it was derived from, kept for auditability. The families are mathematically
// equivalent representations of the same estimated effect; Stats records the
// exact inputs so any conversion can be re-derived.
type Value struct {
	Kind  Kind               `json:"kind"`
	Value float64            `json:"value"`
	Stats map[string]float64 `json:"stats,omitempty"`
}

// Stat returns a named sufficient statistic, with ok reporting presence.
func (v Value) Stat(name string) (float64, bool) {
	s, ok := v.Stats[name]
	return s, ok
}
