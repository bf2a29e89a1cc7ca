package models

// FeatureVector is the numeric model input, ordered as the fitted transform declares.
type FeatureVector struct {
	values []float64
}

// NewFeatureVector copies values into a new vector.
func NewFeatureVector(values []float64) FeatureVector {
	v := make([]float64, len(values))
	copy(v, values)
	return FeatureVector{values: v}
}

func (v FeatureVector) Len() int         { return len(v.values) }
func (v FeatureVector) At(i int) float64 { return v.values[i] }

// Values returns a copy of the vector contents.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}
