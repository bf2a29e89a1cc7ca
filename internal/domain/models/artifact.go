package models

import "time"

// Column kinds of a fitted transform.
const (
	ColumnNumeric     = "numeric"
	ColumnCategorical = "categorical"
)

// Categorical encodings of a fitted transform.
const (
	EncodingOneHot  = "one_hot"
	EncodingOrdinal = "ordinal"
	EncodingBinary  = "binary"
)

// Model kinds understood by the scoring engine.
const (
	ModelGradientBoosting   = "gradient_boosting"
	ModelLogisticRegression = "logistic_regression"
)

// TransformSpec is the decoded feature-transform artifact.
// Columns are listed in output order.
type TransformSpec struct {
	FormatVersion int          `json:"format_version"`
	Version       string       `json:"version"`
	Columns       []ColumnSpec `json:"columns"`
}

// ColumnSpec describes how one training column is encoded.
type ColumnSpec struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Scaler     *ScalerSpec `json:"scaler,omitempty"`
	Encoding   string      `json:"encoding,omitempty"`
	Categories []string    `json:"categories,omitempty"`
}

// ScalerSpec is a fitted standardization: (x - Mean) / Scale.
type ScalerSpec struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// ModelSpec is the decoded predictive-model artifact.
type ModelSpec struct {
	FormatVersion int       `json:"format_version"`
	Kind          string    `json:"kind"`
	Version       string    `json:"version"`
	NFeatures     int       `json:"n_features"`
	FeatureNames  []string  `json:"feature_names,omitempty"`
	Info          ModelInfo `json:"metadata"`

	// gradient_boosting
	LearningRate float64    `json:"learning_rate,omitempty"`
	InitScore    float64    `json:"init_score,omitempty"`
	Trees        []TreeSpec `json:"trees,omitempty"`

	// logistic_regression
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
}

// ModelInfo is descriptive methodology data carried by the model artifact.
type ModelInfo struct {
	Algorithm string  `json:"algorithm,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	TrainedAt string  `json:"trained_at,omitempty"`
}

// TreeSpec is one regression tree of a boosted ensemble; Nodes[0] is the root.
type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes"`
}

// NodeSpec is a split (x[Feature] <= Threshold goes Left) or a leaf.
type NodeSpec struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// ArtifactMetadata describes a loaded artifact pair.
type ArtifactMetadata struct {
	TransformVersion string    `json:"transform_version"`
	ModelVersion     string    `json:"model_version"`
	ModelKind        string    `json:"model_kind"`
	TransformSHA256  string    `json:"transform_sha256"`
	ModelSHA256      string    `json:"model_sha256"`
	Source           string    `json:"source"`
	FeatureNames     []string  `json:"feature_names"`
	Info             ModelInfo `json:"methodology"`
	LoadedAt         time.Time `json:"loaded_at"`
}

// Fingerprint identifies the artifact pair's content.
func (m ArtifactMetadata) Fingerprint() string {
	return m.TransformSHA256 + ":" + m.ModelSHA256
}

// CacheKey identifies the score of p under this artifact pair.
func (m ArtifactMetadata) CacheKey(p CustomerProfile) string {
	return m.Fingerprint() + "#" + p.Key()
}
