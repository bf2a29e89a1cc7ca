package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

// Training column names as they appear in the fitted transform.
const (
	ColumnAge             = "Age"
	ColumnAnnualIncome    = "AnnualIncome"
	ColumnFamilyMembers   = "FamilyMembers"
	ColumnChronicDiseases = "ChronicDiseases"
	ColumnEmploymentType  = "Employment Type"
	ColumnGraduate        = "GraduateOrNot"
	ColumnFrequentFlyer   = "FrequentFlyer"
	ColumnTravelledAbroad = "EverTravelledAbroad"
)

// Training literals of the Employment Type column.
const (
	TrainingPrivateSector    = "Private Sector/Self Employed"
	TrainingGovernmentSector = "Government Sector"
)

// employmentTrainingLiterals maps every EmploymentSector to the category
// string the transform was fitted on. Checked complete at init.
var employmentTrainingLiterals = map[models.EmploymentSector]string{
	models.EmploymentPrivateOrSelfEmployed: TrainingPrivateSector,
	models.EmploymentGovernment:            TrainingGovernmentSector,
}

func init() {
	for _, s := range models.EmploymentSectors() {
		if _, ok := employmentTrainingLiterals[s]; !ok {
			panic(fmt.Sprintf("service: no training literal for employment sector %s", s))
		}
	}
}

func yesNo(b bool) string {
	if b {
		return constants.LiteralYes
	}
	return constants.LiteralNo
}

func zeroOne(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// trainingColumn binds a training column to the profile value that feeds it.
type trainingColumn struct {
	kind       string
	categories []string
	numeric    func(p models.CustomerProfile) float64
	category   func(p models.CustomerProfile) string
}

var trainingColumns = map[string]trainingColumn{
	ColumnAge: {
		kind:    models.ColumnNumeric,
		numeric: func(p models.CustomerProfile) float64 { return float64(p.Age()) },
	},
	ColumnAnnualIncome: {
		kind:    models.ColumnNumeric,
		numeric: func(p models.CustomerProfile) float64 { return float64(p.AnnualIncome()) },
	},
	ColumnFamilyMembers: {
		kind:    models.ColumnNumeric,
		numeric: func(p models.CustomerProfile) float64 { return float64(p.FamilyMembers()) },
	},
	ColumnChronicDiseases: {
		kind:    models.ColumnNumeric,
		numeric: func(p models.CustomerProfile) float64 { return zeroOne(p.ChronicConditions()) },
	},
	ColumnEmploymentType: {
		kind:       models.ColumnCategorical,
		categories: []string{TrainingPrivateSector, TrainingGovernmentSector},
		category:   func(p models.CustomerProfile) string { return employmentTrainingLiterals[p.EmploymentSector()] },
	},
	ColumnGraduate: {
		kind:       models.ColumnCategorical,
		categories: []string{constants.LiteralYes, constants.LiteralNo},
		category:   func(p models.CustomerProfile) string { return yesNo(p.HigherEducation()) },
	},
	ColumnFrequentFlyer: {
		kind:       models.ColumnCategorical,
		categories: []string{constants.LiteralYes, constants.LiteralNo},
		category:   func(p models.CustomerProfile) string { return yesNo(p.FrequentFlyer()) },
	},
	ColumnTravelledAbroad: {
		kind:       models.ColumnCategorical,
		categories: []string{constants.LiteralYes, constants.LiteralNo},
		category:   func(p models.CustomerProfile) string { return yesNo(p.TravelledAbroad()) },
	},
}

// TrainingColumns lists the known training column names, sorted.
func TrainingColumns() []string {
	names := make([]string, 0, len(trainingColumns))
	for name := range trainingColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compiledColumn is one transform step writing width outputs.
type compiledColumn struct {
	name     string
	binding  trainingColumn
	encoding string
	mean     float64
	scale    float64
	index    map[string]int
	width    int
}

// FeatureTransformer is the compiled, immutable feature transform.
// FeatureTransformer 是已编译且不可变的特征转换器。
type FeatureTransformer struct {
	version      string
	columns      []compiledColumn
	featureNames []string
}

// NewFeatureTransformer compiles spec and checks it against the known
// training columns. Any mismatch is an artifact_load_error.
func NewFeatureTransformer(spec models.TransformSpec) (*FeatureTransformer, error) {
	fail := func(format string, args ...any) error {
		return errors.ErrArtifactLoad(constants.ArtifactTransform, fmt.Sprintf(format, args...))
	}

	if spec.FormatVersion != constants.ArtifactFormatVersion {
		return nil, fail("unsupported format_version %d", spec.FormatVersion)
	}
	if len(spec.Columns) != len(trainingColumns) {
		return nil, fail("declares %d columns, expected %d (%v)", len(spec.Columns), len(trainingColumns), TrainingColumns())
	}

	t := &FeatureTransformer{version: spec.Version}
	seen := make(map[string]bool, len(spec.Columns))

	for _, col := range spec.Columns {
		binding, known := trainingColumns[col.Name]
		if !known {
			return nil, fail("unknown column %q", col.Name)
		}
		if seen[col.Name] {
			return nil, fail("duplicate column %q", col.Name)
		}
		seen[col.Name] = true
		if col.Kind != binding.kind {
			return nil, fail("column %q has kind %q, expected %q", col.Name, col.Kind, binding.kind)
		}

		c := compiledColumn{name: col.Name, binding: binding, scale: 1}
		switch col.Kind {
		case models.ColumnNumeric:
			if col.Encoding != "" || len(col.Categories) > 0 {
				return nil, fail("numeric column %q must not declare categories", col.Name)
			}
			if col.Scaler != nil {
				if !finite(col.Scaler.Mean) || !finite(col.Scaler.Scale) || col.Scaler.Scale <= 0 {
					return nil, fail("column %q has an invalid scaler", col.Name)
				}
				c.mean, c.scale = col.Scaler.Mean, col.Scaler.Scale
			}
			c.width = 1
			t.featureNames = append(t.featureNames, col.Name)

		case models.ColumnCategorical:
			if col.Scaler != nil {
				return nil, fail("categorical column %q must not declare a scaler", col.Name)
			}
			if !sameSet(col.Categories, binding.categories) {
				return nil, fail("column %q categories %q do not match training literals %q", col.Name, col.Categories, binding.categories)
			}
			c.encoding = col.Encoding
			c.index = make(map[string]int, len(col.Categories))
			for i, cat := range col.Categories {
				c.index[cat] = i
			}
			switch col.Encoding {
			case models.EncodingOneHot:
				c.width = len(col.Categories)
				for _, cat := range col.Categories {
					t.featureNames = append(t.featureNames, col.Name+"_"+cat)
				}
			case models.EncodingOrdinal:
				c.width = 1
				t.featureNames = append(t.featureNames, col.Name)
			case models.EncodingBinary:
				if len(col.Categories) != 2 {
					return nil, fail("binary column %q needs exactly two categories", col.Name)
				}
				c.width = 1
				t.featureNames = append(t.featureNames, col.Name)
			default:
				return nil, fail("column %q has unknown encoding %q", col.Name, col.Encoding)
			}

		default:
			return nil, fail("column %q has unknown kind %q", col.Name, col.Kind)
		}
		t.columns = append(t.columns, c)
	}

	return t, nil
}

// Transform encodes p in the artifact's column order. p must come from
// NewCustomerProfile; anything else is a scoring_error, never a default encoding.
func (t *FeatureTransformer) Transform(p models.CustomerProfile) (models.FeatureVector, error) {
	if !p.Validated() {
		return models.FeatureVector{}, errors.ErrScoring("profile has not been validated")
	}
	out := make([]float64, 0, len(t.featureNames))
	for _, c := range t.columns {
		if c.binding.kind == models.ColumnNumeric {
			out = append(out, (c.binding.numeric(p)-c.mean)/c.scale)
			continue
		}
		literal := c.binding.category(p)
		idx, ok := c.index[literal]
		if !ok {
			return models.FeatureVector{}, errors.ErrScoring(
				fmt.Sprintf("column %q has no category %q", c.name, literal))
		}
		switch c.encoding {
		case models.EncodingOneHot:
			for i := 0; i < c.width; i++ {
				out = append(out, zeroOne(i == idx))
			}
		default:
			out = append(out, float64(idx))
		}
	}
	return models.NewFeatureVector(out), nil
}

// FeatureNames returns the output schema, one name per vector position.
func (t *FeatureTransformer) FeatureNames() []string {
	names := make([]string, len(t.featureNames))
	copy(names, t.featureNames)
	return names
}

// Width is the output vector length.
func (t *FeatureTransformer) Width() int { return len(t.featureNames) }

// Version is the artifact version string.
func (t *FeatureTransformer) Version() string { return t.version }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	w := make(map[string]bool, len(want))
	for _, s := range want {
		w[s] = true
	}
	seen := make(map[string]bool, len(got))
	for _, s := range got {
		if !w[s] || seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}
