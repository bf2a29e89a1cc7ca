package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
)

var fixtureFeatureNames = []string{
	"Age",
	"AnnualIncome",
	"FamilyMembers",
	"ChronicDiseases",
	"Employment Type_Government Sector",
	"Employment Type_Private Sector/Self Employed",
	"GraduateOrNot",
	"FrequentFlyer",
	"EverTravelledAbroad",
}

func fixtureTransform() models.TransformSpec {
	yesNo := []string{"No", "Yes"}
	return models.TransformSpec{
		FormatVersion: 1,
		Version:       "2024.06.1",
		Columns: []models.ColumnSpec{
			{Name: "Age", Kind: models.ColumnNumeric, Scaler: &models.ScalerSpec{Mean: 29.65, Scale: 2.91}},
			{Name: "AnnualIncome", Kind: models.ColumnNumeric, Scaler: &models.ScalerSpec{Mean: 932762.96, Scale: 376855.68}},
			{Name: "FamilyMembers", Kind: models.ColumnNumeric, Scaler: &models.ScalerSpec{Mean: 4.75, Scale: 1.61}},
			{Name: "ChronicDiseases", Kind: models.ColumnNumeric},
			{Name: "Employment Type", Kind: models.ColumnCategorical, Encoding: models.EncodingOneHot,
				Categories: []string{"Government Sector", "Private Sector/Self Employed"}},
			{Name: "GraduateOrNot", Kind: models.ColumnCategorical, Encoding: models.EncodingBinary, Categories: yesNo},
			{Name: "FrequentFlyer", Kind: models.ColumnCategorical, Encoding: models.EncodingBinary, Categories: yesNo},
			{Name: "EverTravelledAbroad", Kind: models.ColumnCategorical, Encoding: models.EncodingBinary, Categories: yesNo},
		},
	}
}

func split(feature int, threshold float64, left, right int) models.NodeSpec {
	return models.NodeSpec{Feature: feature, Threshold: threshold, Left: left, Right: right}
}

func leaf(v float64) models.NodeSpec {
	return models.NodeSpec{Leaf: true, Value: v}
}

func fixtureModel() models.ModelSpec {
	return models.ModelSpec{
		FormatVersion: 1,
		Kind:          models.ModelGradientBoosting,
		Version:       "gbm-2024.06.1",
		NFeatures:     9,
		FeatureNames:  append([]string(nil), fixtureFeatureNames...),
		Info:          models.ModelInfo{Algorithm: "Gradient Boosting Classifier", Accuracy: 0.8417},
		LearningRate:  0.5,
		InitScore:     -0.2,
		Trees: []models.TreeSpec{
			{Nodes: []models.NodeSpec{split(8, 0.5, 1, 4), split(1, 1.0, 2, 3), leaf(-0.6), leaf(1.5), leaf(2.0)}},
			{Nodes: []models.NodeSpec{split(7, 0.5, 1, 4), split(0, 1.2, 2, 3), leaf(-0.3), leaf(0.9), leaf(1.2)}},
			{Nodes: []models.NodeSpec{split(6, 0.5, 1, 2), leaf(-0.2), leaf(0.1)}},
		},
	}
}

func exampleFields() models.ProfileFields {
	return models.ProfileFields{
		Age:              28,
		AnnualIncome:     800000,
		FamilyMembers:    4,
		EmploymentSector: models.EmploymentPrivateOrSelfEmployed,
		HigherEducation:  true,
	}
}

func mustProfile(f models.ProfileFields) models.CustomerProfile {
	p, err := models.NewCustomerProfile(f)
	if err != nil {
		panic(err)
	}
	return p
}

func mustTransform(t *testing.T, tr *service.FeatureTransformer, p models.CustomerProfile) models.FeatureVector {
	t.Helper()
	v, err := tr.Transform(p)
	require.NoError(t, err)
	return v
}
