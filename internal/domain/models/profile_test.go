package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/errors"
)

func validFields() models.ProfileFields {
	return models.ProfileFields{
		Age:              28,
		AnnualIncome:     800000,
		FamilyMembers:    4,
		EmploymentSector: models.EmploymentPrivateOrSelfEmployed,
		HigherEducation:  true,
	}
}

func TestNewCustomerProfile_Valid(t *testing.T) {
	p, err := models.NewCustomerProfile(validFields())
	require.NoError(t, err)

	assert.Equal(t, 28, p.Age())
	assert.Equal(t, 800000, p.AnnualIncome())
	assert.Equal(t, 4, p.FamilyMembers())
	assert.Equal(t, models.EmploymentPrivateOrSelfEmployed, p.EmploymentSector())
	assert.True(t, p.HigherEducation())
	assert.False(t, p.ChronicConditions())
	assert.False(t, p.FrequentFlyer())
	assert.False(t, p.TravelledAbroad())
	assert.True(t, p.Validated())
	assert.False(t, models.CustomerProfile{}.Validated())
}

func TestNewCustomerProfile_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *models.ProfileFields)
		field  string
	}{
		{"age 17", func(f *models.ProfileFields) { f.Age = 17 }, "age"},
		{"age 101", func(f *models.ProfileFields) { f.Age = 101 }, "age"},
		{"income 99999", func(f *models.ProfileFields) { f.AnnualIncome = 99999 }, "annualIncome"},
		{"income 2500001", func(f *models.ProfileFields) { f.AnnualIncome = 2500001 }, "annualIncome"},
		{"family 0", func(f *models.ProfileFields) { f.FamilyMembers = 0 }, "familyMembers"},
		{"family 11", func(f *models.ProfileFields) { f.FamilyMembers = 11 }, "familyMembers"},
		{"zero sector", func(f *models.ProfileFields) { f.EmploymentSector = 0 }, "employmentSector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			_, err := models.NewCustomerProfile(f)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Equal(t, tt.field, errors.FieldOf(err))
		})
	}
}

func TestNewCustomerProfile_BoundaryValuesAccepted(t *testing.T) {
	f := validFields()
	f.Age, f.AnnualIncome, f.FamilyMembers = 18, 100000, 1
	_, err := models.NewCustomerProfile(f)
	assert.NoError(t, err)

	f.Age, f.AnnualIncome, f.FamilyMembers = 100, 2500000, 10
	_, err = models.NewCustomerProfile(f)
	assert.NoError(t, err)
}

func TestNewCustomerProfile_ReportsFirstFieldInCanonicalOrder(t *testing.T) {
	f := validFields()
	f.FamilyMembers = 0
	f.Age = 5

	_, err := models.NewCustomerProfile(f)
	require.Error(t, err)
	assert.Equal(t, "age", errors.FieldOf(err))

	coreErr, ok := errors.AsCoreError(err)
	require.True(t, ok)
	violations, ok := coreErr.Metadata()["violations"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at least 18", violations["age"])
	assert.Equal(t, "must be at least 1", violations["familyMembers"])
}

func TestParseEmploymentSector(t *testing.T) {
	s, ok := models.ParseEmploymentSector("GOVERNMENT")
	assert.True(t, ok)
	assert.Equal(t, models.EmploymentGovernment, s)

	s, ok = models.ParseEmploymentSector("PRIVATE_OR_SELF_EMPLOYED")
	assert.True(t, ok)
	assert.Equal(t, models.EmploymentPrivateOrSelfEmployed, s)

	for _, literal := range []string{"government", "Government Sector", "", "PRIVATE"} {
		_, ok := models.ParseEmploymentSector(literal)
		assert.False(t, ok, literal)
	}
}

func TestCustomerProfile_Key(t *testing.T) {
	p, err := models.NewCustomerProfile(validFields())
	require.NoError(t, err)
	assert.Equal(t, "28|800000|4|PRIVATE_OR_SELF_EMPLOYED|1|0|0|0", p.Key())

	f := validFields()
	f.TravelledAbroad = true
	q, err := models.NewCustomerProfile(f)
	require.NoError(t, err)
	assert.NotEqual(t, p.Key(), q.Key())
}
