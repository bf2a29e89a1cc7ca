package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

const (
	reasonRequired     = "is required"
	reasonNotInteger   = "must be an integer"
	reasonNotBoolean   = "must be a boolean or one of \"Yes\", \"No\""
	reasonNotSector    = "must be a string"
	reasonUnknownField = "is not a recognized profile field"
)

// ProfileValidator turns a raw caller record into a CustomerProfile.
// It is stateless and safe for concurrent use.
// ProfileValidator 将调用方提交的原始记录转换为 CustomerProfile。
type ProfileValidator struct{}

// NewProfileValidator creates a ProfileValidator.
func NewProfileValidator() *ProfileValidator {
	return &ProfileValidator{}
}

// Validate checks presence, coerces types and enforces domain bounds.
// Every violation is collected; the returned error names the first field in
// canonical order. An unrecognized employment sector yields unknown_category.
func (v *ProfileValidator) Validate(raw map[string]any) (models.CustomerProfile, error) {
	violations := make(map[string]string)
	unknownCategories := make(map[string]any)

	for key := range raw {
		if !isProfileField(key) {
			violations[key] = reasonUnknownField
		}
	}

	var f models.ProfileFields
	coerced := make(map[string]bool, len(constants.ProfileFields))

	intField := func(name string, dst *int) {
		value, ok := raw[name]
		if !ok {
			violations[name] = reasonRequired
			return
		}
		n, err := coerceInt(value)
		if err != nil {
			violations[name] = err.Error()
			return
		}
		*dst = n
		coerced[name] = true
	}
	boolField := func(name string, dst *bool) {
		value, ok := raw[name]
		if !ok {
			violations[name] = reasonRequired
			return
		}
		b, ok := coerceBool(value)
		if !ok {
			violations[name] = reasonNotBoolean
			return
		}
		*dst = b
		coerced[name] = true
	}

	intField(constants.FieldAge, &f.Age)
	intField(constants.FieldAnnualIncome, &f.AnnualIncome)
	intField(constants.FieldFamilyMembers, &f.FamilyMembers)

	if value, ok := raw[constants.FieldEmploymentSector]; !ok {
		violations[constants.FieldEmploymentSector] = reasonRequired
	} else if s, isString := value.(string); !isString {
		violations[constants.FieldEmploymentSector] = reasonNotSector
	} else if sector, known := models.ParseEmploymentSector(s); !known {
		violations[constants.FieldEmploymentSector] = fmt.Sprintf("unknown category %q", s)
		unknownCategories[constants.FieldEmploymentSector] = s
	} else {
		f.EmploymentSector = sector
		coerced[constants.FieldEmploymentSector] = true
	}

	boolField(constants.FieldHigherEducation, &f.HigherEducation)
	boolField(constants.FieldChronicConditions, &f.ChronicConditions)
	boolField(constants.FieldFrequentFlyer, &f.FrequentFlyer)
	boolField(constants.FieldTravelledAbroad, &f.TravelledAbroad)

	profile, err := models.NewCustomerProfile(f)
	if err != nil {
		// Bounds violations only count for fields that were coerced; the rest
		// already carry a more specific reason.
		coreErr, ok := errors.AsCoreError(err)
		if !ok {
			return models.CustomerProfile{}, err
		}
		bounds, _ := coreErr.Metadata()["violations"].(map[string]string)
		for field, reason := range bounds {
			if coerced[field] {
				violations[field] = reason
			}
		}
	}

	if len(violations) == 0 {
		return profile, nil
	}

	field := models.FirstViolatedField(violations)
	if value, ok := unknownCategories[field]; ok {
		return models.CustomerProfile{}, errors.ErrUnknownCategory(field, value).
			WithMetadata("violations", violations)
	}
	return models.CustomerProfile{}, errors.ErrValidation(field, violations[field]).
		WithMetadata("violations", violations)
}

func isProfileField(key string) bool {
	for _, f := range constants.ProfileFields {
		if f == key {
			return true
		}
	}
	return false
}

// coerceInt accepts Go integers, integral floats, json.Number and numeric strings.
func coerceInt(value any) (int, error) {
	switch n := value.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return intFromInt64(n)
	case uint:
		return intFromFloat(float64(n))
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return intFromFloat(float64(n))
	case float32:
		return intFromFloat(float64(n))
	case float64:
		return intFromFloat(n)
	case json.Number:
		return intFromString(string(n))
	case string:
		return intFromString(n)
	default:
		return 0, fmt.Errorf("%s", reasonNotInteger)
	}
}

func intFromString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s", reasonNotInteger)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intFromInt64(n)
	}
	fv, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s, got %q", reasonNotInteger, s)
	}
	return intFromFloat(fv)
}

func intFromFloat(fv float64) (int, error) {
	if math.IsNaN(fv) || math.IsInf(fv, 0) || fv != math.Trunc(fv) {
		return 0, fmt.Errorf("%s", reasonNotInteger)
	}
	if fv > math.MaxInt32 || fv < math.MinInt32 {
		return 0, fmt.Errorf("%s in range", reasonNotInteger)
	}
	return int(fv), nil
}

func intFromInt64(n int64) (int, error) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%s in range", reasonNotInteger)
	}
	return int(n), nil
}

// coerceBool accepts native booleans and exactly "Yes" / "No".
func coerceBool(value any) (bool, bool) {
	switch b := value.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case constants.LiteralYes:
			return true, true
		case constants.LiteralNo:
			return false, true
		}
	}
	return false, false
}
