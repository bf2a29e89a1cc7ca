package models

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

// EmploymentSector is the customer's employment sector.
type EmploymentSector uint8

const (
	EmploymentPrivateOrSelfEmployed EmploymentSector = iota + 1
	EmploymentGovernment
)

var employmentSectorNames = map[EmploymentSector]string{
	EmploymentPrivateOrSelfEmployed: "PRIVATE_OR_SELF_EMPLOYED",
	EmploymentGovernment:            "GOVERNMENT",
}

// EmploymentSectors lists every sector in declaration order.
func EmploymentSectors() []EmploymentSector {
	return []EmploymentSector{EmploymentPrivateOrSelfEmployed, EmploymentGovernment}
}

// ParseEmploymentSector matches the wire literal exactly (case-sensitive).
func ParseEmploymentSector(s string) (EmploymentSector, bool) {
	for sector, name := range employmentSectorNames {
		if name == s {
			return sector, true
		}
	}
	return 0, false
}

func (s EmploymentSector) String() string {
	if name, ok := employmentSectorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EmploymentSector(%d)", uint8(s))
}

// Valid reports whether s is one of the declared sectors.
func (s EmploymentSector) Valid() bool {
	_, ok := employmentSectorNames[s]
	return ok
}

// ProfileFields carries the coerced, not yet bounds-checked profile values.
type ProfileFields struct {
	Age               int              `json:"age" validate:"min=18,max=100"`
	AnnualIncome      int              `json:"annualIncome" validate:"min=100000,max=2500000"`
	FamilyMembers     int              `json:"familyMembers" validate:"min=1,max=10"`
	EmploymentSector  EmploymentSector `json:"employmentSector" validate:"sector"`
	HigherEducation   bool             `json:"higherEducation"`
	ChronicConditions bool             `json:"chronicConditions"`
	FrequentFlyer     bool             `json:"frequentFlyer"`
	TravelledAbroad   bool             `json:"travelledAbroad"`
}

// CustomerProfile is a validated customer record, immutable once built.
// Only NewCustomerProfile produces a validated value; the zero value is not one
// and is refused by the feature transformer.
type CustomerProfile struct {
	validated         bool
	age               int
	annualIncome      int
	familyMembers     int
	employmentSector  EmploymentSector
	higherEducation   bool
	chronicConditions bool
	frequentFlyer     bool
	travelledAbroad   bool
}

var profileValidator = newProfileValidator()

func newProfileValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("sector", func(fl validator.FieldLevel) bool {
		return EmploymentSector(fl.Field().Uint()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// NewCustomerProfile enforces the domain bounds of every field. The returned
// error is a validation_error naming the first offending field in canonical
// order, with all violations under the "violations" metadata key.
func NewCustomerProfile(f ProfileFields) (CustomerProfile, error) {
	if err := profileValidator.Struct(f); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return CustomerProfile{}, errors.ErrInternal("profile validation failed").WithCause(err)
		}
		violations := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			violations[fe.Field()] = describeFieldError(fe)
		}
		return CustomerProfile{}, FirstViolation(violations)
	}

	return CustomerProfile{
		validated:         true,
		age:               f.Age,
		annualIncome:      f.AnnualIncome,
		familyMembers:     f.FamilyMembers,
		employmentSector:  f.EmploymentSector,
		higherEducation:   f.HigherEducation,
		chronicConditions: f.ChronicConditions,
		frequentFlyer:     f.FrequentFlyer,
		travelledAbroad:   f.TravelledAbroad,
	}, nil
}

// FirstViolation builds the validation error for a set of field violations.
// violations must not be empty.
func FirstViolation(violations map[string]string) errors.CoreError {
	field := FirstViolatedField(violations)
	return errors.ErrValidation(field, violations[field]).WithMetadata("violations", violations)
}

// FirstViolatedField picks the field reported for a set of violations: the
// first in canonical order, otherwise (unrecognized input keys only) the
// lexically smallest key.
func FirstViolatedField(violations map[string]string) string {
	for _, field := range constants.ProfileFields {
		if _, ok := violations[field]; ok {
			return field
		}
	}
	first := ""
	for field := range violations {
		if first == "" || field < first {
			first = field
		}
	}
	return first
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "sector":
		return "must be a known employment sector"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

func (p CustomerProfile) Age() int                           { return p.age }
func (p CustomerProfile) AnnualIncome() int                  { return p.annualIncome }
func (p CustomerProfile) FamilyMembers() int                 { return p.familyMembers }
func (p CustomerProfile) EmploymentSector() EmploymentSector { return p.employmentSector }
func (p CustomerProfile) HigherEducation() bool              { return p.higherEducation }
func (p CustomerProfile) ChronicConditions() bool            { return p.chronicConditions }
func (p CustomerProfile) FrequentFlyer() bool                { return p.frequentFlyer }
func (p CustomerProfile) TravelledAbroad() bool              { return p.travelledAbroad }

// Validated reports whether p was built by NewCustomerProfile.
func (p CustomerProfile) Validated() bool { return p.validated }

// Key is a canonical encoding of the profile, used as an in-process cache key.
func (p CustomerProfile) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(p.age))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.annualIncome))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.familyMembers))
	b.WriteByte('|')
	b.WriteString(p.employmentSector.String())
	for _, flag := range []bool{p.higherEducation, p.chronicConditions, p.frequentFlyer, p.travelledAbroad} {
		b.WriteByte('|')
		if flag {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
