package features

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidProfile = errors.New("invalid baby profile")

// BabyProfile is the physiological input to a scoring request.
type BabyProfile struct {
	AgeMonth           int     `json:"age_month" validate:"min=0,max=36"`
	Sex                string  `json:"sex" validate:"required,oneof=M F"`
	HeightCm           float64 `json:"height_cm" validate:"gt=0,lte=150"`
	WeightKg           float64 `json:"weight_kg" validate:"gt=0,lte=50"`
	AllergyRisk        int     `json:"allergy_risk" validate:"oneof=0 1"`
	LactoseSensitivity int     `json:"lactose_sensitivity" validate:"oneof=0 1"`
	FeedMlPerIntake    int     `json:"feed_ml_per_intake" validate:"gt=0,lte=300"`
}

// ProfileInput is the wire form of a BabyProfile. Pointer fields let an
// omitted field fail the required check instead of decoding as zero.
type ProfileInput struct {
	AgeMonth           *int     `json:"age_month" validate:"required,min=0,max=36"`
	Sex                *string  `json:"sex" validate:"required,oneof=M F"`
	HeightCm           *float64 `json:"height_cm" validate:"required,gt=0,lte=150"`
	WeightKg           *float64 `json:"weight_kg" validate:"required,gt=0,lte=50"`
	AllergyRisk        *int     `json:"allergy_risk" validate:"required,oneof=0 1"`
	LactoseSensitivity *int     `json:"lactose_sensitivity" validate:"required,oneof=0 1"`
	FeedMlPerIntake    *int     `json:"feed_ml_per_intake" validate:"required,gt=0,lte=300"`
}

// Profile validates the input and converts it to a BabyProfile.
func (in ProfileInput) Profile() (BabyProfile, error) {
	if err := validateStruct(in); err != nil {
		return BabyProfile{}, err
	}
	return BabyProfile{
		AgeMonth:           *in.AgeMonth,
		Sex:                *in.Sex,
		HeightCm:           *in.HeightCm,
		WeightKg:           *in.WeightKg,
		AllergyRisk:        *in.AllergyRisk,
		LactoseSensitivity: *in.LactoseSensitivity,
		FeedMlPerIntake:    *in.FeedMlPerIntake,
	}, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the profile against its documented ranges. The returned
// error wraps ErrInvalidProfile and names every failing field.
func (b BabyProfile) Validate() error {
	return validateStruct(b)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
