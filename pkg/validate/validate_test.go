package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asadazo/asadazo/pkg/validate"
)

type line struct {
	ProductID string  `json:"productId" validate:"required"`
	Weight    float64 `json:"weight"    validate:"gt=0"`
}

type checkoutInput struct {
	Email string  `json:"email" validate:"required,email"`
	Zone  string  `json:"zone"  validate:"required,in=pickup|inside-ring|outside-ring"`
	Notes string  `json:"notes" validate:"nullable,max=10"`
	Lines []line  `json:"lines" validate:"required,min=1,dive"`
	Tip   float64 `json:"tip"   validate:"gte=0,lte=50"`
}

func validInput() checkoutInput {
	return checkoutInput{
		Email: "ana@example.com",
		Zone:  "inside-ring",
		Lines: []line{{ProductID: "vacio", Weight: 2}},
	}
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(validInput())
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(checkoutInput{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "zone")
	assert.Contains(t, errs, "lines")
	assert.NotContains(t, errs, "notes")
}

func TestEmailRule(t *testing.T) {
	in := validInput()
	in.Email = "not-an-email"
	assert.Equal(t, "The email must be a valid email address.", validate.Struct(in)["email"])
}

func TestInRule(t *testing.T) {
	in := validInput()
	in.Zone = "moon"
	assert.Equal(t, "The selected zone is invalid.", validate.Struct(in)["zone"])
}

func TestNullableMax(t *testing.T) {
	in := validInput()
	in.Notes = "far too many characters"
	assert.Contains(t, validate.Struct(in), "notes")
}

func TestRangeRules(t *testing.T) {
	in := validInput()
	in.Tip = -1
	assert.Contains(t, validate.Struct(in), "tip")

	in.Tip = 51
	assert.Contains(t, validate.Struct(in), "tip")
}

func TestDiveReportsElementPath(t *testing.T) {
	in := validInput()
	in.Lines = append(in.Lines, line{ProductID: "", Weight: 0})

	errs := validate.Struct(&in)
	assert.Equal(t, "The lines.1.productId field is required.", errs["lines.1.productId"])
	assert.Contains(t, errs, "lines.1.weight")
	assert.NotContains(t, errs, "lines.0.productId")
}

func TestNonStructIsIgnored(t *testing.T) {
	assert.Empty(t, validate.Struct("plain"))
	var nilPtr *checkoutInput
	assert.Empty(t, validate.Struct(nilPtr))
}
