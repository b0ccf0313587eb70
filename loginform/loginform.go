package loginform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form holds the raw values typed by the operator. The presentation layer
// owns it; the login pipeline only reads it, apart from writing back the
// normalized instance URL.
type Form struct {
	InstanceURL string `json:"instanceUrl"`
	VendorID    string `json:"vendorId"`
	Username    string `json:"username"`
	Password    string `json:"-"`
}

// Fields is the validated form: trimmed instance URL and parsed vendor ID.
// Username and password are passed through unchanged.
type Fields struct {
	InstanceURL string
	VendorID    int
	Username    string
	Password    string
}

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// User-facing messages, one per rule.
const (
	MsgInstanceURLRequired = "Instance URL is required"
	MsgVendorIDRequired    = "Vendor ID is required"
	MsgVendorIDNotNumber   = "Vendor ID must be a number"
	MsgUsernameRequired    = "Username is required"
	MsgPasswordRequired    = "Password is required"
)

// ValidationError reports the first rule the form violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// candidate mirrors Form with the rules attached. Field order is rule order.
type candidate struct {
	InstanceURL string `validate:"required"`
	VendorID    string `validate:"required,int_string"`
	Username    string `validate:"required"`
	Password    string `validate:"required"`
}

var messages = map[string]string{
	"InstanceURL.required": MsgInstanceURLRequired,
	"VendorID.required":    MsgVendorIDRequired,
	"VendorID.int_string":  MsgVendorIDNotNumber,
	"Username.required":    MsgUsernameRequired,
	"Password.required":    MsgPasswordRequired,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("int_string", validateIntString); err != nil {
		panic(fmt.Sprintf("loginform: register int_string: %v", err))
	}
	return v
}

// validateIntString accepts what strconv.Atoi accepts: an optional sign
// followed by decimal digits that fit in an int.
func validateIntString(fl validator.FieldLevel) bool {
	_, err := strconv.Atoi(fl.Field().String())
	return err == nil
}

// Validate checks the form in rule order and returns the first violation.
func Validate(form Form) (Fields, error) {
	c := candidate{
		InstanceURL: strings.TrimSpace(form.InstanceURL),
		VendorID:    form.VendorID,
		Username:    form.Username,
		Password:    form.Password,
	}

	if err := validate.Struct(c); err != nil {
		return Fields{}, firstViolation(err)
	}

	// Already checked by int_string.
	vendorID, _ := strconv.Atoi(c.VendorID)

	return Fields{
		InstanceURL: c.InstanceURL,
		VendorID:    vendorID,
		Username:    c.Username,
		Password:    c.Password,
	}, nil
}

func firstViolation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	first := verrs[0]
	msg, ok := messages[first.Field()+"."+first.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", first.Field())
	}
	return &ValidationError{Field: first.Field(), Message: msg}
}
