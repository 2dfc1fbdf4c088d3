package crm

import (
	"errors"
	"fmt"

	"github.com/kcmvp/crm/constraint"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

const (
	MsgCustomerCreated  = "Customer created successfully"
	MsgEmailExists      = "A customer with this email already exists."
	MsgInvalidPhone     = "Invalid phone number format. Use '+1234567890' or '123-456-7890'"
	MsgPriceNotPositive = "Price must be a positive number"
	MsgStockNegative    = "Stock cannot be negative"
	MsgNoProducts       = "At least one product is required"
)

// ValidationError is a rejected input. Message is what the API shows; Violations are the
// field failures it was derived from.
type ValidationError struct {
	Message    string
	Violations constraint.Violations
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError names the missing entity and the id exactly as the caller supplied it.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s does not exist", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func genericMessage(vs constraint.Violations) string {
	return "Validation failed: " + vs.Error()
}

func emailExistsMessage(email string) string {
	return fmt.Sprintf("Email %s already exists", email)
}

func invalidPhoneMessage(name string) string {
	return fmt.Sprintf("Invalid phone format for %s", name)
}

func restockedMessage(n int) string {
	return fmt.Sprintf("Restocked %d low-stock product(s)", n)
}
