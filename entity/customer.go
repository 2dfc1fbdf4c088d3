package entity

import (
	"time"

	"github.com/kcmvp/crm/constraint"
	"github.com/samber/mo"
)

// Customer is a person that places orders. Email is unique.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     mo.Option[string]
	CreatedAt time.Time
}

func (Customer) Table() string { return "crm_customer" }

var _ Entity = Customer{}

var (
	CustomerID        = Field[Customer]("id")
	CustomerName      = Field[Customer]("name")
	CustomerEmail     = Field[Customer]("email")
	CustomerPhone     = Field[Customer]("phone")
	CustomerCreatedAt = Field[Customer]("created_at")
)

// Validate checks the field rules that need no database access.
func (c Customer) Validate() constraint.Violations {
	checks := []mo.Option[constraint.Violation]{
		constraint.Check(CustomerName.Name(), c.Name, constraint.Required(), constraint.MaxLength(NameMaxLength)),
		constraint.Check(CustomerEmail.Name(), c.Email, constraint.Required(), constraint.MaxLength(EmailMaxLength), constraint.Email()),
	}
	if phone, ok := c.Phone.Get(); ok {
		checks = append(checks, constraint.Check(CustomerPhone.Name(), phone, constraint.MaxLength(PhoneMaxLength), constraint.Phone()))
	}
	return constraint.Collect(checks...)
}
