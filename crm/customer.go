package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/kcmvp/crm/constraint"
	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
	"github.com/kcmvp/crm/store"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type CustomerInput struct {
	Name  string
	Email string
	Phone mo.Option[string]
}

func (in CustomerInput) customer() entity.Customer {
	phone := in.Phone.OrEmpty()
	return entity.Customer{
		Name:  in.Name,
		Email: in.Email,
		Phone: mo.TupleToOption(phone, phone != ""),
	}
}

// BulkResult reports each input either as a created customer or as an error line.
type BulkResult struct {
	Customers []entity.Customer
	Errors    []string
}

var (
	emailField = entity.CustomerEmail.Name()
	phoneField = entity.CustomerPhone.Name()
)

func hasField(vs constraint.Violations, field string) bool {
	return lo.ContainsBy(vs, func(v constraint.Violation) bool { return v.Field == field })
}

func emailTaken(err error) constraint.Violation {
	return constraint.Violation{Field: emailField, Reason: constraint.ReasonUnique, Err: err}
}

// createCustomer validates c against st and inserts it. Violations are returned separately
// from failures of the store itself.
func createCustomer(ctx context.Context, st *store.Store, c *entity.Customer) (constraint.Violations, error) {
	vs := c.Validate()
	if !hasField(vs, emailField) {
		taken, err := st.EmailTaken(ctx, c.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			vs = append(vs, emailTaken(store.ErrUniqueViolation))
		}
	}
	if len(vs) > 0 {
		return vs, nil
	}
	if err := st.InsertCustomer(ctx, c); err != nil {
		// lost a race with a concurrent insert of the same email
		if store.IsUniqueViolation(err) {
			return constraint.Violations{emailTaken(err)}, nil
		}
		return nil, err
	}
	return nil, nil
}

func customerMessage(vs constraint.Violations) string {
	switch {
	case vs.Has(emailField, constraint.ReasonUnique):
		return MsgEmailExists
	case hasField(vs, phoneField):
		return MsgInvalidPhone
	}
	return genericMessage(vs)
}

func bulkMessage(in CustomerInput, vs constraint.Violations) string {
	switch {
	case vs.Has(emailField, constraint.ReasonUnique):
		return emailExistsMessage(in.Email)
	case hasField(vs, phoneField):
		return invalidPhoneMessage(in.Name)
	}
	return genericMessage(vs)
}

// CreateCustomer validates and stores one customer.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (entity.Customer, error) {
	c := in.customer()
	vs, err := createCustomer(ctx, s.store, &c)
	if err != nil {
		return c, err
	}
	if len(vs) > 0 {
		return c, &ValidationError{Message: customerMessage(vs), Violations: vs}
	}
	s.logger.InfoContext(ctx, "customer created", "id", c.ID, "email", c.Email)
	return c, nil
}

// BulkCreateCustomers stores every valid input in one transaction and reports the others.
// Each row runs in its own savepoint, so a failing row leaves the rows before it intact.
// Created customers are reported only once the transaction has committed, and every input
// ends up in exactly one of Customers or Errors.
func (s *Service) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (BulkResult, error) {
	candidates := make([]entity.Customer, 0, len(inputs))
	errs := make([]string, 0)
	err := s.store.InTx(ctx, func(tx *store.Store) error {
		for i, in := range inputs {
			c := in.customer()
			var vs constraint.Violations
			err := tx.Savepoint(ctx, fmt.Sprintf("bulk_customer_%d", i), func() error {
				var err error
				if vs, err = createCustomer(ctx, tx, &c); err != nil {
					return err
				}
				return vs.Err()
			})
			switch {
			case len(vs) > 0:
				errs = append(errs, bulkMessage(in, vs))
			case err != nil:
				errs = append(errs, err.Error())
			default:
				candidates = append(candidates, c)
			}
		}
		return nil
	})

	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "bulk customers created", "created", len(candidates), "failed", len(errs))
		return BulkResult{Customers: candidates, Errors: errs}, nil
	case errors.Is(err, sqlx.ErrCommit):
		for _, c := range candidates {
			errs = append(errs, fmt.Sprintf("Customer %s was not saved: %v", c.Email, err))
		}
	default:
		// the transaction never started
		errs = lo.Map(inputs, func(in CustomerInput, _ int) string {
			return fmt.Sprintf("Customer %s was not saved: %v", in.Email, err)
		})
	}
	s.logger.ErrorContext(ctx, "bulk customers not saved", "inputs", len(inputs), "err", err)
	return BulkResult{Customers: []entity.Customer{}, Errors: errs}, nil
}
