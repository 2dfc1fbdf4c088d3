// Package crm validates and applies CRM mutations and answers list queries. Every error it
// returns for bad input is a *ValidationError or *NotFoundError whose message is fit for
// API clients.
package crm

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/filter"
	"github.com/kcmvp/crm/store"
)

type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// parseID accepts positive decimal ids; anything else names no row.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return id, err == nil && id > 0
}

func (s *Service) Customers(ctx context.Context, f filter.Customer, orderBy string) ([]entity.Customer, error) {
	sorts, err := filter.CustomerOrder(orderBy)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return s.store.Customers(ctx, f.Where(), sorts...)
}

func (s *Service) Products(ctx context.Context, f filter.Product, orderBy string) ([]entity.Product, error) {
	sorts, err := filter.ProductOrder(orderBy)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return s.store.Products(ctx, f.Where(), sorts...)
}

func (s *Service) Orders(ctx context.Context, f filter.Order, orderBy string) ([]entity.Order, error) {
	sorts, err := filter.OrderOrder(orderBy)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return s.store.Orders(ctx, f.Where(), sorts...)
}

// Customer looks a customer up by id.
func (s *Service) Customer(ctx context.Context, id int64) (entity.Customer, error) {
	c, err := s.store.Customer(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c, &NotFoundError{Entity: "Customer", ID: strconv.FormatInt(id, 10)}
	}
	return c, err
}

// OrderProducts lists the products an order was placed with.
func (s *Service) OrderProducts(ctx context.Context, orderID int64) ([]entity.Product, error) {
	return s.store.OrderProducts(ctx, orderID)
}
