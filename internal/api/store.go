package api

import (
	"context" // Request scoped queries

	"spent_api/internal/domain"     // Importing domain models
	"spent_api/internal/repository" // Query helpers
)

// SpentStore is the persistence used by the handlers; *repository.SpentRepository implements it
type SpentStore interface {
	FindByID(ctx context.Context, id uint) (*domain.Spent, error)
	Create(ctx context.Context, spent *domain.Spent) error
	Save(ctx context.Context, spent *domain.Spent) error
	Delete(ctx context.Context, spent *domain.Spent) error
	Filter(ctx context.Context, month, year int, categories []string) ([]domain.Spent, error)
	CopyMonth(ctx context.Context, p repository.CopyParams) (int, error)
	LastDistinct(ctx context.Context, column string, limit int) ([]string, error)
	AllDistinct(ctx context.Context, column string) ([]string, error)
	MonthTotals(ctx context.Context, month, year int) (repository.Totals, error)
	YearTotals(ctx context.Context, year int) (repository.Totals, error)
	TotalsBefore(ctx context.Context, month, year int) (repository.Totals, error)
}

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

var _ SpentStore = (*repository.SpentRepository)(nil)
