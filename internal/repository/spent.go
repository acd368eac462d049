package repository

import (
	"context" // Request scoped queries
	"errors"  // Error matching
	"fmt"     // Error wrapping

	"spent_api/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point sums
	"gorm.io/gorm"                  // GORM ORM library
)

// ErrNotFound is returned when no record has the requested identifier
var ErrNotFound = errors.New("spent entry not found")

// Columns that can be listed by LastDistinct and AllDistinct
const (
	ColumnCategory    = "category"
	ColumnDescription = "description"
)

// totalsSelect sums amounts split by sign and counts the rows
const totalsSelect = "COALESCE(SUM(amount), 0), " +
	"COALESCE(SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END), 0), " +
	"COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0), " +
	"COUNT(*)"

// Totals is the aggregate of a set of records
type Totals struct {
	Total   decimal.Decimal // Sum of all amounts
	Expense decimal.Decimal // Sum of negative amounts
	Income  decimal.Decimal // Sum of positive amounts
	Count   int64           // Number of records
}

// CopyParams selects the records cloned by CopyMonth
type CopyParams struct {
	SourceMonth int
	SourceYear  int
	TargetMonth int
	TargetYear  int
	Category    *string // Restricts the source records when set
}

// SpentRepository wraps queries over the spent table
type SpentRepository struct {
	db *gorm.DB
}

// NewSpentRepository creates a repository backed by db
func NewSpentRepository(db *gorm.DB) *SpentRepository {
	return &SpentRepository{db: db}
}

// Ping checks the underlying connection
func (r *SpentRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// FindByID loads the record with the given id
func (r *SpentRepository) FindByID(ctx context.Context, id uint) (*domain.Spent, error) {
	var spent domain.Spent
	if err := r.db.WithContext(ctx).First(&spent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find spent %d: %w", id, err)
	}
	return &spent, nil
}

// Create inserts spent and fills in its ID
func (r *SpentRepository) Create(ctx context.Context, spent *domain.Spent) error {
	if err := r.db.WithContext(ctx).Create(spent).Error; err != nil {
		return fmt.Errorf("create spent: %w", err)
	}
	return nil
}

// CreateBatch inserts all records in one transaction
func (r *SpentRepository) CreateBatch(ctx context.Context, spents []domain.Spent) error {
	if len(spents) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(spents, 500).Error
	})
	if err != nil {
		return fmt.Errorf("create spent batch: %w", err)
	}
	return nil
}

// Save writes every column of an existing record
func (r *SpentRepository) Save(ctx context.Context, spent *domain.Spent) error {
	if err := r.db.WithContext(ctx).Save(spent).Error; err != nil {
		return fmt.Errorf("save spent %d: %w", spent.ID, err)
	}
	return nil
}

// Delete removes spent
func (r *SpentRepository) Delete(ctx context.Context, spent *domain.Spent) error {
	if err := r.db.WithContext(ctx).Delete(spent).Error; err != nil {
		return fmt.Errorf("delete spent %d: %w", spent.ID, err)
	}
	return nil
}

// DeleteAll empties the table
func (r *SpentRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Spent{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete all spent: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Filter lists the records of a period, newest first. An empty categories
// slice disables the category filter.
func (r *SpentRepository) Filter(ctx context.Context, month, year int, categories []string) ([]domain.Spent, error) {
	q := r.db.WithContext(ctx).Where("month = ? AND year = ?", month, year)
	if len(categories) > 0 {
		q = q.Where("category IN ?", categories)
	}
	var spents []domain.Spent
	if err := q.Order("id DESC").Find(&spents).Error; err != nil {
		return nil, fmt.Errorf("filter spent: %w", err)
	}
	return spents, nil
}

// CopyMonth clones the source period into the target period and returns the
// number of records created. Selection and insertion share one transaction.
func (r *SpentRepository) CopyMonth(ctx context.Context, p CopyParams) (int, error) {
	copied := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("month = ? AND year = ?", p.SourceMonth, p.SourceYear)
		if p.Category != nil {
			q = q.Where("category = ?", *p.Category)
		}
		var sources []domain.Spent
		if err := q.Order("id ASC").Find(&sources).Error; err != nil {
			return err
		}
		if len(sources) == 0 {
			return nil
		}
		clones := make([]domain.Spent, 0, len(sources))
		for i := range sources {
			clones = append(clones, sources[i].Clone(p.TargetMonth, p.TargetYear))
		}
		if err := tx.CreateInBatches(clones, 500).Error; err != nil {
			return err
		}
		copied = len(clones)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("copy month: %w", err)
	}
	return copied, nil
}

// LastDistinct returns up to limit distinct non-null values of column, ordered
// by the newest record carrying each value
func (r *SpentRepository) LastDistinct(ctx context.Context, column string, limit int) ([]string, error) {
	if err := checkColumn(column); err != nil {
		return nil, err
	}
	values := []string{}
	err := r.db.WithContext(ctx).Model(&domain.Spent{}).
		Where(column + " IS NOT NULL").
		Group(column).
		Order("MAX(id) DESC").
		Limit(limit).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("last distinct %s: %w", column, err)
	}
	return values, nil
}

// AllDistinct returns every distinct non-null value of column in ascending order
func (r *SpentRepository) AllDistinct(ctx context.Context, column string) ([]string, error) {
	if err := checkColumn(column); err != nil {
		return nil, err
	}
	values := []string{}
	err := r.db.WithContext(ctx).Model(&domain.Spent{}).
		Distinct(column).
		Where(column + " IS NOT NULL").
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("all distinct %s: %w", column, err)
	}
	return values, nil
}

// MonthTotals aggregates the records of one month
func (r *SpentRepository) MonthTotals(ctx context.Context, month, year int) (Totals, error) {
	return r.totals(ctx, "month = ? AND year = ?", month, year)
}

// YearTotals aggregates the records of one year
func (r *SpentRepository) YearTotals(ctx context.Context, year int) (Totals, error) {
	return r.totals(ctx, "year = ?", year)
}

// TotalsBefore aggregates every record strictly before month/year
func (r *SpentRepository) TotalsBefore(ctx context.Context, month, year int) (Totals, error) {
	return r.totals(ctx, "year < ? OR (year = ? AND month < ?)", year, year, month)
}

func (r *SpentRepository) totals(ctx context.Context, where string, args ...any) (Totals, error) {
	var t Totals
	row := r.db.WithContext(ctx).Model(&domain.Spent{}).Select(totalsSelect).Where(where, args...).Row()
	if err := row.Scan(&t.Total, &t.Expense, &t.Income, &t.Count); err != nil {
		return Totals{}, fmt.Errorf("aggregate spent: %w", err)
	}
	return t, nil
}

func checkColumn(column string) error {
	switch column {
	case ColumnCategory, ColumnDescription:
		return nil
	}
	return fmt.Errorf("column %q cannot be listed", column)
}
