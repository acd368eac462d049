package api

import (
	"net/http" // HTTP status codes

	"spent_api/internal/domain"     // Range checks
	"spent_api/internal/middleware" // Request IDs
	"spent_api/internal/repository" // Query helpers
	"spent_api/internal/utils"      // Cache and money formatting

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// breakdownResponse is the aggregate of a month (Month set) or a year
type breakdownResponse struct {
	Month         int    `json:"month,omitempty"`
	Year          int    `json:"year"`
	Total         string `json:"total"`
	ExpenseAmount string `json:"expense_amount"`
	IncomeAmount  string `json:"income_amount"`
	EntryCount    int64  `json:"entry_count"`
}

// balanceResponse is the cumulative balance before a month
type balanceResponse struct {
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Balance    string `json:"balance"`
	EntryCount int64  `json:"entry_count"`
}

func newBreakdown(month, year int, t repository.Totals) breakdownResponse {
	return breakdownResponse{
		Month:         month,
		Year:          year,
		Total:         utils.FormatAmount(t.Total),
		ExpenseAmount: utils.FormatAmount(t.Expense),
		IncomeAmount:  utils.FormatAmount(t.Income),
		EntryCount:    t.Count,
	}
}

// cached answers from the cache when possible, otherwise computes, stores and answers
func cached[T any](c *gin.Context, cache *utils.Cache, key string, compute func() (T, error), operation, failMsg string) {
	ctx := c.Request.Context()
	var out T
	// Try to get the view from cache first
	if found, err := cache.Get(ctx, key, &out); err == nil && found {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, out)
		return
	}
	out, err := compute() // If not in cache, aggregate in the database
	if err != nil {
		serverError(c, operation, failMsg, err, nil)
		return
	}
	if err := cache.Set(ctx, key, out); err != nil {
		logrus.WithFields(logrus.Fields{"request_id": middleware.RequestID(c), "key": key, "error": err.Error()}).Warn("Failed to cache response")
	}
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, out)
}

// BreakdownMonthHandler sums one month split by sign
func BreakdownMonthHandler(store SpentStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		month, year, rerr := parsePeriodQuery(c) // Get month and year from query
		if rerr != nil {
			abortWith(c, rerr)
			return
		}
		cached(c, cache, cache.ViewKey(c.Request.Context(), "breakdown", "month", year, month), func() (breakdownResponse, error) {
			t, err := store.MonthTotals(c.Request.Context(), month, year)
			if err != nil {
				return breakdownResponse{}, err
			}
			return newBreakdown(month, year, t), nil
		}, "breakdown_month", "Failed to compute breakdown")
	}
}

// BreakdownYearHandler sums one year split by sign
func BreakdownYearHandler(store SpentStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		yearStr := c.Query("year") // Get year from query
		// Check the year was supplied
		if isBlankParam(yearStr) {
			abortWith(c, badRequest("Year parameter is required"))
			return
		}
		year := toInt(yearStr)
		if !domain.ValidYear(year) {
			abortWith(c, badRequest("Year must be between 1900 and 9999"))
			return
		}
		cached(c, cache, cache.ViewKey(c.Request.Context(), "breakdown", "year", year), func() (breakdownResponse, error) {
			t, err := store.YearTotals(c.Request.Context(), year)
			if err != nil {
				return breakdownResponse{}, err
			}
			return newBreakdown(0, year, t), nil
		}, "breakdown_year", "Failed to compute breakdown")
	}
}

// BalanceHandler sums every record strictly before the given month
func BalanceHandler(store SpentStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		month, year, rerr := parsePeriodQuery(c) // Get month and year from query
		if rerr != nil {
			abortWith(c, rerr)
			return
		}
		cached(c, cache, cache.ViewKey(c.Request.Context(), "balance", year, month), func() (balanceResponse, error) {
			t, err := store.TotalsBefore(c.Request.Context(), month, year)
			if err != nil {
				return balanceResponse{}, err
			}
			return balanceResponse{Month: month, Year: year, Balance: utils.FormatAmount(t.Total), EntryCount: t.Count}, nil
		}, "balance", "Failed to compute balance")
	}
}
