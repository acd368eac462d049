package api

import (
	"net/http" // HTTP status codes

	"spent_api/internal/domain"     // Range checks
	"spent_api/internal/events"     // Change notifications
	"spent_api/internal/repository" // Query helpers
	"spent_api/internal/utils"      // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// copyFilters echoes the parameters of a copy_month request
type copyFilters struct {
	SourceMonth int     `json:"source_month"`
	SourceYear  int     `json:"source_year"`
	TargetMonth int     `json:"target_month"`
	TargetYear  int     `json:"target_year"`
	Category    *string `json:"category"`
}

// copyResponse is the body of a copy_month response
type copyResponse struct {
	Message     string      `json:"message"`
	CopiedCount int         `json:"copied_count"`
	Filters     copyFilters `json:"filters"`
}

// parseCopyRequest validates a copy_month body
func parseCopyRequest(data map[string]any) (copyFilters, *requestError) {
	for _, key := range []string{"source_month", "source_year", "target_month", "target_year"} {
		if !present(data, key) {
			return copyFilters{}, badRequest("source_month, source_year, target_month, and target_year are required")
		}
	}
	f := copyFilters{
		SourceMonth: toInt(data["source_month"]),
		SourceYear:  toInt(data["source_year"]),
		TargetMonth: toInt(data["target_month"]),
		TargetYear:  toInt(data["target_year"]),
	}
	if present(data, "category") {
		text, ok := toText(data["category"])
		if !ok {
			return copyFilters{}, badRequest("Category must be a string")
		}
		f.Category = &text
	}
	if !domain.ValidMonth(f.SourceMonth) || !domain.ValidMonth(f.TargetMonth) {
		return copyFilters{}, badRequest("Months must be between 1 and 12")
	}
	if !domain.ValidYear(f.SourceYear) || !domain.ValidYear(f.TargetYear) {
		return copyFilters{}, badRequest("Years must be between 1900 and 9999")
	}
	return f, nil
}

// CopyMonthHandler clones the records of one month into another
func CopyMonthHandler(store SpentStore, cache *utils.Cache, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := readObject(c) // Decode the JSON body
		// Validate request
		if !ok {
			// If invalid, return bad request
			abortWith(c, badRequest("Invalid JSON data"))
			return
		}
		// Check the source and target periods
		filters, rerr := parseCopyRequest(data)
		if rerr != nil {
			abortWith(c, rerr)
			return
		}
		ctx := c.Request.Context() // Context for DB, Redis and NATS operations
		// Clone the source records inside one transaction
		copied, err := store.CopyMonth(ctx, repository.CopyParams{
			SourceMonth: filters.SourceMonth,
			SourceYear:  filters.SourceYear,
			TargetMonth: filters.TargetMonth,
			TargetYear:  filters.TargetYear,
			Category:    filters.Category,
		})
		if err != nil {
			// If the copy fails, nothing was written; return internal server error
			serverError(c, "copy_month", "Failed to copy entries", err, logrus.Fields{
				"source_month": filters.SourceMonth,
				"source_year":  filters.SourceYear,
				"target_month": filters.TargetMonth,
				"target_year":  filters.TargetYear,
			})
			return
		}
		// Nothing matched: not an error
		if copied == 0 {
			c.JSON(http.StatusOK, copyResponse{Message: "No entries found to copy", Filters: filters})
			return
		}
		resp := copyResponse{Message: "Entries copied successfully", CopiedCount: copied, Filters: filters}
		logrus.WithFields(logrus.Fields{
			"copied_count": copied,
			"source":       filters.SourceYear*100 + filters.SourceMonth,
			"target":       filters.TargetYear*100 + filters.TargetMonth,
		}).Info("Month copied")
		invalidate(c, cache)                              // Drop cached views
		events.Emit(ctx, pub, events.SubjectCopied, resp) // Announce the copy
		c.JSON(http.StatusCreated, resp)
	}
}
