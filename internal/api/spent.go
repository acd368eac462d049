package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"spent_api/internal/domain"     // Importing domain models
	"spent_api/internal/events"     // Change notifications
	"spent_api/internal/middleware" // Request IDs
	"spent_api/internal/repository" // Query helpers
	"spent_api/internal/utils"      // Cache, money and date helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// applyChanges copies the supplied fields of data onto spent. When creating,
// amount is required and a missing date defaults to now. Month and year follow
// the date unless they are sent explicitly.
func applyChanges(spent *domain.Spent, data map[string]any, creating bool) *requestError {
	if present(data, "description") {
		text, ok := toText(data["description"])
		if !ok {
			return badRequest("Description must be a string")
		}
		spent.Description = &text
	}
	if present(data, "category") {
		text, ok := toText(data["category"])
		if !ok {
			return badRequest("Category must be a string")
		}
		spent.Category = &text
	}

	if creating && !present(data, "amount") {
		return badRequest("Amount is required and must be numeric")
	}
	if present(data, "amount") {
		amount, err := utils.ParseAmount(data["amount"])
		if err != nil {
			if creating {
				return badRequest("Amount is required and must be numeric")
			}
			return badRequest("Amount must be numeric")
		}
		spent.Amount = amount
	}

	dateSent := present(data, "date")
	if dateSent || creating {
		date := utils.WallClock(now())
		if dateSent {
			raw, ok := data["date"].(string)
			if !ok {
				return badRequest("Invalid date format")
			}
			parsed, err := utils.ParseDate(raw)
			if err != nil {
				return badRequest("Invalid date format")
			}
			date = parsed
		}
		spent.Date = date
		if !present(data, "month") {
			spent.Month = int(date.Month())
		}
		if !present(data, "year") {
			spent.Year = date.Year()
		}
	}

	if present(data, "month") {
		month := toInt(data["month"])
		if !domain.ValidMonth(month) {
			return badRequest("Month must be between 1 and 12")
		}
		spent.Month = month
	}
	if present(data, "year") {
		year := toInt(data["year"])
		if !domain.ValidYear(year) {
			return badRequest("Year must be between 1900 and 9999")
		}
		spent.Year = year
	}
	return nil
}

// invalidate drops cached read views after a write
func invalidate(c *gin.Context, cache *utils.Cache) {
	if err := cache.Invalidate(c.Request.Context()); err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.RequestID(c),
			"error":      err.Error(),
		}).Warn("Failed to invalidate cache")
	}
}

// CreateSpentHandler inserts a new record
func CreateSpentHandler(store SpentStore, cache *utils.Cache, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := readObject(c) // Decode the JSON body
		// Validate request
		if !ok {
			// If invalid, return bad request
			abortWith(c, badRequest("Invalid JSON data"))
			return
		}
		var spent domain.Spent // New record
		// Copy and validate the supplied fields
		if rerr := applyChanges(&spent, data, true); rerr != nil {
			abortWith(c, rerr)
			return
		}
		ctx := c.Request.Context() // Context for DB, Redis and NATS operations
		// Insert the record
		if err := store.Create(ctx, &spent); err != nil {
			// If insert fails, return internal server error
			serverError(c, "create", "Failed to create spent entry", err, nil)
			return
		}
		resp := spent.Response() // JSON projection
		logrus.WithFields(logrus.Fields{
			"id":     spent.ID,
			"amount": resp.Amount,
			"month":  spent.Month,
			"year":   spent.Year,
		}).Info("Spent entry created")
		invalidate(c, cache)                               // Drop cached views
		events.Emit(ctx, pub, events.SubjectCreated, resp) // Announce the creation
		c.JSON(http.StatusCreated, resp)
	}
}

// EditSpentHandler applies a partial update to an existing record
func EditSpentHandler(store SpentStore, cache *utils.Cache, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := readObject(c) // Decode the JSON body
		// Validate request
		if !ok {
			// If invalid, return bad request
			abortWith(c, badRequest("Invalid JSON data"))
			return
		}
		id, ok := parseID(c) // Get record ID from path
		if !ok {
			// A malformed id cannot match any record
			c.JSON(http.StatusNotFound, gin.H{"error": "Spent entry not found"})
			return
		}
		ctx := c.Request.Context() // Context for DB, Redis and NATS operations
		// Load the existing record
		spent, err := store.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			// If record not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Spent entry not found"})
			return
		} else if err != nil {
			serverError(c, "edit", "Failed to update spent entry", err, logrus.Fields{"id": id})
			return
		}
		// Apply only the supplied fields
		if rerr := applyChanges(spent, data, false); rerr != nil {
			abortWith(c, rerr)
			return
		}
		// Save the updated record
		if err := store.Save(ctx, spent); err != nil {
			serverError(c, "edit", "Failed to update spent entry", err, logrus.Fields{"id": id})
			return
		}
		resp := spent.Response()
		logrus.WithField("id", id).Info("Spent entry updated")
		invalidate(c, cache)                               // Drop cached views
		events.Emit(ctx, pub, events.SubjectUpdated, resp) // Announce the update
		c.JSON(http.StatusOK, resp)
	}
}

// DeleteSpentHandler removes a record
func DeleteSpentHandler(store SpentStore, cache *utils.Cache, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c) // Get record ID from path
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Spent entry not found"})
			return
		}
		ctx := c.Request.Context() // Context for DB, Redis and NATS operations
		// Check that the record exists
		spent, err := store.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			// If record not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Spent entry not found"})
			return
		} else if err != nil {
			serverError(c, "delete", "Failed to delete spent entry", err, logrus.Fields{"id": id})
			return
		}
		// Remove the record
		if err := store.Delete(ctx, spent); err != nil {
			serverError(c, "delete", "Failed to delete spent entry", err, logrus.Fields{"id": id})
			return
		}
		logrus.WithField("id", id).Info("Spent entry deleted")
		invalidate(c, cache)                                          // Drop cached views
		events.Emit(ctx, pub, events.SubjectDeleted, gin.H{"id": id}) // Announce the deletion
		c.JSON(http.StatusOK, gin.H{
			"message": "Spent entry deleted successfully",
			"id":      id,
		})
	}
}

// filterParams echoes the filter of a /filter request
type filterParams struct {
	Month      int      `json:"month"`
	Year       int      `json:"year"`
	Categories []string `json:"categories"`
}

// filterResponse is the body of a /filter response
type filterResponse struct {
	Data    []domain.SpentResponse `json:"data"`
	Count   int                    `json:"count"`
	Filters filterParams           `json:"filters"`
}

// FilterSpentHandler lists the records of a month, optionally restricted to categories
func FilterSpentHandler(store SpentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		month, year, rerr := parsePeriodQuery(c) // Get month and year from query
		if rerr != nil {
			abortWith(c, rerr)
			return
		}
		// Parse the optional category list
		categories, err := parseCategories(c.Query("categories"))
		if err != nil {
			// If malformed, return bad request
			abortWith(c, badRequest("Invalid categories format"))
			return
		}
		// Query matching records, newest first
		spents, err := store.Filter(c.Request.Context(), month, year, categories)
		if err != nil {
			serverError(c, "filter", "Failed to fetch spent entries", err, logrus.Fields{"month": month, "year": year})
			return
		}
		data := make([]domain.SpentResponse, 0, len(spents)) // Never null in JSON
		for i := range spents {
			data = append(data, spents[i].Response())
		}
		c.JSON(http.StatusOK, filterResponse{
			Data:    data,
			Count:   len(data),
			Filters: filterParams{Month: month, Year: year, Categories: categories},
		})
	}
}
