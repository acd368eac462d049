package api

import (
	"net/http" // HTTP status codes

	"spent_api/internal/middleware" // Request IDs
	"spent_api/internal/repository" // Query helpers
	"spent_api/internal/utils"      // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// lastValuesHandler serves the most recent distinct values of column
func lastValuesHandler(store SpentStore, column, field, failMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c) // Read and clamp ?limit=
		// Query the newest distinct values
		values, err := store.LastDistinct(c.Request.Context(), column, limit)
		if err != nil {
			// If the query fails, return internal server error
			serverError(c, "last_"+column, failMsg, err, nil)
			return
		}
		// Return the values with the effective limit
		c.JSON(http.StatusOK, gin.H{
			field:   values,
			"count": len(values),
			"limit": limit,
		})
	}
}

// allValuesHandler serves every distinct value of column, sorted, through the cache
func allValuesHandler(store SpentStore, cache *utils.Cache, column, field, failMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()                    // Context for Redis and DB operations
		cacheKey := cache.ViewKey(ctx, "all", column) // Cache key for the current generation
		var values []string
		// Try to get values from cache first
		if found, err := cache.Get(ctx, cacheKey, &values); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, gin.H{field: values, "count": len(values)})
			return
		}
		// If not in cache, query the database
		values, err := store.AllDistinct(ctx, column)
		if err != nil {
			// If the query fails, return internal server error
			serverError(c, "all_"+column, failMsg, err, nil)
			return
		}
		// Store values in cache
		if err := cache.Set(ctx, cacheKey, values); err != nil {
			logrus.WithFields(logrus.Fields{"request_id": middleware.RequestID(c), "error": err.Error()}).Warn("Failed to cache values")
		}
		c.Header("X-Cache", "MISS") // Served from the database
		c.JSON(http.StatusOK, gin.H{field: values, "count": len(values)})
	}
}

// LastCategoriesHandler returns the most recently used categories
func LastCategoriesHandler(store SpentStore) gin.HandlerFunc {
	return lastValuesHandler(store, repository.ColumnCategory, "categories", "Failed to fetch categories")
}

// AllCategoriesHandler returns every category in alphabetical order
func AllCategoriesHandler(store SpentStore, cache *utils.Cache) gin.HandlerFunc {
	return allValuesHandler(store, cache, repository.ColumnCategory, "categories", "Failed to fetch all categories")
}

// LastDescriptionsHandler returns the most recently used descriptions
func LastDescriptionsHandler(store SpentStore) gin.HandlerFunc {
	return lastValuesHandler(store, repository.ColumnDescription, "descriptions", "Failed to fetch descriptions")
}

// AllDescriptionsHandler returns every description in alphabetical order
func AllDescriptionsHandler(store SpentStore, cache *utils.Cache) gin.HandlerFunc {
	return allValuesHandler(store, cache, repository.ColumnDescription, "descriptions", "Failed to fetch all descriptions")
}
