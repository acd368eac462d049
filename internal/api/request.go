package api

import (
	"bytes"         // Body reader
	"encoding/json" // JSON decoding
	"fmt"           // Scalar coercion
	"io"            // EOF detection
	"math"          // Float truncation
	"net/http"      // HTTP status codes
	"regexp"        // Numeric prefix
	"strconv"       // String conversion
	"strings"       // String manipulation
	"time"          // Clock

	"spent_api/internal/domain"     // Range checks
	"spent_api/internal/middleware" // Request IDs

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// now is the clock used for defaulted dates
var now = time.Now

// requestError is a client error carrying its HTTP status
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, message: msg}
}

// abortWith writes the error envelope
func abortWith(c *gin.Context, err *requestError) {
	c.JSON(err.status, gin.H{"error": err.message})
}

// serverError logs cause and answers 500 with msg; cause never reaches the client
func serverError(c *gin.Context, operation, msg string, cause error, fields logrus.Fields) {
	entry := logrus.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(c),
		"operation":  operation,
		"error":      cause.Error(),
	})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// readObject decodes the body as a non-empty JSON object. Numbers stay json.Number.
func readObject(c *gin.Context) (map[string]any, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil || len(data) == 0 {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false // trailing content after the object
	}
	return data, true
}

// present reports whether key was sent with a non-null value
func present(data map[string]any, key string) bool {
	v, ok := data[key]
	return ok && v != nil
}

// toInt converts a scalar the way a loose integer cast would; anything
// unconvertible becomes 0
func toInt(v any) int {
	switch val := v.(type) {
	case json.Number:
		return numericStringToInt(val.String())
	case string:
		return numericStringToInt(val)
	case float64:
		return truncate(val)
	case int:
		return val
	case bool:
		if val {
			return 1
		}
	}
	return 0
}

// leadingNumber matches the numeric prefix a loose cast reads ("3abc" -> "3")
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

func numericStringToInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n // Plain integer, the common case
	}
	prefix := leadingNumber.FindString(s) // Ignore anything after the number
	if prefix == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(prefix, 64); err == nil {
		return truncate(f)
	}
	return 0
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// toText converts a scalar to the stored text form
func toText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		if val {
			return "1", true
		}
		return "", true
	}
	return "", false
}

// isBlankParam treats absent, empty and "0" query values as not supplied
func isBlankParam(s string) bool {
	return s == "" || s == "0"
}

// parsePeriodQuery reads the required month and year query parameters
func parsePeriodQuery(c *gin.Context) (int, int, *requestError) {
	monthStr, yearStr := c.Query("month"), c.Query("year")
	if isBlankParam(monthStr) || isBlankParam(yearStr) {
		return 0, 0, badRequest("Month and year parameters are required")
	}
	month, year := toInt(monthStr), toInt(yearStr)
	if !domain.ValidMonth(month) {
		return 0, 0, badRequest("Month must be between 1 and 12")
	}
	if !domain.ValidYear(year) {
		return 0, 0, badRequest("Year must be between 1900 and 9999")
	}
	return month, year, nil
}

// parseLimit reads ?limit=, defaulting to 5 and clamping to [1,100]
func parseLimit(c *gin.Context) int {
	limit := toInt(c.DefaultQuery("limit", "5"))
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseCategories accepts "Food,Rent" or a JSON array such as ["Food","Rent"].
// Blank entries are dropped; nil means no category filter.
func parseCategories(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
	} else {
		parts = strings.Split(raw, ",")
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
