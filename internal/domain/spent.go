package domain

import (
	"time" // Date of the record

	"github.com/shopspring/decimal" // Fixed-point amounts
)

// DateLayout is the wire format of Spent.Date
const DateLayout = "2006-01-02 15:04:05"

// Spent Model: a single income (positive amount) or expense (negative amount)
type Spent struct {
	ID          uint            `gorm:"primaryKey"`                                         // Primary key
	Description *string         `gorm:"size:255;index:idx_spent_description"`               // Optional free text
	Category    *string         `gorm:"size:255;index:idx_spent_category"`                  // Optional category
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null;index:idx_spent_amount"` // Signed amount
	Date        time.Time       `gorm:"not null;index:idx_spent_date"`                      // Wall-clock timestamp
	Month       int             `gorm:"not null;index:idx_spent_month"`                     // 1-12, normally derived from Date
	Year        int             `gorm:"not null;index:idx_spent_year"`                      // 1900-9999, normally derived from Date
}

// TableName keeps the table name singular
func (Spent) TableName() string {
	return "spent"
}

// SpentResponse is the JSON projection of a Spent
type SpentResponse struct {
	ID          uint    `json:"id"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
}

// Response returns the JSON projection of s
func (s *Spent) Response() SpentResponse {
	return SpentResponse{
		ID:          s.ID,
		Description: s.Description,
		Category:    s.Category,
		Amount:      s.Amount.StringFixed(2),
		Date:        s.Date.Format(DateLayout),
		Month:       s.Month,
		Year:        s.Year,
	}
}

// Clone copies description, category and amount into a new record placed in
// the target period. The day of month is clamped to the target month's length
// and the time of day is preserved.
func (s *Spent) Clone(targetMonth, targetYear int) Spent {
	day := s.Date.Day()
	if last := DaysIn(targetMonth, targetYear); day > last {
		day = last
	}
	return Spent{
		Description: s.Description,
		Category:    s.Category,
		Amount:      s.Amount,
		Date: time.Date(targetYear, time.Month(targetMonth), day,
			s.Date.Hour(), s.Date.Minute(), s.Date.Second(), 0, s.Date.Location()),
		Month: targetMonth,
		Year:  targetYear,
	}
}

// DaysIn returns the number of days in month of year
func DaysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidMonth reports whether m is a calendar month
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// ValidYear reports whether y is inside the accepted year range
func ValidYear(y int) bool {
	return y >= 1900 && y <= 9999
}
