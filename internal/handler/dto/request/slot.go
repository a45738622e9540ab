package request

import (
	"time"
)

const dateLayout = "2006-01-02"

type ListSlotsQuery struct {
	Date string `form:"date" binding:"required"`
}

// ParseDate reads the date as a UTC calendar day.
func (q *ListSlotsQuery) ParseDate() (time.Time, error) {
	return time.ParseInLocation(dateLayout, q.Date, time.UTC)
}
