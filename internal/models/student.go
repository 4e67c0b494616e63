package models

import (
	"strings"
	"time"
)

// Student represents a registered pupil. The NIS (student identification
// number) is the natural key and never changes after registration.
type Student struct {
	NIS         string    `db:"nis" json:"nis"`
	Name        string    `db:"name" json:"name"`
	Grade       string    `db:"grade" json:"grade"`
	ParentPhone string    `db:"parent_phone" json:"parent_phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter defines roster query filters.
type StudentFilter struct {
	Grade    string
	Search   string
	Page     int
	PageSize int
}

// NormalizeParentPhone rewrites a local Indonesian number into international
// form: a leading "0" becomes the "62" country code. Anything else is passed
// through unchanged.
func NormalizeParentPhone(phone string) string {
	if strings.HasPrefix(phone, "0") {
		return "62" + phone[1:]
	}
	return phone
}
