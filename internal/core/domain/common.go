package domain

import "time"

// AuditFields holds standard audit information for registry-owned entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// DateLayout is the calendar date format used on the wire and in imports.
const DateLayout = "2006-01-02"
