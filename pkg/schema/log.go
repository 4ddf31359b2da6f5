package schema

import "time"

// Category classifies an audit entry by the module that caused it.
type Category string

const (
	CategoryReport      Category = "REPORT"
	CategoryDeviation   Category = "DEVIATION"
	CategoryCleaning    Category = "CLEANING"
	CategoryDDS         Category = "DDS"
	CategoryDDSSchedule Category = "DDS_SCHEDULE"
	CategoryAttendance  Category = "ATTENDANCE"
	CategorySafety      Category = "SAFETY"
	CategoryOrders      Category = "ORDERS"
	CategoryInspection  Category = "INSPECTION"
	CategoryWorkPermit  Category = "WORK_PERMIT"
	CategorySite        Category = "SITE"
	CategorySystem      Category = "SYSTEM"
	CategoryOther       Category = "OTHER"
)

// Action says what kind of mutation an audit entry documents.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionSystem Action = "SYSTEM"
)

// LogRecord is one immutable audit entry.
type LogRecord struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Category    Category  `json:"category"`
	Action      Action    `json:"action"`
	Description string    `json:"description"`
	Details     string    `json:"details"`
	CreatedBy   string    `json:"createdBy"`
	AuthorName  string    `json:"authorName"`
	AuthorRole  string    `json:"authorRole"`
}
