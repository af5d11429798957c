package model

import "time"

// Assistance request statuses. Transitions are monotonic:
// pending -> acknowledged -> resolved, or pending -> resolved directly.
const (
	AssistancePending      = "pending"
	AssistanceAcknowledged = "acknowledged"
	AssistanceResolved     = "resolved"
)

// AssistanceRequest is a "need help" signal raised from a table.
type AssistanceRequest struct {
	ID          uint64 `gorm:"primaryKey"`
	VenueID     int64  `gorm:"index;not null"`
	TableNumber int    `gorm:"not null"`
	Status      string `gorm:"index;size:16;not null;default:pending"`
	Message     string `gorm:"size:1024"`
	CreatedAt   time.Time `gorm:"index;not null"`

	AcknowledgedAt *time.Time
	AcknowledgedBy *string
	ResolvedAt     *time.Time
	ResolvedBy     *string
	Notes          string `gorm:"size:1024"`
}

// Open reports whether the request still belongs in the live queue.
func (r *AssistanceRequest) Open() bool {
	return r.Status == AssistancePending || r.Status == AssistanceAcknowledged
}
