package model

import "time"

// Resolution kinds recorded on actioned feedback rows.
const (
	ResolutionResolved        = "resolved"
	ResolutionDismissed       = "dismissed"
	ResolutionPositiveCleared = "positive_cleared"
)

// DismissalReasonFallback is stored when a dismissal carries no reason.
const DismissalReasonFallback = "No reason provided"

// FeedbackRow is one answered question (or free-text comment) from a
// customer submission. Rows are immutable once created except for the
// resolution fields, which are written by staff actions.
type FeedbackRow struct {
	ID          uint64 `gorm:"primaryKey"`
	VenueID     int64  `gorm:"index;not null"`
	SessionID   string `gorm:"index;size:64"`
	TableNumber int    `gorm:"not null"`
	QuestionID  *int64 `gorm:"index"`
	Rating      *int
	Comment     string    `gorm:"size:2048"`
	CreatedAt   time.Time `gorm:"index;not null"`

	IsActioned      bool `gorm:"index;not null;default:false"`
	ResolvedBy      *string
	ResolvedAt      *time.Time
	ResolutionKind  string `gorm:"size:32"`
	DismissalReason string `gorm:"size:512"`

	// Associations
	Question *Question `gorm:"constraint:OnDelete:SET NULL"`
}

// Question is read-only metadata owned by the question management
// screens; the kiosk only uses it to order session members.
type Question struct {
	ID           int64  `gorm:"primaryKey"`
	VenueID      int64  `gorm:"index;not null"`
	Prompt       string `gorm:"size:512;not null"`
	DisplayOrder int    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
