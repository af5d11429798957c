package model

import "time"

// PushSubscription holds a staff device's browser push subscription.
// Alerts for new pending assistance requests are fanned out to every
// subscription registered for the venue.
type PushSubscription struct {
	Endpoint  string `gorm:"primaryKey"`
	VenueID   int64  `gorm:"index;not null"`
	P256DH    string `gorm:"column:p256dh;not null"`
	Auth      string `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
