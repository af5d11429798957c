package model

import "time"

// Table shapes as authored in the floor-plan editor.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeElongated = "elongated"
)

// Table is a seat group on the floor plan. Positions are authored in a
// normalized design space, either as percentages ("42.5%") or, for
// legacy plans, raw pixel values ("380"). The kiosk consumes tables
// read-only; the floor-plan editor owns them.
type Table struct {
	ID      int64  `gorm:"primaryKey"`
	VenueID int64  `gorm:"index;not null"`
	ZoneID  int64  `gorm:"index;not null"`
	Number  int    `gorm:"not null"` // display key, unique per zone only
	PosX    string `gorm:"size:32;not null"`
	PosY    string `gorm:"size:32;not null"`
	Shape   string `gorm:"size:16;not null;default:rectangle"`
	Width   float64
	Height  float64
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Zone Zone `gorm:"constraint:OnDelete:CASCADE"`
}

// Zone groups tables into a named floor-plan area.
type Zone struct {
	ID           int64  `gorm:"primaryKey"`
	VenueID      int64  `gorm:"index;not null"`
	Name         string `gorm:"size:128;not null"`
	DisplayOrder int    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Tables []Table `gorm:"foreignKey:ZoneID"`
}
