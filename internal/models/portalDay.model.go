package models

import "time"

// PortalDay marks a fixed calendar date as highest-priority special day.
// Rows are only ever added (population is a set union), never replaced.
type PortalDay struct {
	BaseUUIDModel
	Date time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
}

func (PortalDay) TableName() string {
	return "portal_days"
}
