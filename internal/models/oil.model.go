package models

import "gorm.io/datatypes"

// Oil is a read-only catalog entry. The command router never matches against
// this table; it only formats attributes for an oil already resolved from the
// day's message. List-valued fields are stored as JSON.
type Oil struct {
	BaseUUIDModel
	Name              string         `gorm:"type:text;not null;uniqueIndex" json:"name"`
	AlternativeNames  datatypes.JSON `gorm:"type:jsonb"                     json:"alternativeNames"`
	EnergeticEffects  string         `gorm:"type:text"                      json:"energeticEffects"`
	MainComponents    datatypes.JSON `gorm:"type:jsonb"                     json:"mainComponents"`
	InterestingFacts  string         `gorm:"type:text"                      json:"interestingFacts"`
	Contraindications string         `gorm:"type:text"                      json:"contraindications"`
	BestUses          datatypes.JSON `gorm:"type:jsonb"                     json:"bestUses"`
}

func (Oil) TableName() string {
	return "oils"
}
