package models

// Recipient is a known identity the transport layer delivers to and from.
// Attribution of inbound events to a recipient happens upstream; this core
// never authenticates.
type Recipient struct {
	BaseUUIDModel
	ChatID   string `gorm:"type:text;not null;uniqueIndex" json:"chatId"`
	Language string `gorm:"type:varchar(5);default:'en'"   json:"language"`
	IsActive bool   `gorm:"type:bool;default:true"         json:"isActive"`
}
