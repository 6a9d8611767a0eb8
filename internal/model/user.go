package model

import "time"

// User is the owner of tasks. Email is the identity key; TelegramID links a chat.
// Users created from a chat have no email until they link one.
type User struct {
	ID         uint    `gorm:"primaryKey"`
	Email      *string `gorm:"uniqueIndex;size:160"`
	TelegramID *int64  `gorm:"uniqueIndex"`
	Name       string  `gorm:"size:120"`
	Enabled    bool    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
