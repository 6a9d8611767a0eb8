package model

import "time"

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertDisabled AlertStatus = "disabled"
	AlertFired    AlertStatus = "fired"
)

// Alert is a reminder scheduled relative to its task's due date.
type Alert struct {
	ID           uint        `gorm:"primaryKey"`
	TaskID       uint        `gorm:"not null;uniqueIndex:ux_alert_nodup,priority:1"`
	LeadTime     string      `gorm:"size:40;not null;uniqueIndex:ux_alert_nodup,priority:2"`
	ScheduledFor time.Time   `gorm:"index;not null"`
	Status       AlertStatus `gorm:"size:20;index;not null;default:active"`
	CreatedAt    time.Time
	FiredAt      *time.Time
	Task         *Task `gorm:"foreignKey:TaskID"`
}
