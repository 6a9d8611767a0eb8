package service

import "time"

// ScheduledFor returns the instant an alert fires: midnight UTC of dueDate's
// calendar day minus leadHours. The result may lie in the past.
func ScheduledFor(dueDate time.Time, leadHours int) time.Time {
	return DateOf(dueDate).Add(-time.Duration(leadHours) * time.Hour)
}
