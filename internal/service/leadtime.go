package service

import (
	"regexp"
	"strconv"
	"strings"
)

const maxLeadHours = 10 * 365 * 24

var leadTimePattern = regexp.MustCompile(`(?i)^([0-9]+)\s+(hours?|days?)$`)

// LeadTime is a parsed "<n> hours" or "<n> days" expression.
type LeadTime struct {
	Amount int
	Days   bool
	Hours  int
}

// ParseLeadTime parses expressions such as "24 hours" or "2 Days".
func ParseLeadTime(expr string) (LeadTime, error) {
	m := leadTimePattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return LeadTime{}, newError(ErrInvalidLeadTime, "use '<n> hours' or '<n> days', got %q", expr)
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil || amount <= 0 {
		return LeadTime{}, newError(ErrInvalidLeadTime, "amount must be a positive integer, got %q", m[1])
	}

	lead := LeadTime{Amount: amount, Days: strings.HasPrefix(strings.ToLower(m[2]), "day")}
	if lead.Days {
		if amount > maxLeadHours/24 {
			return LeadTime{}, newError(ErrInvalidLeadTime, "lead time %q is too long", expr)
		}
		lead.Hours = amount * 24
	} else {
		if amount > maxLeadHours {
			return LeadTime{}, newError(ErrInvalidLeadTime, "lead time %q is too long", expr)
		}
		lead.Hours = amount
	}
	return lead, nil
}

// String returns the canonical form stored with an alert, e.g. "1 day" or "24 hours".
func (l LeadTime) String() string {
	unit := "hour"
	if l.Days {
		unit = "day"
	}
	if l.Amount != 1 {
		unit += "s"
	}
	return strconv.Itoa(l.Amount) + " " + unit
}
