package market

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tmscout-backend/lib/timezone"
)

var deadlineTimeRegex = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// ResolveDeadline resolves a free-text deadline ("Today at 14:00
// (2 hours left)") against a reference now in the pipeline timezone.
//
// Site deadlines carry no timezone marker. The policy here is that they
// are stated in the pipeline timezone, the same zone the reference now
// is converted into, so no arithmetic ever crosses offsets. Callers that
// believe the site lives elsewhere pass a different location to
// ResolveDeadlineIn.
func ResolveDeadline(raw string, now time.Time) (time.Time, bool) {
	return ResolveDeadlineIn(raw, now, timezone.Location)
}

// ResolveDeadlineIn is ResolveDeadline with an explicit location.
// Returns false when no relative-day marker or no HH:MM pattern is
// present, a deadline is never fabricated.
func ResolveDeadlineIn(raw string, now time.Time, loc *time.Location) (time.Time, bool) {
	lower := strings.ToLower(raw)

	days := 0
	switch {
	case strings.Contains(lower, "today"):
		days = 0
	case strings.Contains(lower, "tomorrow"):
		days = 1
	default:
		return time.Time{}, false
	}

	groups := deadlineTimeRegex.FindStringSubmatch(raw)
	if groups == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(groups[1])
	minute, _ := strconv.Atoi(groups[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	now = now.In(loc)
	resolved := time.Date(
		now.Year(), now.Month(), now.Day()+days,
		hour, minute, 0, 0,
		loc,
	)
	return resolved, true
}
