package app

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"whoseonfirst/internal/domain/schedule"
)

// maxSMSLength is the single-segment SMS limit; longer bodies are cut so
// carriers never split a shift alert across segments.
const maxSMSLength = 160

// ComposeShiftMessage renders the shift-start alert for one assignee.
func ComposeShiftMessage(memberName string, durationHours int, endAt time.Time) string {
	body := fmt.Sprintf(
		"WhoseOnFirst: %s, your on-call shift has started.\nDuration: %dh (until %s)\nQuestions? Contact admin.",
		memberName,
		durationHours,
		endAt.Format("Mon 03:04 PM"),
	)
	if utf8.RuneCountInString(body) > maxSMSLength {
		// Cut on a rune boundary so a long name never leaves a torn
		// multi-byte character at the end.
		runes := []rune(body)
		body = string(runes[:maxSMSLength-3]) + "..."
	}
	return body
}

// DigestEntry is one shift as it should appear in the weekly digest,
// with any override already applied to the name.
type DigestEntry struct {
	Name    string
	StartAt time.Time
	EndAt   time.Time
}

// ComposeWeeklyDigest renders the escalation-contact summary for the week
// starting at weekStart. Days inside a multi-day shift repeat the
// assignee with a continuation marker; days nobody covers read
// "unassigned".
func ComposeWeeklyDigest(weekStart time.Time, entries []DigestEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "On-call schedule for week of %s:\n", weekStart.Format("Jan 2"))

	for day := 0; day < 7; day++ {
		dayStart := weekStart.AddDate(0, 0, day)
		dayEnd := dayStart.AddDate(0, 0, 1)
		line := "unassigned"
		for _, e := range entries {
			if !e.StartAt.Before(dayStart) && e.StartAt.Before(dayEnd) {
				line = e.Name
				break
			}
			if e.StartAt.Before(dayStart) && e.EndAt.After(dayStart.Add(time.Duration(schedule.StartHour)*time.Hour)) {
				line = e.Name + " (continues)"
				break
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", dayStart.Format("Mon Jan 2"), line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DigestWeekStart picks which week the digest describes. Fired on Monday
// at or before shift start it covers the week just beginning; any later
// it previews the following week.
func DigestWeekStart(now time.Time) time.Time {
	ws := schedule.WeekStart(now)
	if now.Weekday() == time.Monday && now.Hour() <= schedule.StartHour {
		return ws
	}
	return ws.AddDate(0, 0, 7)
}
