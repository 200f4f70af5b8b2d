package formatter

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextRun returns the first time after from that matches the five-field cron expression.
func NextRun(cronString string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronString)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronString, err)
	}
	return schedule.Next(from), nil
}

// ValidateCron reports whether cronString parses. The service does its own validation;
// this is only used to warn early.
func ValidateCron(cronString string) error {
	_, err := cronParser.Parse(cronString)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronString, err)
	}
	return nil
}

// DescribeSchedule renders cronString with its next run after from, or notes that it could not be parsed.
func DescribeSchedule(cronString string, from time.Time) string {
	if cronString == "" {
		return "(none)"
	}

	next, err := NextRun(cronString, from)
	if err != nil {
		return cronString + " (unparsable locally)"
	}
	return fmt.Sprintf("%s (next run %s)", cronString, next.Format("Mon 2006-01-02 15:04 MST"))
}
