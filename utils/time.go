package utils

import (
	"time"
)

// ParseTime applies a clock string (HH:MM:SS) to a calendar date.
func ParseTime(timeStr string, date time.Time) (time.Time, error) {
	if timeStr == "" {
		return date, nil
	}

	parsedTime, err := time.Parse("15:04:05", timeStr)
	if err != nil {
		return date, err
	}

	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		parsedTime.Hour(),
		parsedTime.Minute(),
		parsedTime.Second(),
		0,
		date.Location(),
	), nil
}

// StudyDay returns the zero-based study day for now given the participant's
// start date, counted in calendar days of the study timezone. Negative before
// the start.
func StudyDay(start, now time.Time, loc *time.Location) int {
	startDay := time.Date(start.In(loc).Year(), start.In(loc).Month(), start.In(loc).Day(), 0, 0, 0, 0, loc)
	nowDay := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	return int(nowDay.Sub(startDay).Hours() / 24)
}
