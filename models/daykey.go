// ABOUTME: Calendar day key helpers for the YYYY-MM-DD aggregation bucket
// ABOUTME: Validation, parsing, and local-day conversion from provider timestamps
package models

import (
	"fmt"
	"regexp"
	"time"
)

// DayKeyLayout is the canonical key format for one local calendar day.
const DayKeyLayout = "2006-01-02"

var dayKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDayKey checks that key is a well-formed YYYY-MM-DD date.
// A bad key is a caller input error, never a provider or cache failure.
func ValidateDayKey(key string) error {
	if !dayKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid day key %q: expected YYYY-MM-DD", key)
	}
	if _, err := time.ParseInLocation(DayKeyLayout, key, time.Local); err != nil {
		return fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return nil
}

// ParseDayKey parses a day key into a time at local midnight.
func ParseDayKey(key string) (time.Time, error) {
	if err := ValidateDayKey(key); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(DayKeyLayout, key, time.Local)
}

// DayKeyOf buckets a timestamp (often UTC from a provider) into the
// local calendar day it falls on.
func DayKeyOf(t time.Time) string {
	return t.In(time.Local).Format(DayKeyLayout)
}

// DayKeysBetween returns every day key from fromKey through toKey inclusive,
// in ascending order. Returns an error for malformed keys or an inverted range.
func DayKeysBetween(fromKey, toKey string) ([]string, error) {
	from, err := ParseDayKey(fromKey)
	if err != nil {
		return nil, err
	}
	to, err := ParseDayKey(toKey)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("inverted date range: %s is after %s", fromKey, toKey)
	}

	var keys []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(DayKeyLayout))
	}
	return keys, nil
}
