package wellness

import "time"

// MoodEntry is one logged mood check-in. Day carries the weekday label the
// chart buckets by ("Mon", "Tue", ...).
type MoodEntry struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Level     int       `json:"level"`
	Day       string    `json:"day"`
	CreatedAt time.Time `json:"createdAt"`
}

// DayLevel is one bar of the weekly overview chart.
type DayLevel struct {
	Day   string `json:"day"`
	Level int    `json:"level"`
}
