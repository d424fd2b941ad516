package services

import (
	"fmt"
	"time"
)

// Check-in statuses relative to the configured work start time
const (
	StatusOnTime = "ontime"
	StatusLate   = "late"
)

// gracePeriod is how long after work start a check-in still counts as on time
const gracePeriod = 5 * time.Minute

// calculateStatus determines if check-in is on time or late
func calculateStatus(checkInTime time.Time, workStartTime string) string {
	todayWorkStart, ok := workStartOn(checkInTime, workStartTime)
	if !ok {
		return StatusOnTime
	}

	if checkInTime.Before(todayWorkStart.Add(gracePeriod)) {
		return StatusOnTime
	}
	return StatusLate
}

// calculateLateStatus calculates late minutes for display
func calculateLateStatus(checkInTime time.Time, workStartTime string) string {
	todayWorkStart, ok := workStartOn(checkInTime, workStartTime)
	if !ok {
		return "late"
	}

	lateMinutes := int(checkInTime.Sub(todayWorkStart).Minutes())
	return fmt.Sprintf("late by %d min", lateMinutes)
}

func workStartOn(day time.Time, workStartTime string) (time.Time, bool) {
	if workStartTime == "" {
		return time.Time{}, false
	}
	workStart, err := time.Parse("15:04:05", workStartTime)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(
		day.Year(),
		day.Month(),
		day.Day(),
		workStart.Hour(),
		workStart.Minute(),
		workStart.Second(),
		0,
		day.Location(),
	), true
}

// checkInMessage formats the notification for a first check-in of the day
func checkInMessage(display string, at time.Time, workStartTime string) string {
	if workStartTime == "" {
		return fmt.Sprintf("✅ *%s* checked in at `%s`", display, at.Format("15:04:05"))
	}

	if calculateStatus(at, workStartTime) == StatusLate {
		return fmt.Sprintf("⚠️ *%s* checked in at `%s` (%s)",
			display, at.Format("15:04:05"), calculateLateStatus(at, workStartTime))
	}
	return fmt.Sprintf("✅ *%s* checked in at `%s` (on time)", display, at.Format("15:04:05"))
}
