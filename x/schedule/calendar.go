// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package schedule

import (
	"time"

	"github.com/rickar/cal"
)

// target2 is the TARGET2 settlement calendar: weekends and the ECB closing days
// (New Year's Day, Good Friday, Easter Monday, 1 May, 25 and 26 December).
// Closing days are never moved to another weekday.
var target2 = func() *cal.Calendar {
	c := cal.NewCalendar()
	cal.AddEcbHolidays(c)
	c.Observed = cal.ObservedExact
	return c
}()

// IsBusinessDay reports if t falls on a TARGET2 settlement day.
func IsBusinessDay(t time.Time) bool {
	return target2.IsWorkday(t)
}

// NextBusinessDay returns the first TARGET2 settlement day after t.
func NextBusinessDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for !IsBusinessDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
