package timeutil

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Common layouts used by forms and views
const (
	DateLayout     = "2006-01-02"
	DisplayLayout  = "02 Jan 2006"
	DateTimeLayout = "02 Jan 2006, 03:04 PM"
)

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts any time to IST
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// Today returns the current IST date as YYYY-MM-DD, the value date inputs submit
func Today() string {
	return Now().Format(DateLayout)
}

// ParseDate accepts the date-input layout, RFC3339 timestamps and
// datetime-local values, interpreting zone-less values in IST.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(IST), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, IST); err == nil {
		return t, nil
	}
	return time.ParseInLocation(DateLayout, value, IST)
}

// DaysInMonth returns the number of days in t's calendar month (IST).
func DaysInMonth(t time.Time) int {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month()+1, 0, 0, 0, 0, 0, IST).Day()
}

// StartOfDay returns the start of day (00:00:00) in IST for the given time
func StartOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}
