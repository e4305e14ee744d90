package hours

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	hourLayout = "2006-01-02 15"
)

var guiLocation *time.Location = time.UTC

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

// DateHour identifies a whole UTC hour, e.g. a model run cycle or a forecast valid time.
type DateHour struct {
	Date string
	Hour uint8
}

func (dh DateHour) String() string {
	return fmt.Sprintf("%s %02d", dh.Date, dh.Hour)
}

func (dh DateHour) LocalizedString() string {
	t, err := time.ParseInLocation(hourLayout, dh.String(), time.UTC)
	if err != nil {
		return dh.String()
	}
	localTime := t.In(guiLocation)
	return fmt.Sprintf("%s %02d", localTime.Format(dateLayout), localTime.Hour())
}

func (dh DateHour) IsoString() string {
	return fmt.Sprintf("%sT%02d:00:00Z", dh.Date, dh.Hour)
}

// CycleLabel formats the hour the way model cycles are named: "1500 UTC".
func (dh DateHour) CycleLabel() string {
	return fmt.Sprintf("%02d00 UTC", dh.Hour)
}

// ValidLabel formats date and hour as "2025-01-01 1500 UTC".
func (dh DateHour) ValidLabel() string {
	return fmt.Sprintf("%s %02d00 UTC", dh.Date, dh.Hour)
}

func (dh DateHour) Time() time.Time {
	t, err := time.ParseInLocation(hourLayout, dh.String(), time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (dh DateHour) Add(hours int) DateHour {
	t := dh.Time()
	if t.IsZero() {
		return dh
	}
	return FromTime(t.Add(time.Duration(hours) * time.Hour))
}

func (dh DateHour) Sub(hours int) DateHour {
	return dh.Add(-hours)
}

// HoursUntil returns the number of whole hours from dh to other.
func (dh DateHour) HoursUntil(other DateHour) int {
	return int(other.Time().Sub(dh.Time()) / time.Hour)
}

func (dh DateHour) Compare(other DateHour) int {
	if dh == other {
		return 0
	}
	if dh.Date < other.Date {
		return -1
	}
	if dh.Date > other.Date {
		return 1
	}
	if dh.Hour < other.Hour {
		return -1
	}
	return 1
}

func (dh DateHour) IsZero() bool {
	return dh.Date == "" && dh.Hour == 0
}

// FromTime truncates t to the hour in UTC.
func FromTime(t time.Time) DateHour {
	if t.IsZero() {
		return DateHour{}
	}
	t = t.UTC()
	return DateHour{
		Date: t.Format(dateLayout),
		Hour: uint8(t.Hour()),
	}
}

func FromNow() DateHour {
	return FromTime(time.Now())
}

func FromIso(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Parse reads the String() representation back.
func Parse(str string) (DateHour, error) {
	t, err := time.ParseInLocation(hourLayout, str, time.UTC)
	if err != nil {
		return DateHour{}, fmt.Errorf("parse date hour %q: %w", str, err)
	}
	return FromTime(t), nil
}

func FormatTimeInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format("2006-01-02 15:04:05")
}
