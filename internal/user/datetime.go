package user

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the zone-less ISO-8601 form used on the wire.
const DateTimeLayout = "2006-01-02T15:04:05.999999999"

// DateLayout is the form of the from/to range query parameters.
const DateLayout = "2006-01-02"

var dateTimeParseLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// DateTime is a local date-time without zone information. Values without an
// offset are interpreted in the local time zone of the process.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("birth date must be a string: %w", err)
	}

	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}

	d.Time = t
	return nil
}

// ParseDateTime accepts yyyy-MM-ddTHH:mm[:ss[.fraction]] and RFC 3339.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeParseLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time '%s', expected format yyyy-MM-ddTHH:mm:ss", value)
}

// ParseDate parses a yyyy-MM-dd range bound as local midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s', expected format yyyy-MM-dd: %w", value, err)
	}
	return t, nil
}
