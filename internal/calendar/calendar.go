// Package calendar exports a Ramadan window as an iCalendar feed.
package calendar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/smokyabdulrahman/ramadan-status/internal/api"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

const (
	ProductID = "-//ramadan-status//Calendar//EN"
	Version   = "2.0"
	Name      = "Ramadan"

	// ContentType is the media type served for Build output.
	ContentType = "text/calendar; charset=utf-8"
)

// RefreshInterval is advertised to clients (RFC 7986).
const RefreshInterval = 6 * time.Hour

const propRefresh = "REFRESH-INTERVAL"

// uidSpace namespaces event UIDs so a given Ramadan keeps the same UID
// across regenerations.
var uidSpace = uuid.MustParse("8f1f4c1e-4a4e-4b8e-9a51-3d6f0e0c9a10")

// Empty is a valid calendar with no events.
const Empty = "BEGIN:VCALENDAR\r\nVERSION:" + Version + "\r\nPRODID:" + ProductID + "\r\nEND:VCALENDAR\r\n"

// Build encodes st as a calendar. When both Ramadan edges are known the
// feed holds one all-day event; DTEND is exclusive, so it is the day after
// the last fast. Otherwise an empty calendar is returned.
func Build(st ramadan.Status, now time.Time) ([]byte, error) {
	start, end, ok := window(st)
	if !ok {
		return []byte(Empty), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, Version)
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Props.SetText("X-WR-CALNAME", Name)

	refresh := ical.NewProp(propRefresh)
	refresh.SetDuration(RefreshInterval)
	cal.Props.Set(refresh)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, UID(st))
	event.Props.SetText(ical.PropSummary, Summary(st))

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())
	event.Props.Set(stamp)

	dtStart := ical.NewProp(ical.PropDateTimeStart)
	dtStart.SetDate(start)
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(ical.PropDateTimeEnd)
	dtEnd.SetDate(end.AddDate(0, 0, 1))
	event.Props.Set(dtEnd)

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// Summary is the event title, e.g. "Ramadan 1447".
func Summary(st ramadan.Status) string {
	if st.HijriYear == "" {
		return Name
	}
	return Name + " " + st.HijriYear
}

// UID is derived from the Hijri year and start date.
func UID(st ramadan.Status) string {
	start := ""
	if st.RamadanStartGregorian != nil {
		start = *st.RamadanStartGregorian
	}
	id := uuid.NewSHA1(uidSpace, []byte(st.HijriYear+"|"+start))
	return id.String() + "@ramadan-status"
}

func window(st ramadan.Status) (time.Time, time.Time, bool) {
	if st.RamadanStartGregorian == nil || st.RamadanEndGregorian == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(api.DateLayout, *st.RamadanStartGregorian)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(api.DateLayout, *st.RamadanEndGregorian)
	if err != nil || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
