// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package timeexpr parses the time range expressions accepted by search:
// "now", relative snaptime chains such as "-60m@m" or "-1d@d+8h", and
// absolute, possibly partial, timestamps such as "2024-03-01 10:00" or
// "10:00" (today at ten).
package timeexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports an expression that is neither a snaptime chain nor a
// known timestamp layout.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time expression %q: %s", e.Expr, e.Reason)
}

type unit int

const (
	second unit = iota
	minute
	hour
	day
	week
	month
	year
)

var units = map[string]unit{
	"s": second, "sec": second, "secs": second, "second": second, "seconds": second,
	"m": minute, "min": minute, "mins": minute, "minute": minute, "minutes": minute,
	"h": hour, "hr": hour, "hrs": hour, "hour": hour, "hours": hour,
	"d": day, "day": day, "days": day,
	"w": week, "week": week, "weeks": week,
	"mon": month, "month": month, "months": month,
	"y": year, "yr": year, "yrs": year, "year": year, "years": year,
}

var reStep = regexp.MustCompile(`^(?:([+-])(\d*)([a-zA-Z]+)|@([a-zA-Z]+))`)

// Layouts tried for absolute timestamps, in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Layouts that only carry a time of day, applied to the date of now.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// Parse evaluates expr relative to now. Snapping and date-only timestamps
// use the location of now.
func Parse(expr string, now time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)

	switch {
	case expr == "" || strings.EqualFold(expr, "now"):
		return now, nil
	case strings.ContainsAny(expr[:1], "+-@"):
		return parseSnap(expr, now)
	}

	loc := now.Location()
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, expr, loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, expr, loc); err == nil {
			y, m, d := now.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, &ParseError{Expr: expr, Reason: "not a snaptime or a recognized timestamp"}
}

func parseSnap(expr string, now time.Time) (time.Time, error) {
	t := now
	rest := expr

	for rest != "" {
		m := reStep.FindStringSubmatch(rest)
		if m == nil {
			return time.Time{}, &ParseError{Expr: expr, Reason: fmt.Sprintf("unexpected %q", rest)}
		}
		rest = rest[len(m[0]):]

		if m[4] != "" {
			u, ok := units[strings.ToLower(m[4])]
			if !ok {
				return time.Time{}, &ParseError{Expr: expr, Reason: fmt.Sprintf("unknown unit %q", m[4])}
			}
			t = snap(t, u)
			continue
		}

		u, ok := units[strings.ToLower(m[3])]
		if !ok {
			return time.Time{}, &ParseError{Expr: expr, Reason: fmt.Sprintf("unknown unit %q", m[3])}
		}
		n := 1
		if m[2] != "" {
			var err error
			if n, err = strconv.Atoi(m[2]); err != nil {
				return time.Time{}, &ParseError{Expr: expr, Reason: err.Error()}
			}
		}
		if m[1] == "-" {
			n = -n
		}
		t = shift(t, u, n)
	}

	return t, nil
}

func shift(t time.Time, u unit, n int) time.Time {
	switch u {
	case second:
		return t.Add(time.Duration(n) * time.Second)
	case minute:
		return t.Add(time.Duration(n) * time.Minute)
	case hour:
		return t.Add(time.Duration(n) * time.Hour)
	case day:
		return t.AddDate(0, 0, n)
	case week:
		return t.AddDate(0, 0, 7*n)
	case month:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(n, 0, 0)
	}
}

// snap truncates t to the start of its unit. Weeks start on Monday.
func snap(t time.Time, u unit) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	loc := t.Location()

	switch u {
	case second:
		return time.Date(y, mo, d, h, mi, s, 0, loc)
	case minute:
		return time.Date(y, mo, d, h, mi, 0, 0, loc)
	case hour:
		return time.Date(y, mo, d, h, 0, 0, 0, loc)
	case day:
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	case week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, mo, d-offset, 0, 0, 0, 0, loc)
	case month:
		return time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
}

// Range parses a start and end expression against the same now and checks
// their order.
func Range(start, end string, now time.Time) (time.Time, time.Time, error) {
	from, err := Parse(start, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := Parse(end, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return from, to, nil
}
