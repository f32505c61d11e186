/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"strconv"
	"strings"

	cerrors "corvusdb/internal/errors"
)

// Epoch is 1970-01-01, matching the teacher's own UTC-epoch convention
// for timestamps (internal/sql/types.go TypeTIMESTAMP) and DuckDB's
// date/timestamp epoch (original_source).
const (
	microsPerSecond = 1_000_000
	microsPerDay    = 24 * 60 * 60 * microsPerSecond
)

var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear implements the Gregorian rule named in spec §4.1: "year
// divisible by 4, not by 100 unless by 400".
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}

func daysInMonthOf(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonth[month-1]
}

// daysFromCivil converts a (year, month, day) triple to a day count since
// the Unix epoch using Howard Hinnant's days_from_civil algorithm, which
// is exact for the proleptic Gregorian calendar.
func daysFromCivil(y, m, d int) int64 {
	y -= boolToInt(m <= 2)
	era := floorDiv(y, 400)
	yoe := y - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return int64(era)*146097 + int64(doe) - 719468
}

func civilFromDays(z int64) (y, m, d int) {
	z += 719468
	era := floorDiv64(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y64 := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d = int(doy-(153*mp+2)/5) + 1
	if mp < 10 {
		m = int(mp) + 3
	} else {
		m = int(mp) - 9
	}
	y64 += boolToInt64(m <= 2)
	return int(y64), m, d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseDate accepts strictly "YYYY-MM-DD" (spec §4.1). Any other
// separator, or an out-of-range month/day, fails with InvalidInput.
func ParseDate(s string) (int32, error) {
	y, m, d, err := parseDateParts(s)
	if err != nil {
		return 0, err
	}
	return int32(daysFromCivil(y, m, d)), nil
}

func parseDateParts(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, cerrors.InvalidFormat(s, "DATE")
	}
	y, e1 := strconv.Atoi(parts[0])
	m, e2 := strconv.Atoi(parts[1])
	d, e3 := strconv.Atoi(parts[2])
	if e1 != nil || e2 != nil || e3 != nil {
		return 0, 0, 0, cerrors.InvalidFormat(s, "DATE")
	}
	if m < 1 || m > 12 {
		return 0, 0, 0, cerrors.InvalidFormat(s, "DATE")
	}
	if d < 1 || d > daysInMonthOf(y, m) {
		return 0, 0, 0, cerrors.InvalidFormat(s, "DATE")
	}
	return y, m, d, nil
}

// ParseTimestamp accepts strictly "YYYY-MM-DD HH:MM:SS" (spec §4.1).
func ParseTimestamp(s string) (int64, error) {
	sp := strings.SplitN(s, " ", 2)
	if len(sp) != 2 {
		return 0, cerrors.InvalidFormat(s, "TIMESTAMP")
	}
	y, m, d, err := parseDateParts(sp[0])
	if err != nil {
		return 0, cerrors.InvalidFormat(s, "TIMESTAMP")
	}
	hh, mm, ss, err := parseTimeParts(sp[1])
	if err != nil {
		return 0, err
	}
	days := daysFromCivil(y, m, d)
	secs := hh*3600 + mm*60 + ss
	return days*microsPerDay + int64(secs)*microsPerSecond, nil
}

func parseTimeParts(s string) (hh, mm, ss int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, cerrors.InvalidFormat(s, "TIMESTAMP")
	}
	h, e1 := strconv.Atoi(parts[0])
	m, e2 := strconv.Atoi(parts[1])
	se, e3 := strconv.Atoi(parts[2])
	if e1 != nil || e2 != nil || e3 != nil {
		return 0, 0, 0, cerrors.InvalidFormat(s, "TIMESTAMP")
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || se < 0 || se > 59 {
		return 0, 0, 0, cerrors.InvalidFormat(s, "TIMESTAMP")
	}
	return h, m, se, nil
}

// FormatDate renders days since epoch as "YYYY-MM-DD" (spec §8 round-trip
// invariant: parse(sql_of(timestamp)) == timestamp).
func FormatDate(days int32) string {
	y, m, d := civilFromDays(int64(days))
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// FormatTimestamp renders micros since epoch as "YYYY-MM-DD HH:MM:SS".
func FormatTimestamp(micros int64) string {
	days := floorDiv64(micros, microsPerDay)
	rem := micros - days*microsPerDay
	secs := rem / microsPerSecond
	y, m, d := civilFromDays(days)
	hh := secs / 3600
	mm := (secs % 3600) / 60
	ss := secs % 60
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", y, m, d, hh, mm, ss)
}
