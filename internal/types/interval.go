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

import "fmt"

// Interval is the decomposed result of Age (spec §4.1 "age(a,b)").
// Fields carry a uniform sign following "a − b" (spec §4.1): Negative is
// true when a < b, in which case every non-zero field below is reported
// with its magnitude and the group is rendered with a leading '-'.
type Interval struct {
	Years, Months, Days    int
	Hours, Minutes, Seconds int
	Negative               bool
}

// Age computes the calendar interval between two TIMESTAMP values
// (micros since epoch), decomposed into years/months/days/HH:MM:SS with
// the sign of a-b (spec §4.1). Months borrow from years; days borrow
// from months using the earlier operand's own month length (spec: "using
// the source month's length").
func Age(aMicros, bMicros int64) Interval {
	negative := aMicros < bMicros
	hi, lo := aMicros, bMicros
	if negative {
		hi, lo = bMicros, aMicros
	}

	hiDay, hiSec := splitMicros(hi)
	loDay, loSec := splitMicros(lo)
	hy, hm, hd := civilFromDays(hiDay)
	ly, lm, ld := civilFromDays(loDay)
	hh, hmin, hs := secondsToHMS(hiSec)
	lh, lmin, ls := secondsToHMS(loSec)

	year := hy - ly
	month := hm - lm
	day := hd - ld
	hour := hh - lh
	minute := hmin - lmin
	second := hs - ls

	if second < 0 {
		second += 60
		minute--
	}
	if minute < 0 {
		minute += 60
		hour--
	}
	if hour < 0 {
		hour += 24
		day--
	}

	for day < 0 {
		day += daysInMonthOf(ly, lm)
		month--
	}
	for month < 0 {
		month += 12
		year--
	}

	iv := Interval{
		Years: year, Months: month, Days: day,
		Hours: hour, Minutes: minute, Seconds: second,
		Negative: negative,
	}
	return iv
}

func splitMicros(micros int64) (days int64, secOfDay int64) {
	days = floorDiv64(micros, microsPerDay)
	rem := micros - days*microsPerDay
	return days, rem / microsPerSecond
}

func secondsToHMS(sec int64) (h, m, s int) {
	h = int(sec / 3600)
	m = int((sec % 3600) / 60)
	s = int(sec % 60)
	return
}

func plural(n int, singular, plural string) string {
	if n == 1 || n == -1 {
		return singular
	}
	return plural
}

// String renders the interval the way DuckDB/Postgres render AGE()
// output (spec §8 scenario 4): leading groups are omitted entirely when
// zero, and the sign is applied per rendered group.
func (iv Interval) String() string {
	sign := ""
	if iv.Negative {
		sign = "-"
	}

	var parts []string
	if iv.Years != 0 || iv.Months != 0 {
		var ym []string
		if iv.Years != 0 {
			ym = append(ym, fmt.Sprintf("%d %s", iv.Years, plural(iv.Years, "year", "years")))
		}
		if iv.Months != 0 {
			ym = append(ym, fmt.Sprintf("%d %s", iv.Months, plural(iv.Months, "mon", "mons")))
		}
		joined := ym[0]
		for _, p := range ym[1:] {
			joined += " " + p
		}
		parts = append(parts, sign+joined)
	}
	if iv.Days != 0 {
		parts = append(parts, fmt.Sprintf("%s%d %s", sign, iv.Days, plural(iv.Days, "day", "days")))
	}
	if iv.Hours != 0 || iv.Minutes != 0 || iv.Seconds != 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%s%02d:%02d:%02d", sign, iv.Hours, iv.Minutes, iv.Seconds))
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
