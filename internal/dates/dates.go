// Package dates normalizes the free-text date strings found in finding
// aids ("Nov. 1861.", "14-15 Oct. 1839", "1857 - 1860", "n.d.") into
// sortable ISO values plus a completeness marker.
//
// Undateable input maps to the sentinel 9999-12-31 so that unknown dates
// sort last. A date is "complete" only when it names a day of month and a
// month (or is a full numeric d/m/y); year-only and month-year values stay
// "incomplete" even though they get a sortable form.
package dates

import (
	"regexp"
	"strconv"
	"strings"

	"findingaids/pkg/models"
)

const (
	// Sentinel sorts after every real date.
	Sentinel = "9999-12-31"

	Complete   = "complete"
	Incomplete = "incomplete"
)

var monthNums = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var monthAbbrev = [13]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var (
	noDateRe   = regexp.MustCompile(`(?i)^\s*(?:no\s*date|n\.d\.?)\s*[.,;]?\s*$`)
	danglingRe = regexp.MustCompile(`-\s*[.,;]?\s*$`)

	// Years 1500 through 2199; archival material rarely strays outside.
	yearRe = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2}|21\d{2})\b`)

	// Longer alternatives first: Go regexp picks the leftmost alternative
	// that matches, so "sept" must precede "sep".
	monthRe = regexp.MustCompile(`(?i)\b(january|february|march|april|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\.?\b`)

	dayRe        = regexp.MustCompile(`\b([1-9]|[12][0-9]|3[01])(?:st|nd|rd|th)?\b`)
	dayTokenRe   = regexp.MustCompile(`\b([0-3]?[0-9])(?:st|nd|rd|th)?\b`)
	numericDayRe = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)

	// Range connectors. Long dashes are folded to "-" before splitting.
	splitRangeRe = regexp.MustCompile(`(?i)\s*(?:-|\bto\b|\band\b|&)\s*`)

	daySpanRe = regexp.MustCompile(`\b([1-9]|[12][0-9]|3[01])\s*-\s*([1-9]|[12][0-9]|3[01])\b`)

	spaceRe = regexp.MustCompile(`\s+`)
)

func clean(s string) string {
	s = strings.Trim(s, "“”\"'[]() ")
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)
	return spaceRe.ReplaceAllString(s, " ")
}

// leftSegment keeps the portion before a range connector (" to " wins over
// "-") and then before a ";".
func leftSegment(s string) string {
	low := strings.ToLower(s)
	if i := strings.Index(low, " to "); i >= 0 {
		s = s[:i]
	} else if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ";"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func findYear(s string) string {
	return yearRe.FindString(s)
}

func findMonth(s string) string {
	m := monthRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return monthAbbrev[monthNums[strings.ToLower(m[1])]]
}

// isComplete reports the day-and-month heuristic: a bare day token plus a
// month name, or a full numeric d/m/y.
func isComplete(seg string) bool {
	if numericDayRe.MatchString(seg) {
		return true
	}
	return dayTokenRe.MatchString(seg) && monthRe.MatchString(seg)
}

// Normalize turns a raw date string into ("YYYY-MM-DD", Complete|Incomplete).
// Only the left endpoint of a range is considered; missing month or day
// default to 01. Input with no recognizable year yields the sentinel.
func Normalize(raw string) (string, string) {
	s := clean(raw)
	if s == "" || noDateRe.MatchString(s) {
		return Sentinel, Incomplete
	}
	if danglingRe.MatchString(s) {
		return Sentinel, Incomplete
	}

	left := leftSegment(s)

	y, mo, d, ok := parseParts(left)
	if !ok {
		return Sentinel, Incomplete
	}

	iso := pad4(y) + "-" + pad2(mo) + "-" + pad2(d)
	if isComplete(left) {
		return iso, Complete
	}
	return iso, Incomplete
}

func parseParts(seg string) (year, month, day int, ok bool) {
	if m := numericDayRe.FindStringSubmatch(seg); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if y < 100 {
			y += 1900
		}
		if d >= 1 && d <= 31 && mo >= 1 && mo <= 12 {
			return y, mo, d, true
		}
	}

	ys := findYear(seg)
	if ys == "" {
		return 0, 0, 0, false
	}
	y, _ := strconv.Atoi(ys)

	mo := 1
	if m := monthRe.FindStringSubmatch(seg); m != nil {
		mo = monthNums[strings.ToLower(m[1])]
	}

	d := 1
	if m := dayRe.FindStringSubmatch(seg); m != nil {
		d, _ = strconv.Atoi(m[1])
	}
	return y, mo, d, true
}

func pad4(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func cleanPiece(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " .;,/")
}

func findLastDay(s string) string {
	ms := dayRe.FindAllStringSubmatch(s, -1)
	if ms == nil {
		return ""
	}
	return ms[len(ms)-1][1]
}

// reconstructDate builds a standalone human-readable date ("14 Oct 1839")
// from one range piece, borrowing year and month context from the whole
// string when the piece lacks them.
func reconstructDate(piece, defYear, defMonth string) string {
	piece = cleanPiece(piece)
	y := findYear(piece)
	if y == "" {
		y = defYear
	}
	mo := findMonth(piece)
	if mo == "" {
		mo = defMonth
	}
	d := findLastDay(piece)

	switch {
	case y != "" && mo != "" && d != "":
		n, _ := strconv.Atoi(d)
		return strconv.Itoa(n) + " " + mo + " " + y
	case y != "" && mo != "":
		return mo + " " + y
	case y != "":
		return y
	}
	return piece
}

// daySpan catches spans like "14-15 Oct." inside a single piece and expands
// them into two full endpoint strings.
func daySpan(piece, whole string) (string, string, bool) {
	p := cleanPiece(piece)
	m := daySpanRe.FindStringSubmatch(p)
	if m == nil {
		return "", "", false
	}
	mo := findMonth(p)
	if mo == "" {
		mo = findMonth(whole)
	}
	y := findYear(p)
	if y == "" {
		y = findYear(whole)
	}
	left := joinParts(m[1], mo, y)
	right := joinParts(m[2], mo, y)
	return left, right, true
}

func joinParts(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// SplitRange splits a raw date string into explicit (start, end) endpoint
// texts, carrying shared month and year context into each side. A single
// date yields the same text for both endpoints.
func SplitRange(raw string) (string, string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	s := strings.NewReplacer("–", "-", "—", "-").Replace(raw)
	s = strings.TrimRight(spaceRe.ReplaceAllString(strings.TrimSpace(s), " "), " .;,/")

	var pieces []string
	for _, p := range splitRangeRe.Split(s, -1) {
		if strings.TrimSpace(p) != "" {
			pieces = append(pieces, p)
		}
	}
	if len(pieces) == 0 {
		return "", ""
	}

	if len(pieces) == 1 {
		if start, end, ok := daySpan(pieces[0], s); ok {
			return start, end
		}
		single := reconstructDate(pieces[0], findYear(s), findMonth(s))
		return single, single
	}

	start := reconstructDate(pieces[0], findYear(s), findMonth(s))
	end := reconstructDate(pieces[len(pieces)-1], findYear(s), findMonth(s))
	return start, end
}

// Enrich fills every derived date field on each row from its raw Dates text.
func Enrich(rows []models.Record) {
	for i := range rows {
		r := &rows[i]

		r.DatesSortable, r.DateComplete = Normalize(r.Dates)

		start, end := SplitRange(r.Dates)
		r.StartDate, r.EndDate = start, end

		if start != "" {
			r.StartDateSortable, r.StartDateComplete = Normalize(start)
		} else {
			r.StartDateSortable, r.StartDateComplete = "", Incomplete
		}
		if end != "" {
			r.EndDateSortable, r.EndDateComplete = Normalize(end)
		} else {
			r.EndDateSortable, r.EndDateComplete = "", Incomplete
		}
	}
}
