package collection

import (
	"cmp"
	"strings"
	"time"

	"record-collection/core/utils"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

func compareRecords(collator Comparer, attrs []string, dirs []Direction, a, b Record) int {
	for i, attr := range attrs {
		if r := compareAttribute(collator, attr, dirs[i], a, b); r != 0 {
			return r
		}
	}
	return 0
}

// compareAttribute dispatches on the declared kinds of both sides:
// text on either side uses the collator, time of day on both sides compares
// wall-clock time, everything else compares raw values.
func compareAttribute(collator Comparer, attr string, dir Direction, a, b Record) int {
	va, vb := a.Get(attr), b.Get(attr)
	ka, kb := a.Kind(attr), b.Kind(attr)

	var r int
	switch {
	case ka == KindText || kb == KindText:
		r = compareText(collator, va, vb)
	case ka == KindTimeOfDay && kb == KindTimeOfDay:
		r = compareTimeOfDay(va, vb)
	default:
		r = compareValues(va, vb)
	}

	if dir == Desc {
		r = -r
	}
	return r
}

func compareText(collator Comparer, a, b any) int {
	return collator.CompareString(textOf(a), textOf(b))
}

func textOf(v any) string {
	if v == nil {
		return ""
	}
	return utils.ToString(v)
}

func compareTimeOfDay(a, b any) int {
	ta, okA := asTime(a)
	tb, okB := asTime(b)
	if !okA || !okB {
		return compareValues(a, b)
	}
	return cmp.Compare(millisOfDay(ta), millisOfDay(tb))
}

// millisOfDay returns the milliseconds elapsed since midnight; the date is ignored.
func millisOfDay(t time.Time) int64 {
	return int64(t.Hour())*msPerHour +
		int64(t.Minute())*msPerMinute +
		int64(t.Second())*msPerSecond +
		int64(t.Nanosecond()/int(time.Millisecond))
}

// compareValues orders nil first, then numbers, strings, times and booleans
// among their own kind. Values of unrelated types compare equal.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := utils.ToFloat(a); ok {
		if fb, ok := utils.ToFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}
