package table

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the four cell value types a table can hold.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindDate
)

// Value is a single immutable table cell: a string, a number, a calendar
// date, or missing. Missing is a real state (an absent observation), distinct
// from zero and from the empty string.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	date time.Time
}

// Missing returns the missing value.
func Missing() Value {
	return Value{kind: KindMissing}
}

// String returns a string cell value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric cell value.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// Int returns a numeric cell value from an integer.
func Int(n int64) Value {
	return Value{kind: KindNumber, num: decimal.NewFromInt(n)}
}

// Date returns a date cell value, truncated to calendar-day granularity in UTC.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind reports the value's type discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is the missing sentinel.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the numeric payload and whether the value is a number.
func (v Value) Num() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// Time returns the date payload and whether the value is a date.
func (v Value) Time() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// Equal reports exact equality of kind and payload. Two Missing values are
// equal; numbers compare by numeric value (1.0 == 1.00).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num.Equal(o.num)
	case KindDate:
		return v.date.Equal(o.date)
	default:
		return true
	}
}

// Text renders the value for display and output cells. Missing renders empty,
// dates render as YYYY-MM-DD.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindDate:
		return v.date.Format("2006-01-02")
	default:
		return ""
	}
}

// Compare orders two values: by numeric value for numbers, chronologically
// for dates, lexicographically for strings. Mixed kinds order by kind, and
// Missing sorts after every concrete value.
func Compare(a, b Value) int {
	if a.kind == KindMissing || b.kind == KindMissing {
		switch {
		case a.kind == b.kind:
			return 0
		case a.kind == KindMissing:
			return 1
		default:
			return -1
		}
	}
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		return a.num.Cmp(b.num)
	case KindDate:
		return a.date.Compare(b.date)
	default:
		return strings.Compare(a.str, b.str)
	}
}

// key returns a canonical representation used for grouping and join hashing.
func (v Value) key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return "n:" + v.num.String()
	case KindDate:
		return "d:" + v.date.Format("2006-01-02")
	default:
		return "m:"
	}
}
