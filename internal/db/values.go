package db

import (
	"fmt"
	"strconv"
	"time"
)

// timeLayout is RFC 3339 with a fixed nanosecond width.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var parseLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// String reads a text column; NULL reads as "".
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 reads an integer column; NULL reads as 0.
func (r Row) Int64(column string) (int64, error) {
	switch v := r[column].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", column, v)
	}
}

// Time reads a timestamp column; NULL reads as nil.
func (r Row) Time(column string) (*time.Time, error) {
	switch v := r[column].(type) {
	case nil:
		return nil, nil
	case time.Time:
		t := v.UTC()
		return &t, nil
	case string:
		return parseTime(column, v)
	case []byte:
		return parseTime(column, string(v))
	default:
		return nil, fmt.Errorf("column %s: unexpected type %T", column, v)
	}
}

func parseTime(column, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("column %s: cannot parse time %q", column, value)
}

// Null turns zero values into SQL NULL for optional columns.
func Null[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

// NullTime turns a nil time pointer into SQL NULL.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
