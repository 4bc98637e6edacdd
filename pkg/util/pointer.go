package util

import "time"

// TimePointer converts a time.Time to a pointer to a time.Time.
func TimePointer(t time.Time) *time.Time {
	return &t
}

// Float64Pointer converts a float64 to a pointer to a float64.
func Float64Pointer(v float64) *float64 {
	return &v
}

// Int64Pointer converts an int64 to a pointer to an int64.
func Int64Pointer(v int64) *int64 {
	return &v
}

// StringPointer converts a string to a pointer to a string.
func StringPointer(v string) *string {
	return &v
}
