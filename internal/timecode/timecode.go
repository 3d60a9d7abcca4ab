// Package timecode implements the compact duration notation used across the
// bot: `<n>д <n>ч <n>м <n>с` (days/hours/minutes/seconds). Durations are
// normalized to whole seconds internally; rendering drops sub-minute
// remainders.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
)

// ZeroLabel is emitted by Format when the duration renders to no components.
const ZeroLabel = "0сек"

// ParseFreeform parses a free-text duration like "2ч30м" or "1д 4ч" into
// total seconds. Digits accumulate until a unit marker is seen; markers
// without preceding digits contribute nothing; unrecognized characters are
// skipped. It never fails: an empty or fully unrecognized string yields 0.
func ParseFreeform(s string) int64 {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))

	var total int64
	var pending strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			pending.WriteRune(r)
			continue
		}
		if pending.Len() == 0 {
			continue
		}
		n, err := strconv.ParseInt(pending.String(), 10, 64)
		if err != nil {
			pending.Reset()
			continue
		}
		switch r {
		case 'с':
			total += n
		case 'м':
			total += n * secondsPerMinute
		case 'ч':
			total += n * secondsPerHour
		case 'д':
			total += n * secondsPerDay
		}
		pending.Reset()
	}
	return total
}

// Format renders seconds as space-joined nonzero components in
// day-hour-minute order ("1д 2ч 30м"). The sub-minute remainder is dropped,
// not rounded. All-zero components render as ZeroLabel.
func Format(seconds int64) string {
	days := seconds / secondsPerDay
	hours := (seconds % secondsPerDay) / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dд", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dч", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dм", minutes))
	}
	if len(parts) == 0 {
		return ZeroLabel
	}
	return strings.Join(parts, " ")
}

// Canonical renders the full "{d}д {h}ч {m}м" triple including zero
// components. This is the storage form for fixed subcategory durations.
func Canonical(seconds int64) string {
	days := seconds / secondsPerDay
	hours := (seconds % secondsPerDay) / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute
	return fmt.Sprintf("%dд %dч %dм", days, hours, minutes)
}

// FromParts converts a day/hour/minute triple into total seconds. It performs
// no range validation; callers accepting structured input are expected to run
// ValidateParts first.
func FromParts(days, hours, minutes int) int64 {
	return int64(days)*secondsPerDay + int64(hours)*secondsPerHour + int64(minutes)*secondsPerMinute
}

// ValidateParts enforces the structured-input ranges: non-negative days,
// hours in [0,23], minutes in [0,59].
func ValidateParts(days, hours, minutes int) error {
	if days < 0 || hours < 0 || minutes < 0 {
		return fmt.Errorf("time components must not be negative")
	}
	if hours > 23 {
		return fmt.Errorf("hours must be in 0..23, got %d", hours)
	}
	if minutes > 59 {
		return fmt.Errorf("minutes must be in 0..59, got %d", minutes)
	}
	return nil
}
