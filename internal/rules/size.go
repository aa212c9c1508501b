package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Binary unit multipliers. OS file sizes are reported in binary units, so the
// rule format uses 1MB = 1024*1024 rather than the decimal SI meaning.
var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses a human-readable size like "100MB" or "1.5GB" into bytes.
// A bare number is taken as raw bytes.
func ParseSize(s string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty size value")
	}

	for _, unit := range sizeUnits {
		if !strings.HasSuffix(trimmed, unit.suffix) {
			continue
		}
		numPart := strings.TrimSpace(strings.TrimSuffix(trimmed, unit.suffix))
		n, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size %q: %w", s, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("invalid size %q: negative", s)
		}
		return int64(n * float64(unit.multiplier)), nil
	}

	// No unit suffix: raw bytes
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", s)
	}
	return n, nil
}
