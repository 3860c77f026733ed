package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Statistic holds the lines of the size report.
type Statistic struct {
	Before  string
	After   string
	Percent string
}

// NewStatistic formats byte counts before and after optimization.
func NewStatistic(original, optimized int64) Statistic {
	percent := 0.0
	if original > 0 {
		percent = float64(optimized) * 100 / float64(original)
	}
	return Statistic{
		Before:  fmt.Sprintf("%s (%s bytes)", humanize.Bytes(uint64(max(original, 0))), humanize.Comma(original)),
		After:   fmt.Sprintf("%s (%s bytes)", humanize.Bytes(uint64(max(optimized, 0))), humanize.Comma(optimized)),
		Percent: fmt.Sprintf("%s%%", humanize.FtoaWithDigits(percent, 2)),
	}
}

// PrintStatistic prints the size report
func PrintStatistic(original, optimized int64) {
	s := NewStatistic(original, optimized)
	PrintKeyValue("Size before optimization", s.Before)
	PrintKeyValue("Size after optimization", s.After)
	PrintKeyValue("Optimized resources have", s.Percent+" of original size")
}
