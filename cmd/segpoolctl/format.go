package main

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// num formats an integer with thousands separators.
func num[N ~int | ~int64 | ~uint64](n N) string {
	return printer.Sprintf("%d", n)
}

// bytesize formats a byte count with a binary unit.
func bytesize(n int) string {
	const unit = 1024
	if n < unit {
		return printer.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return printer.Sprintf("%.1f %siB", float64(n)/float64(div), "KMGTPE"[exp:exp+1])
}

// rate formats operations per second.
func rate(ops uint64, d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	return printer.Sprintf("%.0f ops/s", float64(ops)/d.Seconds())
}
