package exporter

import (
	"strconv"

	"leadscout/pkg/contracts/domain"
)

// formatFloat formats a score with exactly 2 decimal places, so 13.4 appears as 13.40
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatPolarity keeps one more decimal than scores since polarities live in [-1, 1]
func formatPolarity(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatDate(d domain.Date) string {
	return d.String()
}
