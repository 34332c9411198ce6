package value

import "strconv"

// formatNumber renders a float64 the way the original C interpreter's
// printf("%g", ...) does: up to 6 significant digits, trailing zeros and an
// unnecessary decimal point trimmed. Shared by both Value encodings.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', 6, 64)
}
