package stats

import (
	"fmt"
	"strconv"
)

// FormatCount renders a raw count the way the landing page shows it,
// collapsing thousands and millions to one decimal.
func FormatCount(n int) string {
	switch {
	case n == 0:
		return "0"
	case n < 1000:
		return strconv.Itoa(n)
	case n < 1000000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// FormatEth renders an ETH amount as a display string.
func FormatEth(eth float64) string {
	switch {
	case eth == 0:
		return "$0"
	case eth < 0.001:
		return "<$0.001"
	case eth < 1:
		return fmt.Sprintf("$%.3f", eth)
	case eth < 1000:
		return fmt.Sprintf("$%.2f", eth)
	case eth < 1000000:
		return fmt.Sprintf("$%.1fK", eth/1000)
	default:
		return fmt.Sprintf("$%.1fM", eth/1000000)
	}
}
