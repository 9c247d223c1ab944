package invoice

import (
	"fmt"
	"strings"
)

// FormatINR renders an amount as "Rs. 1,00,000.00" using Indian digit
// grouping: the last three integer digits form one group, the rest pair off
// in twos.
func FormatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	intPart := s[:len(s)-3]
	decPart := s[len(s)-3:]

	grouped := groupIndian(intPart)
	if neg {
		return "Rs. -" + grouped + decPart
	}
	return "Rs. " + grouped + decPart
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)

	return strings.Join(groups, ",")
}
