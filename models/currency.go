package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTZS renders whole shillings as "1,250,000 TZS".
func FormatTZS(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s TZS", sign, AddCommasToInteger(amount))
}

// AddCommasToInteger groups the digits of value in threes.
func AddCommasToInteger(value int64) string {
	strValue := strconv.FormatInt(value, 10)
	var parts []string
	for i := len(strValue); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{strValue[start:i]}, parts...)
	}
	return strings.Join(parts, ",")
}
