package utils

import (
	"strconv"
)

// ParseID parses a positive numeric id. It returns 0 if s is not one.
func ParseID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
