// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotPositive is returned by PositiveInt for values that are not
// integers >= 1.
var ErrNotPositive = errors.New("must be a positive integer")

// PositiveInt parses a query value that must be an integer >= 1. An empty
// (or all-space) value yields def; anything else that does not parse, or
// parses to zero or less, is an error rather than being clamped.
//
//	PositiveInt("", 1)   // 1, nil
//	PositiveInt("3", 1)  // 3, nil
//	PositiveInt("0", 1)  // 0, ErrNotPositive
//	PositiveInt("x", 1)  // 0, ErrNotPositive
func PositiveInt(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrNotPositive
	}
	return n, nil
}
