package utils

import (
	"strconv"
	"strings"

	"clinic-backend/pkg/apperror"
)

// StringToUint64 parses an id, returning 0 on bad input.
func StringToUint64(str string) uint64 {
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseID parses a positive id from a path or header value.
func ParseID(str string) (uint64, error) {
	val, err := strconv.ParseUint(strings.TrimSpace(str), 10, 64)
	if err != nil || val == 0 {
		return 0, apperror.Validation("id inválido")
	}
	return val, nil
}
