package utils

import "strings"

// FullName ghép first + last name; fallback về username nếu cả hai trống
func FullName(firstName, lastName, username string) string {
	full := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if full == "" {
		return username
	}
	return full
}
