package common

import (
	"bytes"
	"strings"
)

func StringReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}

// FullName joins first and last name, skipping the empty parts.
func FullName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}
