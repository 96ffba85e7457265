package services

import (
	"math"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/speaker/internal/common"
)

// normalizeEmail trims and lowercases s and checks it is a bare address.
func normalizeEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	if email == "" {
		return "", common.Invalid("email is empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.Invalid("malformed email %q", s)
	}
	return email, nil
}

func requireText(field, s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", common.Invalid("%s is empty", field)
	}
	return v, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
