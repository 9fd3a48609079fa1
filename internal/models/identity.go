// internal/models/identity.go
package models

import "strings"

// Mode is the caller's trust tier. It gates field exposure and global scope.
type Mode string

const (
	ModeCustomer Mode = "customer"
	ModeOperator Mode = "operator"
)

// ParseMode defaults to customer for anything that is not explicitly operator.
func ParseMode(raw string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(raw))) == ModeOperator {
		return ModeOperator
	}
	return ModeCustomer
}

// GlobalIdentity is the operator-only sentinel selecting the unscoped fetch.
const GlobalIdentity = "ALL"

// significantDigits is the canonical tail length used for identity matching.
// Stored numbers carry inconsistent country-code prefixes, so equality is
// defined over the last N digits only.
const significantDigits = 10

// NormalizeIdentity strips spaces and reduces a phone-like identity to its
// canonical 10-digit tail. The global sentinel passes through untouched.
func NormalizeIdentity(raw string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if raw == GlobalIdentity {
		return raw
	}
	digits := make([]rune, 0, len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > significantDigits {
		digits = digits[len(digits)-significantDigits:]
	}
	return string(digits)
}

// MaskIdentity hides all but the last four digits for log output.
func MaskIdentity(identity string) string {
	if identity == GlobalIdentity {
		return identity
	}
	if len(identity) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(identity)-4) + identity[len(identity)-4:]
}
