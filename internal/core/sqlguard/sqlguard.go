// internal/core/sqlguard/sqlguard.go

// Package sqlguard enforces the two safety checks every query passes through:
// a template-shape check at load time and a parameter check per request. No
// caller-supplied text ever reaches a query body; parameters are bound, never
// interpolated, and anything that smells like injection fails closed.
package sqlguard

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrBlockedKeyword  = errors.New("blocked keyword in template")
	ErrMultiStatement  = errors.New("multiple statements not allowed")
	ErrNotReadOnly     = errors.New("only read-only statements are allowed")
	ErrInvalidParam    = errors.New("invalid parameter value")
)

// blockedKeywords never appear in our templates; the check is defense in
// depth against a bad catalog edit reaching production.
var blockedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "TRUNCATE",
	"GRANT", "REVOKE", "CREATE", "EXEC", "EXECUTE",
}

var (
	// Whole-word match only: "updated_at" must not trip "UPDATE".
	blockedPattern = func() *regexp.Regexp {
		return regexp.MustCompile(`(?i)\b(` + strings.Join(blockedKeywords, "|") + `)\b`)
	}()

	// A semicolon followed by more SQL is a second statement.
	multiStatementPattern = regexp.MustCompile(`;\s*\S`)

	commentMarkers = []string{"--", "/*", "*/"}
)

// CheckTemplate validates that a query body follows the read-only rules.
// Run once per template at catalog load; re-runnable on demand.
func CheckTemplate(body string) error {
	if m := blockedPattern.FindString(body); m != "" {
		return fmt.Errorf("%w: %s", ErrBlockedKeyword, strings.ToUpper(m))
	}

	if multiStatementPattern.MatchString(body) {
		return ErrMultiStatement
	}

	upper := strings.ToUpper(strings.TrimSpace(body))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ErrNotReadOnly
	}

	return nil
}

// Guard applies the per-request parameter checks.
type Guard struct {
	MaxLimit int
}

// CheckParams validates and clamps query parameters. Limit and offset are
// coerced and clamped; string values containing comment markers fail the
// whole request rather than being escaped.
func (g Guard) CheckParams(params map[string]interface{}) (map[string]interface{}, error) {
	checked := make(map[string]interface{}, len(params))

	for key, value := range params {
		switch key {
		case "limit":
			n, err := coerceInt(value)
			if err != nil {
				return nil, fmt.Errorf("%w: limit %v", ErrInvalidParam, value)
			}
			if n < 1 {
				n = 1
			}
			if n > g.MaxLimit {
				n = g.MaxLimit
			}
			checked[key] = n

		case "offset":
			n, err := coerceInt(value)
			if err != nil {
				return nil, fmt.Errorf("%w: offset %v", ErrInvalidParam, value)
			}
			if n < 0 {
				n = 0
			}
			checked[key] = n

		default:
			if s, ok := value.(string); ok {
				s = strings.TrimSpace(s)
				for _, marker := range commentMarkers {
					if strings.Contains(s, marker) {
						return nil, fmt.Errorf("%w: %s", ErrInvalidParam, key)
					}
				}
				checked[key] = s
				continue
			}
			checked[key] = value
		}
	}

	return checked, nil
}

func coerceInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("not an integer: %v", value)
	}
}
