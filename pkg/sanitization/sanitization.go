// Package sanitization keeps secrets out of host logs. Configuration trees
// routinely carry credentials (connection strings, API keys); every log
// field written through pkg/observability passes through SanitizeFieldValue.
package sanitization

import (
	"fmt"
	"strings"
)

const redactedValue = "[REDACTED]"

const (
	emptyMaskedValue = "(empty)"
	maskedValue      = "***masked***"
)

// SanitizationType defines how to sanitize a field.
type SanitizationType int

const (
	FullyRedact SanitizationType = iota
	PartialMask
)

// SensitiveFields defines fields that require explicit sanitization
// behavior, keyed by lowercased field name.
var SensitiveFields = map[string]SanitizationType{
	"password":    FullyRedact,
	"passphrase":  FullyRedact,
	"secret":      FullyRedact,
	"secret_key":  FullyRedact,
	"private_key": FullyRedact,

	"token":         FullyRedact,
	"api_token":     FullyRedact,
	"access_token":  FullyRedact,
	"refresh_token": FullyRedact,
	"authorization": FullyRedact,

	"connection_string": FullyRedact,
	"dsn":               FullyRedact,

	"api_key":    PartialMask,
	"api_key_id": PartialMask,
	"client_id":  PartialMask,
}

// sensitiveSubstrings catches compound names like db_password or
// smtp_secret that are not listed verbatim.
var sensitiveSubstrings = []string{"password", "secret", "token", "credential"}

// SanitizeFieldValue returns value, redacted or masked when key names a
// sensitive field.
func SanitizeFieldValue(key string, value any) any {
	lower := strings.ToLower(key)

	if kind, ok := SensitiveFields[lower]; ok {
		return applyKind(kind, value)
	}
	for _, sub := range sensitiveSubstrings {
		if strings.Contains(lower, sub) {
			return applyKind(FullyRedact, value)
		}
	}
	return value
}

func applyKind(kind SanitizationType, value any) any {
	if kind == PartialMask {
		return MaskValue(fmt.Sprintf("%v", value))
	}
	return redactedValue
}

// MaskValue keeps the last four characters of a value and masks the rest.
// Values too short to keep a useful suffix are masked entirely.
func MaskValue(s string) string {
	if s == "" {
		return emptyMaskedValue
	}
	if len(s) <= 4 {
		return maskedValue
	}
	return maskedValue + s[len(s)-4:]
}
