package logging

import (
	"log/slog"
	"sort"
	"strings"
)

// RedactedValue replaces sensitive values in log output.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"signature":   {},
	"passphrase":  {},
	"password":    {},
	"private_key": {},
	"secret":      {},
	"seed":        {},
}

// IsSensitive reports whether values logged under key must be masked. Keys
// match case-insensitively, either exactly or as a "_<name>" suffix such as
// "whitelist_signature".
func IsSensitive(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, ok := sensitiveKeys[normalized]; ok {
		return true
	}
	for name := range sensitiveKeys {
		if strings.HasSuffix(normalized, "_"+name) {
			return true
		}
	}
	return false
}

// SensitiveKeys returns the sorted base key names that are always masked.
func SensitiveKeys() []string {
	keys := make([]string, 0, len(sensitiveKeys))
	for key := range sensitiveKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MaskValue returns RedactedValue for non-empty values and empty values
// unchanged.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// MaskField builds an attribute whose value is masked regardless of key. Use it
// where a caller already knows the value is secret.
func MaskField(key, value string) slog.Attr {
	return slog.String(key, MaskValue(value))
}

// redactAttr masks attributes logged under a sensitive key. Groups are left
// to the handler, which calls back for each member.
func redactAttr(attr slog.Attr) slog.Attr {
	if !IsSensitive(attr.Key) || attr.Value.Kind() == slog.KindGroup {
		return attr
	}
	if attr.Value.Kind() == slog.KindString {
		return slog.String(attr.Key, MaskValue(attr.Value.String()))
	}
	return slog.String(attr.Key, RedactedValue)
}
