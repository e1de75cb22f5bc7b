package logger

import (
	"log/slog"
	"regexp"
	"strings"
)

// Sensitive key patterns that should be redacted. Paths such as
// keypair_path are not secrets and stay readable.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"private",
	"seed",
	"mnemonic",
	"credential",
	"bearer",
}

// keypairBytes matches a solana-keygen keypair file body: a JSON array of
// 64 byte values.
var keypairBytes = regexp.MustCompile(`^\s*\[\s*(\d{1,3}\s*,\s*){63}\d{1,3}\s*\]\s*$`)

const redactedValue = "***REDACTED***"

// redactSensitive redacts string attributes that carry key material or
// whose key names suggest a secret.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if strVal == "" {
			return a
		}
		if IsSensitiveValue(strVal) || IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// RedactString returns redactedValue when value looks like key material.
func RedactString(value string) string {
	if IsSensitiveValue(value) {
		return redactedValue
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be a raw keypair.
func IsSensitiveValue(value string) bool {
	return keypairBytes.MatchString(value)
}
