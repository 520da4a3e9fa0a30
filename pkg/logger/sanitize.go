package logger

import (
	"net/url"
	"sort"
	"strings"
)

// SanitizedEmail masks an address for logs: "alice@theekadar.pk" becomes
// "a****@*********.pk".
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "[invalid-email]"
	}

	masked := local[:1] + strings.Repeat("*", len(local)-1)

	if dot := strings.LastIndex(domain, "."); dot > 0 {
		domain = strings.Repeat("*", dot) + domain[dot:]
	}
	return masked + "@" + domain
}

// redactedParams are query parameters whose values never reach the logs.
// The user search term is included because admins search by email.
var redactedParams = map[string]bool{
	"q":        true,
	"email":    true,
	"password": true,
	"token":    true,
	"city":     true,
	"town":     true,
}

// RedactQuery returns rawQuery with sensitive values replaced by
// [REDACTED]. An unparseable query is redacted entirely.
func RedactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "[REDACTED]"
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range values[k] {
			if redactedParams[strings.ToLower(k)] {
				v = "[REDACTED]"
			}
			parts = append(parts, url.QueryEscape(k)+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
