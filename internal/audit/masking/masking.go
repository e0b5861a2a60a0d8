package masking

import "strings"

const maskToken = "****"

// MaskEmail keeps the first two characters of the local part and the domain.
func MaskEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	at := strings.LastIndex(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		return maskSecret(trimmed)
	}

	local, domain := trimmed[:at], trimmed[at+1:]
	if len(local) <= 2 {
		return maskToken + "@" + domain
	}
	return local[:2] + maskToken + "@" + domain
}

// maskSecret redacts a value while keeping a short suffix.
func maskSecret(value string) string {
	if len(value) <= 4 {
		return maskToken
	}
	return maskToken + value[len(value)-4:]
}
