package validation

import (
	"fmt"
	"strings"
)

const (
	MsgNameRequired    = "Please enter a name"
	MsgEmailRequired   = "Please enter an email"
	MsgEmailInvalid    = "Invalid email address"
	MsgImageRequired   = "Please upload a profile picture"
	MsgCustomerMissing = "Please select a customer."
	MsgAmountPositive  = "Please enter an amount greater than 0"
	MsgAmountInvalid   = "Please enter a valid amount"
	MsgAmountTooLarge  = "Please enter a smaller amount"
	MsgStatusInvalid   = "Please select an invoice status."
)

// allowedTypesMessage renders the allow list, e.g. "Only PNG format is allowed".
func allowedTypesMessage(types []string) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if idx := strings.LastIndex(t, "/"); idx >= 0 {
			t = t[idx+1:]
		}
		if t != "" {
			names = append(names, strings.ToUpper(t))
		}
	}

	switch len(names) {
	case 0:
		return "File type is not allowed"
	case 1:
		return fmt.Sprintf("Only %s format is allowed", names[0])
	default:
		last := len(names) - 1
		return fmt.Sprintf("Only %s or %s formats are allowed", strings.Join(names[:last], ", "), names[last])
	}
}

func maxSizeMessage(maxBytes int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case maxBytes >= mib && maxBytes%mib == 0:
		return fmt.Sprintf("Image must be at most %dMB", maxBytes/mib)
	case maxBytes >= kib && maxBytes%kib == 0:
		return fmt.Sprintf("Image must be at most %dKB", maxBytes/kib)
	default:
		return fmt.Sprintf("Image must be at most %d bytes", maxBytes)
	}
}
