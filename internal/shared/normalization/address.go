// Package normalization centralizes email address cleanup so the TCP codec,
// the event publisher and the delivery-key derivation all agree on what the
// canonical form of a recipient is.
package normalization

import "strings"

// Address returns the canonical form of an email address: surrounding
// whitespace removed and the domain part lower-cased. The local part is left
// untouched; it is case-sensitive per RFC 5321 even though almost no provider
// treats it that way.
func Address(raw string) string {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return ""
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr
	}
	return addr[:at+1] + strings.ToLower(addr[at+1:])
}

// Addresses normalizes a list, dropping entries that collapse to empty and
// deduplicating while preserving first-seen order.
func Addresses(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		addr := Address(r)
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// DeliveryKey derives the partition key for a set of recipients: the first
// normalized address, or empty when there is none, which lets the broker
// choose distribution.
func DeliveryKey(raw []string) string {
	for _, r := range raw {
		if addr := Address(r); addr != "" {
			return addr
		}
	}
	return ""
}
