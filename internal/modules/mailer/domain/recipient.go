package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"mesaYaMailer/internal/shared/normalization"
)

// Recipient is the tagged "string or list of strings" the mail service
// accepts in its `to` field. The variant is resolved at the boundary so the
// core never handles an untyped value.
type Recipient struct {
	addrs    []string
	multiple bool
}

// SingleRecipient builds the single-address variant.
func SingleRecipient(addr string) Recipient {
	return Recipient{addrs: []string{addr}}
}

// MultipleRecipients builds the list variant. A list stays a list on the wire
// even when it holds one entry.
func MultipleRecipients(addrs []string) Recipient {
	copied := make([]string, len(addrs))
	copy(copied, addrs)
	return Recipient{addrs: copied, multiple: true}
}

// Addresses returns the recipient addresses in order.
func (r Recipient) Addresses() []string {
	out := make([]string, len(r.addrs))
	copy(out, r.addrs)
	return out
}

// IsMultiple reports whether the list variant was used.
func (r Recipient) IsMultiple() bool { return r.multiple }

// IsZero reports an unset recipient.
func (r Recipient) IsZero() bool { return len(r.addrs) == 0 }

// Primary returns the first address, empty when unset.
func (r Recipient) Primary() string {
	if len(r.addrs) == 0 {
		return ""
	}
	return r.addrs[0]
}

// Normalized returns the recipient with canonical addresses, keeping the
// variant. Addresses that collapse to empty are dropped.
func (r Recipient) Normalized() Recipient {
	addrs := normalization.Addresses(r.addrs)
	return Recipient{addrs: addrs, multiple: r.multiple}
}

// MarshalJSON emits a bare string for the single variant and an array for the
// list variant, matching what the mail service expects.
func (r Recipient) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return nil, errors.New("recipient is empty")
	}
	if r.multiple {
		return json.Marshal(r.addrs)
	}
	return json.Marshal(r.addrs[0])
}

// UnmarshalJSON accepts either wire form.
func (r *Recipient) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = SingleRecipient(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*r = MultipleRecipients(many)
		return nil
	}
	return fmt.Errorf("recipient must be a string or an array of strings, got %s", string(data))
}
