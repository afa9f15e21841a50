package normalization

import "testing"

func TestAddress(t *testing.T) {
	cases := map[string]string{
		"  user@EXAMPLE.com ": "user@example.com",
		"USER@EXAMPLE.COM":    "USER@example.com",
		"no-at-sign":          "no-at-sign",
		"   ":                 "",
		"a@b@C.d":             "a@b@c.d",
	}
	for raw, want := range cases {
		if got := Address(raw); got != want {
			t.Fatalf("Address(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestAddressesDropsEmptyAndDuplicates(t *testing.T) {
	got := Addresses([]string{"a@B.c", "", "  ", "a@b.C", "d@e.f"})
	if len(got) != 2 {
		t.Fatalf("expected 2 addresses, got %v", got)
	}
	if got[0] != "a@b.c" || got[1] != "d@e.f" {
		t.Fatalf("order or canonical form drifted: %v", got)
	}
}

func TestDeliveryKey(t *testing.T) {
	if got := DeliveryKey([]string{"", " User@Example.COM ", "b@c.d"}); got != "User@example.com" {
		t.Fatalf("expected first normalized address, got %q", got)
	}
	if got := DeliveryKey([]string{"", "   "}); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}
