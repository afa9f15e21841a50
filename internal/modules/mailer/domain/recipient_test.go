package domain

import (
	"encoding/json"
	"testing"
)

func TestRecipientSingleMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(SingleRecipient("user@example.com"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"user@example.com"` {
		t.Fatalf("single variant must stay a bare string: %s", data)
	}
}

func TestRecipientMultipleMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(MultipleRecipients([]string{"a@b.c"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["a@b.c"]` {
		t.Fatalf("list variant must stay a list even with one entry: %s", data)
	}
}

func TestRecipientUnmarshalResolvesVariant(t *testing.T) {
	var single Recipient
	if err := json.Unmarshal([]byte(`"user@example.com"`), &single); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if single.IsMultiple() || single.Primary() != "user@example.com" {
		t.Fatalf("string did not resolve to single variant: %+v", single.Addresses())
	}

	var many Recipient
	if err := json.Unmarshal([]byte(`["a@b.c","d@e.f"]`), &many); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if !many.IsMultiple() || len(many.Addresses()) != 2 {
		t.Fatalf("array did not resolve to list variant: %+v", many.Addresses())
	}

	var bad Recipient
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Fatal("numbers are not recipients")
	}
}

func TestRecipientNormalized(t *testing.T) {
	r := MultipleRecipients([]string{" USER@EXAMPLE.COM ", "", "other@Test.ORG"})
	norm := r.Normalized()
	addrs := norm.Addresses()
	if len(addrs) != 2 {
		t.Fatalf("empty entries must drop: %v", addrs)
	}
	if addrs[0] != "USER@example.com" {
		t.Fatalf("domain part must lower-case, local part stay: %q", addrs[0])
	}
	if addrs[1] != "other@test.org" {
		t.Fatalf("unexpected second address %q", addrs[1])
	}
}

func TestEmailRequestValidate(t *testing.T) {
	valid := &EmailRequest{
		To:      SingleRecipient("user@example.com"),
		Subject: "Hi",
		Body:    "hello",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name string
		req  EmailRequest
		want error
	}{
		{"no recipient", EmailRequest{Subject: "Hi", Body: "x"}, ErrMissingRecipient},
		{"blank recipient", EmailRequest{To: SingleRecipient("   "), Subject: "Hi", Body: "x"}, ErrMissingRecipient},
		{"no subject", EmailRequest{To: SingleRecipient("a@b.c"), Body: "x"}, ErrMissingSubject},
		{"no body or template", EmailRequest{To: SingleRecipient("a@b.c"), Subject: "Hi"}, ErrEmptyBody},
	}
	for _, tc := range cases {
		if err := tc.req.Validate(); err != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}

	templated := &EmailRequest{To: SingleRecipient("a@b.c"), Subject: "Hi", Template: "welcome"}
	if err := templated.Validate(); err != nil {
		t.Fatalf("template counts as content: %v", err)
	}
}
