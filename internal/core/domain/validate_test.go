package domain

import "testing"

func TestValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"first.last@example.co", true},
		{"with-dash@mail-server.org", true},
		{"", false},
		{"no-at-sign", false},
		{"a@b", false},
		{"a@b.toolong", false},
		{"spaces in@mail.com", false},
	}
	for _, tc := range cases {
		if got := ValidEmail(tc.email); got != tc.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestValidPhoneNumber(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"1234567890", true},
		{"0000000000", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345678ab", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPhoneNumber(tc.phone); got != tc.want {
			t.Errorf("ValidPhoneNumber(%q) = %v, want %v", tc.phone, got, tc.want)
		}
	}
}

func TestValidNameAndAddress(t *testing.T) {
	if ValidName("   ") || ValidName("") {
		t.Errorf("blank names should be rejected")
	}
	if !ValidName("Alice") {
		t.Errorf("expected non-blank name to be valid")
	}
	if ValidAddress("\t\n") {
		t.Errorf("blank address should be rejected")
	}
	if !ValidAddress("12 Main St") {
		t.Errorf("expected non-blank address to be valid")
	}
}
