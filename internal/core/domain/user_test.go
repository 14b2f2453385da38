package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{" manager ", RoleManager},
		{"Employee", RoleEmployee},
		{"customer", RoleCustomer},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "SUPERUSER", "ADMINX", "role"} {
		if _, err := ParseRole(in); !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("ParseRole(%q): expected ErrInvalidRole, got %v", in, err)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleEmployee, RoleCustomer} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("GUEST").Valid() {
		t.Fatalf("GUEST must not be valid")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Admin@Ecommerce.COM "); got != "admin@ecommerce.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
