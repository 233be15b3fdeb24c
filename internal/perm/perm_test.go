package perm

import (
	"errors"
	"testing"

	"mandalart/internal/model"
)

func TestCanEditMandalart_OwnerOnly(t *testing.T) {
	m := &model.Mandalart{ID: "m1", UserID: "u1", IsPublic: true}

	if !CanEditMandalart("u1", m) {
		t.Fatalf("expected owner to edit")
	}
	if CanEditMandalart("u2", m) {
		t.Fatalf("expected non-owner to be blocked")
	}
	if CanEditMandalart("  ", m) {
		t.Fatalf("expected empty user to be blocked")
	}
	if CanEditMandalart("u1", nil) {
		t.Fatalf("expected nil mandalart to be blocked")
	}
}

func TestCanViewMandalart(t *testing.T) {
	private := &model.Mandalart{ID: "m1", UserID: "u1", IsPublic: false}
	public := &model.Mandalart{ID: "m2", UserID: "u1", IsPublic: true}

	cases := []struct {
		name   string
		user   string
		m      *model.Mandalart
		admin  bool
		expect bool
	}{
		{"public anonymous", "", public, false, true},
		{"private owner", "u1", private, false, true},
		{"private stranger", "u2", private, false, false},
		{"private admin", "", private, true, true},
		{"nil", "u1", nil, true, false},
	}
	for _, tc := range cases {
		if got := CanViewMandalart(tc.user, tc.m, tc.admin); got != tc.expect {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.expect)
		}
	}
}

func TestCheckAdminPassword(t *testing.T) {
	if _, err := CheckAdminPassword("", "x"); !errors.Is(err, ErrAdminNotConfigured) {
		t.Fatalf("expected ErrAdminNotConfigured, got %v", err)
	}
	ok, err := CheckAdminPassword("secret", "secret")
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, err = CheckAdminPassword("secret", "Secret")
	if err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
}
