package models

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		r, other Role
		want     bool
	}{
		{RoleSuperuser, RoleAdmin, true},
		{RoleSuperuser, RoleSuperuser, true},
		{RoleAdmin, RoleSuperuser, false},
		{RoleAdmin, RoleRegular, true},
		{RoleRegular, RoleAdmin, false},
		{RoleRegular, RoleRegular, true},
		{RoleNone, RoleRegular, false},
		{RoleNone, RoleNone, true},
	}
	for _, tt := range tests {
		if got := tt.r.AtLeast(tt.other); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.r, tt.other, got, tt.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSuperuser, RoleAdmin, RoleRegular, RoleNone} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("root").Valid() {
		t.Error("unknown role accepted")
	}
}
