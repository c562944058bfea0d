package rbac

import "testing"

func TestHasPermission_GrantTables(t *testing.T) {
	tests := []struct {
		name string
		role Role
		cap  Capability
		want bool
	}{
		{"admin manages users", RoleAdmin, CapManageUsers, true},
		{"admin views finance", RoleAdmin, CapViewFinance, true},
		{"admin deletes patients", RoleAdmin, CapDeletePatients, true},
		{"podologo edits treatments", RolePodologo, CapEditTreatments, true},
		{"podologo views reports", RolePodologo, CapViewReports, true},
		{"podologo cannot manage users", RolePodologo, CapManageUsers, false},
		{"podologo cannot view finance", RolePodologo, CapViewFinance, false},
		{"podologo cannot delete patients", RolePodologo, CapDeletePatients, false},
		{"recepcion edits appointments", RoleRecepcion, CapEditAppointments, true},
		{"recepcion views prospects", RoleRecepcion, CapViewProspects, true},
		{"recepcion cannot edit patients", RoleRecepcion, CapEditPatients, false},
		{"recepcion cannot view treatments", RoleRecepcion, CapViewTreatments, false},
		{"recepcion cannot manage settings", RoleRecepcion, CapManageSettings, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.cap); got != tt.want {
				t.Fatalf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.want)
			}
		})
	}
}

func TestHasPermission_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if !HasPermission(RoleAdmin, CapViewDashboard) {
			t.Fatal("expected stable grant across invocations")
		}
	}
}

func TestHasPermission_UnknownRoleFailsClosed(t *testing.T) {
	for _, cap := range Capabilities(RoleAdmin) {
		if HasPermission(Role("Gerente"), cap) {
			t.Fatalf("unknown role granted %s", cap)
		}
		if HasPermission(Role(""), cap) {
			t.Fatalf("empty role granted %s", cap)
		}
	}
}

func TestHasPermission_UnknownCapabilityFailsClosed(t *testing.T) {
	if HasPermission(RoleAdmin, Capability("launch_rockets")) {
		t.Fatal("unknown capability granted to Admin")
	}
}

// Admin must hold every capability granted to the other roles.
func TestAdminIsSuperset(t *testing.T) {
	for _, role := range []Role{RolePodologo, RoleRecepcion} {
		for _, cap := range Capabilities(role) {
			if !HasPermission(RoleAdmin, cap) {
				t.Errorf("Admin missing %s granted to %s", cap, role)
			}
		}
	}
}

func TestCapabilities_ReturnsCopy(t *testing.T) {
	caps := Capabilities(RoleRecepcion)
	if len(caps) == 0 {
		t.Fatal("expected non-empty grant set")
	}
	caps[0] = Capability("mutated")
	if Capabilities(RoleRecepcion)[0] == Capability("mutated") {
		t.Fatal("Capabilities leaked internal state")
	}
}

func TestCapabilities_UnknownRoleEmpty(t *testing.T) {
	if got := Capabilities(Role("Invitado")); len(got) != 0 {
		t.Fatalf("expected empty set for unknown role, got %v", got)
	}
}

func TestPermissionsFor(t *testing.T) {
	perms := PermissionsFor(RoleRecepcion)
	if !perms.CanViewDashboard || !perms.CanViewPatients || !perms.CanEditAppointments || !perms.CanViewProspects {
		t.Fatalf("recepcion permissions missing expected grants: %+v", perms)
	}
	if perms.CanEditPatients || perms.CanManageUsers || perms.CanViewFinance {
		t.Fatalf("recepcion permissions leaked grants: %+v", perms)
	}

	if got := PermissionsFor(Role("nope")); got != (Permissions{}) {
		t.Fatalf("unknown role should deny everything, got %+v", got)
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RolePodologo, RoleRecepcion} {
		if !role.Valid() {
			t.Errorf("expected %s valid", role)
		}
	}
	if Role("Otro").Valid() {
		t.Error("unexpected valid unknown role")
	}
}
