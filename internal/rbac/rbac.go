// Package rbac implements the static role-to-capability grant model used to
// gate navigation and actions across the clinic. Grants are explicit per-role
// enumerations; there is no inheritance between roles, and unknown input
// always resolves to deny.
package rbac

// Role is a user role within the clinic.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RolePodologo  Role = "Podologo"
	RoleRecepcion Role = "Recepcion"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePodologo, RoleRecepcion:
		return true
	}
	return false
}

// Capability is a named permission from the closed vocabulary.
type Capability string

const (
	CapViewDashboard    Capability = "view_dashboard"
	CapViewPatients     Capability = "view_patients"
	CapEditPatients     Capability = "edit_patients"
	CapDeletePatients   Capability = "delete_patients"
	CapViewAppointments Capability = "view_appointments"
	CapEditAppointments Capability = "edit_appointments"
	CapViewTreatments   Capability = "view_treatments"
	CapEditTreatments   Capability = "edit_treatments"
	CapViewReports      Capability = "view_reports"
	CapManageUsers      Capability = "manage_users"
	CapManageSettings   Capability = "manage_settings"
	CapViewFinance      Capability = "view_finance"
	CapViewProspects    Capability = "view_prospects"
)

// grants lists every capability each role holds. Adding a capability means
// adding it to every role that should hold it; nothing is implied.
var grants = map[Role][]Capability{
	RoleAdmin: {
		CapViewDashboard,
		CapViewPatients,
		CapEditPatients,
		CapDeletePatients,
		CapViewAppointments,
		CapEditAppointments,
		CapViewTreatments,
		CapEditTreatments,
		CapViewReports,
		CapManageUsers,
		CapManageSettings,
		CapViewFinance,
		CapViewProspects,
	},
	RolePodologo: {
		CapViewDashboard,
		CapViewPatients,
		CapEditPatients,
		CapViewAppointments,
		CapEditAppointments,
		CapViewTreatments,
		CapEditTreatments,
		CapViewReports,
	},
	RoleRecepcion: {
		CapViewDashboard,
		CapViewPatients,
		CapViewAppointments,
		CapEditAppointments,
		CapViewProspects,
	},
}

// grantSets is the lookup form of grants, built once at init.
var grantSets = func() map[Role]map[Capability]struct{} {
	sets := make(map[Role]map[Capability]struct{}, len(grants))
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// HasPermission reports whether the role holds the capability. Unknown roles
// and unknown capabilities answer false rather than erroring.
func HasPermission(role Role, capability Capability) bool {
	set, ok := grantSets[role]
	if !ok {
		return false
	}
	_, granted := set[capability]
	return granted
}

// Capabilities returns a copy of the role's grant set. Unknown roles get an
// empty slice.
func Capabilities(role Role) []Capability {
	caps := grants[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Permissions is the precomputed boolean view consumed by UI gating. It is
// pure and cheap to derive, so callers re-derive it whenever a role changes.
type Permissions struct {
	CanViewDashboard    bool `json:"can_view_dashboard"`
	CanViewPatients     bool `json:"can_view_patients"`
	CanEditPatients     bool `json:"can_edit_patients"`
	CanDeletePatients   bool `json:"can_delete_patients"`
	CanViewAppointments bool `json:"can_view_appointments"`
	CanEditAppointments bool `json:"can_edit_appointments"`
	CanViewTreatments   bool `json:"can_view_treatments"`
	CanEditTreatments   bool `json:"can_edit_treatments"`
	CanViewReports      bool `json:"can_view_reports"`
	CanManageUsers      bool `json:"can_manage_users"`
	CanManageSettings   bool `json:"can_manage_settings"`
	CanViewFinance      bool `json:"can_view_finance"`
	CanViewProspects    bool `json:"can_view_prospects"`
}

// PermissionsFor derives the boolean permission view for a role.
func PermissionsFor(role Role) Permissions {
	return Permissions{
		CanViewDashboard:    HasPermission(role, CapViewDashboard),
		CanViewPatients:     HasPermission(role, CapViewPatients),
		CanEditPatients:     HasPermission(role, CapEditPatients),
		CanDeletePatients:   HasPermission(role, CapDeletePatients),
		CanViewAppointments: HasPermission(role, CapViewAppointments),
		CanEditAppointments: HasPermission(role, CapEditAppointments),
		CanViewTreatments:   HasPermission(role, CapViewTreatments),
		CanEditTreatments:   HasPermission(role, CapEditTreatments),
		CanViewReports:      HasPermission(role, CapViewReports),
		CanManageUsers:      HasPermission(role, CapManageUsers),
		CanManageSettings:   HasPermission(role, CapManageSettings),
		CanViewFinance:      HasPermission(role, CapViewFinance),
		CanViewProspects:    HasPermission(role, CapViewProspects),
	}
}
