package permission

import "errors"

// Roles recognized by the system. Role assignment is rejected for anything
// outside this enumeration.
const (
	RoleAdmin    = "admin"
	RoleAdminPOC = "admin_poc"
	RoleExporter = "exporter"
)

// Capability names as they appear on the wire and in route guards.
const (
	CapViewPatients  = "view_patients"
	CapAddPatient    = "add_patient"
	CapEditPatient   = "edit_patient"
	CapDeletePatient = "delete_patient"
	CapExportCSV     = "export_csv"
	CapManageUsers   = "manage_users"
	CapAllAccess     = "all_access"
)

var ErrInvalidRole = errors.New("invalid role")

// Set is the fixed capability record stored per user and embedded in session
// tokens. AllAccess supersedes every named capability.
type Set struct {
	AllAccess     bool `json:"all_access,omitempty"`
	ViewPatients  bool `json:"view_patients,omitempty"`
	AddPatient    bool `json:"add_patient,omitempty"`
	EditPatient   bool `json:"edit_patient,omitempty"`
	DeletePatient bool `json:"delete_patient,omitempty"`
	ExportCSV     bool `json:"export_csv,omitempty"`
	ManageUsers   bool `json:"manage_users,omitempty"`
}

// ByRole returns the canonical capability set for a role.
func ByRole(role string) (Set, error) {
	switch role {
	case RoleAdmin:
		return Set{AllAccess: true}, nil
	case RoleAdminPOC:
		return Set{
			ViewPatients:  true,
			AddPatient:    true,
			EditPatient:   true,
			DeletePatient: true,
			ExportCSV:     true,
		}, nil
	case RoleExporter:
		return Set{
			ViewPatients: true,
			ExportCSV:    true,
		}, nil
	default:
		return Set{}, ErrInvalidRole
	}
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAdminPOC, RoleExporter:
		return true
	}
	return false
}

// Has reports whether the set grants the named capability. AllAccess grants
// everything, including capability names this package does not know about.
// Unknown names without AllAccess are false.
func (s Set) Has(name string) bool {
	if s.AllAccess {
		return true
	}
	switch name {
	case CapViewPatients:
		return s.ViewPatients
	case CapAddPatient:
		return s.AddPatient
	case CapEditPatient:
		return s.EditPatient
	case CapDeletePatient:
		return s.DeletePatient
	case CapExportCSV:
		return s.ExportCSV
	case CapManageUsers:
		return s.ManageUsers
	}
	return false
}

// IsAdminEquivalent reports whether a user counts as an administrator for the
// last-admin invariant: role admin, or an all_access permission grant.
func IsAdminEquivalent(role string, perms Set) bool {
	return role == RoleAdmin || perms.AllAccess
}
