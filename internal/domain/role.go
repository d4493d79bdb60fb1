package domain

// Role enumerates caller roles recognized by the workflow engine.
type Role string

const (
	RoleNormalUser          Role = "Normal User"
	RoleTechnicalUser       Role = "Technical User"
	RoleTechnicalSupervisor Role = "Technical Supervisor"
	RoleSystemAdmin         Role = "System Admin"
)

// KnownRoles lists roles from least to most privileged.
func KnownRoles() []Role {
	return []Role{RoleNormalUser, RoleTechnicalUser, RoleTechnicalSupervisor, RoleSystemAdmin}
}

// IsKnownRole reports whether r is one of the canonical roles.
func IsKnownRole(r Role) bool {
	switch r {
	case RoleNormalUser, RoleTechnicalUser, RoleTechnicalSupervisor, RoleSystemAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether the role belongs to a staff tier that may
// work tickets beyond its own.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleTechnicalUser, RoleTechnicalSupervisor, RoleSystemAdmin:
		return true
	}
	return false
}
