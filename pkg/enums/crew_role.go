package enums

import "fmt"

// CrewRole identifies the function a guide serves on a trip crew.
type CrewRole string

const (
	CrewRoleLead         CrewRole = "lead"
	CrewRoleSupport      CrewRole = "support"
	CrewRoleAssistant    CrewRole = "assistant"
	CrewRoleDriver       CrewRole = "driver"
	CrewRolePhotographer CrewRole = "photographer"
)

var validCrewRoles = []CrewRole{
	CrewRoleLead,
	CrewRoleSupport,
	CrewRoleAssistant,
	CrewRoleDriver,
	CrewRolePhotographer,
}

// String implements fmt.Stringer.
func (c CrewRole) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CrewRole.
func (c CrewRole) IsValid() bool {
	for _, candidate := range validCrewRoles {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCrewRole converts raw input into a CrewRole.
func ParseCrewRole(value string) (CrewRole, error) {
	for _, candidate := range validCrewRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid crew role %q", value)
}
