package enums

import "fmt"

// OrgAccess controls how users join an organization.
type OrgAccess string

const (
	OrgAccessOpen     OrgAccess = "open"
	OrgAccessApproval OrgAccess = "approval"
)

var validOrgAccess = []OrgAccess{
	OrgAccessOpen,
	OrgAccessApproval,
}

// String implements fmt.Stringer.
func (o OrgAccess) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrgAccess.
func (o OrgAccess) IsValid() bool {
	for _, candidate := range validOrgAccess {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrgAccess converts raw input into an OrgAccess.
func ParseOrgAccess(value string) (OrgAccess, error) {
	for _, candidate := range validOrgAccess {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid organization access %q", value)
}
