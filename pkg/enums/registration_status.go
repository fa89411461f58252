package enums

import "fmt"

// RegistrationStatus tracks an event registration through its lifecycle.
type RegistrationStatus string

const (
	RegistrationPending    RegistrationStatus = "pending"
	RegistrationRegistered RegistrationStatus = "registered"
)

var validRegistrationStatuses = []RegistrationStatus{
	RegistrationPending,
	RegistrationRegistered,
}

// String implements fmt.Stringer.
func (r RegistrationStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RegistrationStatus.
func (r RegistrationStatus) IsValid() bool {
	for _, candidate := range validRegistrationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRegistrationStatus converts raw input into a RegistrationStatus.
func ParseRegistrationStatus(value string) (RegistrationStatus, error) {
	for _, candidate := range validRegistrationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid registration status %q", value)
}

// AttendanceStatus records whether a registrant showed up.
type AttendanceStatus string

const (
	AttendanceUnset   AttendanceStatus = "unset"
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

var validAttendanceStatuses = []AttendanceStatus{
	AttendanceUnset,
	AttendancePresent,
	AttendanceAbsent,
	AttendanceLate,
}

// String implements fmt.Stringer.
func (a AttendanceStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AttendanceStatus.
func (a AttendanceStatus) IsValid() bool {
	for _, candidate := range validAttendanceStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttendanceStatus converts raw input into an AttendanceStatus.
func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	for _, candidate := range validAttendanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendance status %q", value)
}
