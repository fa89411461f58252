package enums

import "fmt"

// PrivacyType gates who can see an event or post.
type PrivacyType string

const (
	PrivacyPublic  PrivacyType = "public"
	PrivacyPrivate PrivacyType = "private"
)

var validPrivacyTypes = []PrivacyType{
	PrivacyPublic,
	PrivacyPrivate,
}

// String implements fmt.Stringer.
func (p PrivacyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PrivacyType.
func (p PrivacyType) IsValid() bool {
	for _, candidate := range validPrivacyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePrivacyType converts raw input into a PrivacyType.
func ParsePrivacyType(value string) (PrivacyType, error) {
	for _, candidate := range validPrivacyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid privacy type %q", value)
}
