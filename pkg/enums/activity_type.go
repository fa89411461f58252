package enums

import "fmt"

// ActivityType labels entries in the audit trail.
type ActivityType string

const (
	ActivityOrgCreated          ActivityType = "organization_created"
	ActivityOrgJoined           ActivityType = "organization_joined"
	ActivityOrgLeft             ActivityType = "organization_left"
	ActivityMembershipSubscribe ActivityType = "membership_subscribe"
	ActivityMembershipCancel    ActivityType = "membership_cancel"
	ActivityEventCreated        ActivityType = "event_created"
	ActivityEventRegistered     ActivityType = "event_registered"
	ActivityPostCreated         ActivityType = "post_created"
	ActivityNewsletterSent      ActivityType = "newsletter_sent"
	ActivityPaymentConfirmed    ActivityType = "payment_confirmed"
)

var validActivityTypes = []ActivityType{
	ActivityOrgCreated,
	ActivityOrgJoined,
	ActivityOrgLeft,
	ActivityMembershipSubscribe,
	ActivityMembershipCancel,
	ActivityEventCreated,
	ActivityEventRegistered,
	ActivityPostCreated,
	ActivityNewsletterSent,
	ActivityPaymentConfirmed,
}

// String implements fmt.Stringer.
func (a ActivityType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityType.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}
