package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrganization OutboxAggregateType = "organization"
	AggregateMember       OutboxAggregateType = "member"
	AggregateEvent        OutboxAggregateType = "event"
	AggregatePost         OutboxAggregateType = "post"
	AggregatePayment      OutboxAggregateType = "payment"
	AggregateNewsletter   OutboxAggregateType = "newsletter"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrganization,
	AggregateMember,
	AggregateEvent,
	AggregatePost,
	AggregatePayment,
	AggregateNewsletter,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventActivityRecorded    OutboxEventType = "activity_recorded"
	EventMembershipChanged   OutboxEventType = "membership_changed"
	EventPaymentConfirmed    OutboxEventType = "payment_confirmed"
	EventRegistrationCreated OutboxEventType = "registration_created"
	EventNewsletterDelivered OutboxEventType = "newsletter_delivered"
)

var validOutboxEventTypes = []OutboxEventType{
	EventActivityRecorded,
	EventMembershipChanged,
	EventPaymentConfirmed,
	EventRegistrationCreated,
	EventNewsletterDelivered,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
