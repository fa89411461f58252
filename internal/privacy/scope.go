package privacy

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncuphq/syncup-backend/pkg/enums"
)

// Sentinel selections accepted from clients. They are resolved into the
// allow-all flags during validation and never stored as real entries.
const (
	SentinelAllRoles       = "All Roles"
	SentinelAllMemberships = "All Membership Tiers"
)

// Reason values attached to validation error details.
const (
	ReasonEmptyPrivateScope         = "empty_private_scope"
	ReasonUnknownScopeEntry         = "unknown_scope_entry"
	ReasonDiscountTargetNotEligible = "discount_target_not_eligible"
	ReasonZeroDiscountWithTarget    = "zero_discount_with_target"
)

// CatalogEntry is one role or membership tier from an organization's catalog.
type CatalogEntry struct {
	ID   uuid.UUID
	Name string
}

// Catalog holds the organization's full role and membership tier catalogs.
// Catalogs are org-scoped and small, so they are passed in already fetched.
type Catalog struct {
	Roles       []CatalogEntry
	Memberships []CatalogEntry
}

// ScopeInput is the proposed privacy scope as submitted by a client:
// role and membership tier selections by name, possibly with sentinels.
type ScopeInput struct {
	Type        enums.PrivacyType
	Roles       []string
	Memberships []string
}

// Scope is the validated, normalized privacy scope. Allow-all flags are
// explicit; the entry lists never contain sentinel values.
type Scope struct {
	Type                enums.PrivacyType
	AllowAllRoles       bool
	AllowAllMemberships bool
	Roles               []CatalogEntry
	Memberships         []CatalogEntry
}

// RoleIDs returns the allow-listed role ids.
func (s Scope) RoleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Roles))
	for _, entry := range s.Roles {
		ids = append(ids, entry.ID)
	}
	return ids
}

// MembershipIDs returns the allow-listed membership tier ids.
func (s Scope) MembershipIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Memberships))
	for _, entry := range s.Memberships {
		ids = append(ids, entry.ID)
	}
	return ids
}

func (s Scope) roleNameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Roles))
	for _, entry := range s.Roles {
		set[entry.Name] = struct{}{}
	}
	return set
}

func (s Scope) membershipNameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Memberships))
	for _, entry := range s.Memberships {
		set[entry.Name] = struct{}{}
	}
	return set
}

// DiscountRule targets roles and/or membership tiers by name with a
// percentage discount.
type DiscountRule struct {
	Roles       []string
	Memberships []string
	Percent     decimal.Decimal
}

func (r DiscountRule) hasTargets() bool {
	return len(r.Roles) > 0 || len(r.Memberships) > 0
}
