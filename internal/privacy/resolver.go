package privacy

import (
	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
)

// ValidateScope validates and normalizes a proposed privacy scope against
// the organization's catalogs.
//
// Public scopes discard every selection: the persisted scope is always
// empty with both allow-all flags false. Private scopes resolve the
// sentinel selections into allow-all flags and require at least one
// remaining entry or flag.
func ValidateScope(input ScopeInput, catalog Catalog) (Scope, error) {
	if !input.Type.IsValid() {
		return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid privacy type")
	}

	if input.Type == enums.PrivacyPublic {
		return Scope{Type: enums.PrivacyPublic}, nil
	}

	scope := Scope{Type: enums.PrivacyPrivate}

	roleNames := make([]string, 0, len(input.Roles))
	for _, name := range input.Roles {
		if name == SentinelAllRoles {
			scope.AllowAllRoles = true
			continue
		}
		roleNames = append(roleNames, name)
	}

	membershipNames := make([]string, 0, len(input.Memberships))
	for _, name := range input.Memberships {
		if name == SentinelAllMemberships {
			scope.AllowAllMemberships = true
			continue
		}
		membershipNames = append(membershipNames, name)
	}

	var unknownRoles, unknownMemberships []string
	if !scope.AllowAllRoles {
		scope.Roles, unknownRoles = resolveEntries(roleNames, catalog.Roles)
	}
	if !scope.AllowAllMemberships {
		scope.Memberships, unknownMemberships = resolveEntries(membershipNames, catalog.Memberships)
	}
	if len(unknownRoles) > 0 || len(unknownMemberships) > 0 {
		return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown roles or membership tiers in scope").
			WithDetails(map[string]any{
				"reason":      ReasonUnknownScopeEntry,
				"roles":       unknownRoles,
				"memberships": unknownMemberships,
			})
	}

	if len(scope.Roles) == 0 && len(scope.Memberships) == 0 &&
		!scope.AllowAllRoles && !scope.AllowAllMemberships {
		return Scope{}, pkgerrors.New(pkgerrors.CodeValidation, "private scope needs at least one role or membership tier").
			WithDetails(map[string]any{"reason": ReasonEmptyPrivateScope})
	}

	return scope, nil
}

// ValidateDiscounts checks every discount rule against a private scope.
// Eligibility violations are collected across ALL rules before the
// zero-percent check runs, and both classes are reported together when
// both apply.
func ValidateDiscounts(rules []DiscountRule, scope Scope) error {
	if scope.Type != enums.PrivacyPrivate {
		return nil
	}

	scopeRoles := scope.roleNameSet()
	scopeMemberships := scope.membershipNameSet()

	var ineligibleRoles, ineligibleMemberships []string
	seenRole := map[string]struct{}{}
	seenMembership := map[string]struct{}{}
	for _, rule := range rules {
		if !scope.AllowAllRoles {
			for _, name := range rule.Roles {
				if _, ok := scopeRoles[name]; ok {
					continue
				}
				if _, dup := seenRole[name]; dup {
					continue
				}
				seenRole[name] = struct{}{}
				ineligibleRoles = append(ineligibleRoles, name)
			}
		}
		if !scope.AllowAllMemberships {
			for _, name := range rule.Memberships {
				if _, ok := scopeMemberships[name]; ok {
					continue
				}
				if _, dup := seenMembership[name]; dup {
					continue
				}
				seenMembership[name] = struct{}{}
				ineligibleMemberships = append(ineligibleMemberships, name)
			}
		}
	}

	zeroWithTarget := false
	for _, rule := range rules {
		if rule.hasTargets() && !rule.Percent.IsPositive() {
			zeroWithTarget = true
			break
		}
	}

	notEligible := len(ineligibleRoles) > 0 || len(ineligibleMemberships) > 0
	if !notEligible && !zeroWithTarget {
		return nil
	}

	reasons := []string{}
	details := map[string]any{}
	message := ""
	if notEligible {
		reasons = append(reasons, ReasonDiscountTargetNotEligible)
		details["roles"] = ineligibleRoles
		details["memberships"] = ineligibleMemberships
		message = "discount targets are not part of the privacy scope"
	}
	if zeroWithTarget {
		reasons = append(reasons, ReasonZeroDiscountWithTarget)
		if message == "" {
			message = "discount rule with targets must have a non-zero percent"
		}
	}
	details["reasons"] = reasons

	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// IsVisible answers the read-side check: may a member with the given role
// and membership tier see a resource carrying this scope.
func IsVisible(scope Scope, userRoleID uuid.UUID, userMembershipID *uuid.UUID) bool {
	if scope.Type == enums.PrivacyPublic {
		return true
	}
	if scope.AllowAllRoles || scope.AllowAllMemberships {
		return true
	}
	for _, entry := range scope.Roles {
		if entry.ID == userRoleID {
			return true
		}
	}
	if userMembershipID != nil {
		for _, entry := range scope.Memberships {
			if entry.ID == *userMembershipID {
				return true
			}
		}
	}
	return false
}

func resolveEntries(names []string, catalog []CatalogEntry) ([]CatalogEntry, []string) {
	byName := make(map[string]CatalogEntry, len(catalog))
	for _, entry := range catalog {
		byName[entry.Name] = entry
	}

	resolved := make([]CatalogEntry, 0, len(names))
	var unknown []string
	seen := map[string]struct{}{}
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		entry, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		resolved = append(resolved, entry)
	}
	return resolved, unknown
}
