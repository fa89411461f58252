package privacy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
)

func testCatalog() Catalog {
	return Catalog{
		Roles: []CatalogEntry{
			{ID: uuid.New(), Name: "User"},
			{ID: uuid.New(), Name: "Officer"},
			{ID: uuid.New(), Name: "Alumni"},
		},
		Memberships: []CatalogEntry{
			{ID: uuid.New(), Name: "Free"},
			{ID: uuid.New(), Name: "Pro"},
		},
	}
}

func TestValidateScopePublicDiscardsSelections(t *testing.T) {
	scope, err := ValidateScope(ScopeInput{
		Type:        enums.PrivacyPublic,
		Roles:       []string{"Officer", SentinelAllRoles},
		Memberships: []string{"Pro"},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scope.Roles) != 0 || len(scope.Memberships) != 0 {
		t.Fatalf("public scope must be empty, got %+v", scope)
	}
	if scope.AllowAllRoles || scope.AllowAllMemberships {
		t.Fatal("public scope must not set allow-all flags")
	}
}

func TestValidateScopeSentinelResolution(t *testing.T) {
	scope, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{SentinelAllRoles, "Officer"},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scope.AllowAllRoles {
		t.Fatal("expected allow_all_roles after sentinel")
	}
	if len(scope.Roles) != 0 {
		t.Fatalf("sentinel must clear the role list, got %v", scope.Roles)
	}

	scope, err = ValidateScope(ScopeInput{
		Type:        enums.PrivacyPrivate,
		Memberships: []string{SentinelAllMemberships},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scope.AllowAllMemberships || len(scope.Memberships) != 0 {
		t.Fatalf("membership sentinel not resolved, got %+v", scope)
	}
}

func TestValidateScopeEmptyPrivate(t *testing.T) {
	_, err := ValidateScope(ScopeInput{Type: enums.PrivacyPrivate}, testCatalog())
	if err == nil {
		t.Fatal("expected EmptyPrivateScope error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["reason"] != ReasonEmptyPrivateScope {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestValidateScopeUnknownNames(t *testing.T) {
	_, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{"Ghost"},
	}, testCatalog())
	if err == nil {
		t.Fatal("expected unknown role error")
	}
	typed := pkgerrors.As(err)
	details, ok := typed.Details().(map[string]any)
	if !ok || details["reason"] != ReasonUnknownScopeEntry {
		t.Fatalf("unexpected details %v", typed.Details())
	}
	roles, _ := details["roles"].([]string)
	if len(roles) != 1 || roles[0] != "Ghost" {
		t.Fatalf("expected Ghost listed, got %v", details["roles"])
	}
}

func TestValidateScopeResolvesIDs(t *testing.T) {
	catalog := testCatalog()
	scope, err := ValidateScope(ScopeInput{
		Type:        enums.PrivacyPrivate,
		Roles:       []string{"Officer", "Officer"},
		Memberships: []string{"Pro"},
	}, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scope.Roles) != 1 || scope.Roles[0].ID != catalog.Roles[1].ID {
		t.Fatalf("expected deduplicated Officer entry, got %v", scope.Roles)
	}
	if len(scope.Memberships) != 1 || scope.Memberships[0].Name != "Pro" {
		t.Fatalf("expected Pro entry, got %v", scope.Memberships)
	}
}

func TestValidateDiscountsIneligibleTargetsCollected(t *testing.T) {
	catalog := testCatalog()
	scope, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{"Officer"},
	}, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rules := []DiscountRule{
		{Roles: []string{"Alumni"}, Percent: decimal.NewFromInt(10)},
		{Roles: []string{"User"}, Memberships: []string{"Pro"}, Percent: decimal.NewFromInt(20)},
	}
	err = ValidateDiscounts(rules, scope)
	if err == nil {
		t.Fatal("expected DiscountTargetNotEligible error")
	}
	details := pkgerrors.As(err).Details().(map[string]any)
	roles := details["roles"].([]string)
	memberships := details["memberships"].([]string)
	if len(roles) != 2 {
		t.Fatalf("expected both offending roles collected, got %v", roles)
	}
	if roles[0] != "Alumni" || roles[1] != "User" {
		t.Fatalf("unexpected role order %v", roles)
	}
	if len(memberships) != 1 || memberships[0] != "Pro" {
		t.Fatalf("expected Pro listed, got %v", memberships)
	}
}

func TestValidateDiscountsZeroPercent(t *testing.T) {
	scope, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{"Officer"},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = ValidateDiscounts([]DiscountRule{
		{Roles: []string{"Officer"}, Percent: decimal.Zero},
	}, scope)
	if err == nil {
		t.Fatal("expected ZeroDiscountWithTarget error")
	}
	details := pkgerrors.As(err).Details().(map[string]any)
	reasons := details["reasons"].([]string)
	if len(reasons) != 1 || reasons[0] != ReasonZeroDiscountWithTarget {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}

func TestValidateDiscountsNegativePercent(t *testing.T) {
	scope, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{"Officer"},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = ValidateDiscounts([]DiscountRule{
		{Roles: []string{"Officer"}, Percent: decimal.NewFromInt(-5)},
	}, scope)
	if err == nil {
		t.Fatal("expected ZeroDiscountWithTarget error for negative percent")
	}
	details := pkgerrors.As(err).Details().(map[string]any)
	reasons := details["reasons"].([]string)
	if len(reasons) != 1 || reasons[0] != ReasonZeroDiscountWithTarget {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}

func TestValidateDiscountsBothClassesReported(t *testing.T) {
	scope, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{"Officer"},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = ValidateDiscounts([]DiscountRule{
		{Roles: []string{"Alumni"}, Percent: decimal.NewFromInt(15)},
		{Roles: []string{"Officer"}, Percent: decimal.Zero},
	}, scope)
	if err == nil {
		t.Fatal("expected combined validation error")
	}
	details := pkgerrors.As(err).Details().(map[string]any)
	reasons := details["reasons"].([]string)
	if len(reasons) != 2 {
		t.Fatalf("expected both reasons reported, got %v", reasons)
	}
	if reasons[0] != ReasonDiscountTargetNotEligible || reasons[1] != ReasonZeroDiscountWithTarget {
		t.Fatalf("eligibility must be reported before zero check, got %v", reasons)
	}
}

func TestValidateDiscountsAllowAllFlags(t *testing.T) {
	scope, err := ValidateScope(ScopeInput{
		Type:  enums.PrivacyPrivate,
		Roles: []string{SentinelAllRoles},
	}, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Any role target is eligible under allow_all_roles; membership
	// targets still validate against the (empty) membership list.
	err = ValidateDiscounts([]DiscountRule{
		{Roles: []string{"Ghost Role"}, Percent: decimal.NewFromInt(5)},
	}, scope)
	if err != nil {
		t.Fatalf("allow_all_roles should accept any role target: %v", err)
	}

	err = ValidateDiscounts([]DiscountRule{
		{Memberships: []string{"Pro"}, Percent: decimal.NewFromInt(5)},
	}, scope)
	if err == nil {
		t.Fatal("membership target outside scope should fail")
	}
}

func TestIsVisible(t *testing.T) {
	catalog := testCatalog()
	officer := catalog.Roles[1]
	pro := catalog.Memberships[1]

	public := Scope{Type: enums.PrivacyPublic}
	if !IsVisible(public, uuid.New(), nil) {
		t.Fatal("public scope must be visible to everyone")
	}

	private := Scope{
		Type:  enums.PrivacyPrivate,
		Roles: []CatalogEntry{officer},
	}
	if !IsVisible(private, officer.ID, nil) {
		t.Fatal("allow-listed role must see the resource")
	}
	if IsVisible(private, uuid.New(), nil) {
		t.Fatal("unlisted role must not see the resource")
	}

	private.Memberships = []CatalogEntry{pro}
	if !IsVisible(private, uuid.New(), &pro.ID) {
		t.Fatal("allow-listed membership must see the resource")
	}
	other := uuid.New()
	if IsVisible(private, uuid.New(), &other) {
		t.Fatal("unlisted membership must not see the resource")
	}

	allRoles := Scope{Type: enums.PrivacyPrivate, AllowAllRoles: true}
	if !IsVisible(allRoles, uuid.New(), nil) {
		t.Fatal("allow_all_roles must open the resource to every member")
	}
}
