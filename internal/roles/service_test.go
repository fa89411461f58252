package roles

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
)

type stubRoleRepo struct {
	role        *models.OrganizationRole
	memberCount int64

	created []*models.OrganizationRole
	renamed int
	deleted int
}

func (s *stubRoleRepo) Get(_ context.Context, _ uuid.UUID) (*models.OrganizationRole, error) {
	return s.role, nil
}

func (s *stubRoleRepo) ListByOrg(_ context.Context, _ uuid.UUID) ([]models.OrganizationRole, error) {
	if s.role == nil {
		return nil, nil
	}
	return []models.OrganizationRole{*s.role}, nil
}

func (s *stubRoleRepo) Create(_ context.Context, role *models.OrganizationRole) error {
	s.created = append(s.created, role)
	return nil
}

func (s *stubRoleRepo) Rename(_ context.Context, _ uuid.UUID, _ string) error {
	s.renamed++
	return nil
}

func (s *stubRoleRepo) Delete(_ context.Context, _ uuid.UUID) error {
	s.deleted++
	return nil
}

func (s *stubRoleRepo) CountMembers(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.memberCount, nil
}

type stubMemberUpdater struct {
	rows    int64
	applied int
}

func (s *stubMemberUpdater) UpdateMemberRole(_ context.Context, _, _, _ uuid.UUID) (int64, error) {
	s.applied++
	return s.rows, nil
}

func newRolesService(t *testing.T, repo *stubRoleRepo, members *stubMemberUpdater) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{RoleRepo: repo, MemberRepo: members})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc := newRolesService(t, &stubRoleRepo{}, &stubMemberUpdater{})

	_, err := svc.Create(context.Background(), uuid.New(), "   ")
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRefusesDefaultRole(t *testing.T) {
	orgID := uuid.New()
	repo := &stubRoleRepo{role: &models.OrganizationRole{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           DefaultRoleName,
		IsDefault:      true,
	}}
	svc := newRolesService(t, repo, &stubMemberUpdater{})

	err := svc.Delete(context.Background(), orgID, repo.role.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.deleted != 0 {
		t.Fatal("default role must not be deleted")
	}
}

func TestDeleteRefusesAssignedRole(t *testing.T) {
	orgID := uuid.New()
	repo := &stubRoleRepo{
		role:        &models.OrganizationRole{ID: uuid.New(), OrganizationID: orgID, Name: "Coach"},
		memberCount: 3,
	}
	svc := newRolesService(t, repo, &stubMemberUpdater{})

	err := svc.Delete(context.Background(), orgID, repo.role.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDeleteRemovesUnusedRole(t *testing.T) {
	orgID := uuid.New()
	repo := &stubRoleRepo{role: &models.OrganizationRole{ID: uuid.New(), OrganizationID: orgID, Name: "Coach"}}
	svc := newRolesService(t, repo, &stubMemberUpdater{})

	if err := svc.Delete(context.Background(), orgID, repo.role.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if repo.deleted != 1 {
		t.Fatalf("delete calls = %d, want 1", repo.deleted)
	}
}

func TestAssignRejectsForeignRole(t *testing.T) {
	repo := &stubRoleRepo{role: &models.OrganizationRole{ID: uuid.New(), OrganizationID: uuid.New()}}
	svc := newRolesService(t, repo, &stubMemberUpdater{})

	err := svc.Assign(context.Background(), uuid.New(), uuid.New(), repo.role.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssignRequiresMembership(t *testing.T) {
	orgID := uuid.New()
	repo := &stubRoleRepo{role: &models.OrganizationRole{ID: uuid.New(), OrganizationID: orgID}}
	members := &stubMemberUpdater{rows: 0}
	svc := newRolesService(t, repo, members)

	err := svc.Assign(context.Background(), orgID, uuid.New(), repo.role.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if members.applied != 1 {
		t.Fatalf("update calls = %d, want 1", members.applied)
	}
}

func TestAssignUpdatesMemberRole(t *testing.T) {
	orgID := uuid.New()
	repo := &stubRoleRepo{role: &models.OrganizationRole{ID: uuid.New(), OrganizationID: orgID}}
	members := &stubMemberUpdater{rows: 1}
	svc := newRolesService(t, repo, members)

	if err := svc.Assign(context.Background(), orgID, uuid.New(), repo.role.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
}
