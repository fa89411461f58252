package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/pkg/db"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
)

type roleRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.OrganizationRole, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error)
	Create(ctx context.Context, role *models.OrganizationRole) error
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountMembers(ctx context.Context, roleID uuid.UUID) (int64, error)
}

type memberRoleUpdater interface {
	UpdateMemberRole(ctx context.Context, orgID, userID, roleID uuid.UUID) (int64, error)
}

// Service manages an organization's role catalog.
type Service interface {
	List(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error)
	Create(ctx context.Context, orgID uuid.UUID, name string) (*models.OrganizationRole, error)
	Rename(ctx context.Context, orgID, roleID uuid.UUID, name string) error
	Delete(ctx context.Context, orgID, roleID uuid.UUID) error
	Assign(ctx context.Context, orgID, userID, roleID uuid.UUID) error
}

// ServiceParams groups dependencies for the roles service.
type ServiceParams struct {
	RoleRepo   roleRepository
	MemberRepo memberRoleUpdater
}

type service struct {
	roles   roleRepository
	members memberRoleUpdater
}

// NewService builds a roles service.
func NewService(params ServiceParams) (Service, error) {
	if params.RoleRepo == nil {
		return nil, fmt.Errorf("role repo required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	return &service{roles: params.RoleRepo, members: params.MemberRepo}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	return s.roles.ListByOrg(ctx, orgID)
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, name string) (*models.OrganizationRole, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role name is required")
	}

	role := &models.OrganizationRole{OrganizationID: orgID, Name: name}
	if err := s.roles.Create(ctx, role); err != nil {
		if db.IsUniqueViolation(err, "idx_org_role_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a role with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create role")
	}
	return role, nil
}

func (s *service) Rename(ctx context.Context, orgID, roleID uuid.UUID, name string) error {
	role, err := s.requireRole(ctx, orgID, roleID)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "role name is required")
	}
	if role.IsDefault {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the default role cannot be renamed")
	}
	if err := s.roles.Rename(ctx, roleID, name); err != nil {
		if db.IsUniqueViolation(err, "idx_org_role_name") {
			return pkgerrors.New(pkgerrors.CodeConflict, "a role with this name already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename role")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, orgID, roleID uuid.UUID) error {
	role, err := s.requireRole(ctx, orgID, roleID)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the default role cannot be deleted")
	}
	count, err := s.roles.CountMembers(ctx, roleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count role members")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "role is still assigned to members")
	}
	if err := s.roles.Delete(ctx, roleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete role")
	}
	return nil
}

func (s *service) Assign(ctx context.Context, orgID, userID, roleID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.requireRole(ctx, orgID, roleID); err != nil {
		return err
	}
	rows, err := s.members.UpdateMemberRole(ctx, orgID, userID, roleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign role")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user is not a member of this organization")
	}
	return nil
}

func (s *service) requireRole(ctx context.Context, orgID, roleID uuid.UUID) (*models.OrganizationRole, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if roleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role id is required")
	}
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role")
	}
	if role == nil || role.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
	}
	return role, nil
}
