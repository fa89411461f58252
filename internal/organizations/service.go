package organizations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/pkg/db"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type orgRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	InsertTx(tx *gorm.DB, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int) ([]models.Organization, error)
	PendingRequest(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.OrganizationRequest, error)
	InsertRequest(ctx context.Context, req *models.OrganizationRequest) error
	ListPendingRequests(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRequest, error)
	DecideRequestTx(tx *gorm.DB, id uuid.UUID, status enums.RequestStatus, decidedBy uuid.UUID, at time.Time) (int64, error)
}

type memberRepository interface {
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMember, error)
	InsertTx(tx *gorm.DB, member *models.OrganizationMember) error
	DeleteMemberTx(tx *gorm.DB, orgID, userID uuid.UUID) error
}

type roleRepository interface {
	SeedDefaultTx(tx *gorm.DB, orgID uuid.UUID) (*models.OrganizationRole, error)
	DefaultRoleTx(tx *gorm.DB, orgID uuid.UUID) (*models.OrganizationRole, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrgInput carries the organization create/update fields.
type OrgInput struct {
	Name        string
	Description string
	Access      enums.OrgAccess
}

// JoinResult reports whether the user became a member immediately or a
// join request was filed for approval.
type JoinResult struct {
	Joined    bool       `json:"joined"`
	RequestID *uuid.UUID `json:"requestId,omitempty"`
}

// Service manages the organization lifecycle and membership joins.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input OrgInput) (*models.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	List(ctx context.Context, limit int) ([]models.Organization, error)
	Update(ctx context.Context, actorID, orgID uuid.UUID, input OrgInput) (*models.Organization, error)
	Delete(ctx context.Context, actorID, orgID uuid.UUID) error
	Join(ctx context.Context, userID, orgID uuid.UUID) (*JoinResult, error)
	Leave(ctx context.Context, userID, orgID uuid.UUID) error
	ListRequests(ctx context.Context, actorID, orgID uuid.UUID) ([]models.OrganizationRequest, error)
	AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) error
	DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error
}

// ServiceParams groups dependencies for the organizations service.
type ServiceParams struct {
	OrgRepo           orgRepository
	MemberRepo        memberRepository
	RoleRepo          roleRepository
	Activity          activity.Sink
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type service struct {
	orgs     orgRepository
	members  memberRepository
	roles    roleRepository
	trail    activity.Sink
	txRunner txRunner
	logg     *logger.Logger
}

// NewService builds the organizations service.
func NewService(params ServiceParams) (Service, error) {
	if params.OrgRepo == nil {
		return nil, fmt.Errorf("organization repo required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	if params.RoleRepo == nil {
		return nil, fmt.Errorf("role repo required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity sink required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orgs:     params.OrgRepo,
		members:  params.MemberRepo,
		roles:    params.RoleRepo,
		trail:    params.Activity,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

// Create inserts the organization, seeds its default role, and makes
// the owner its first member, all in one transaction.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input OrgInput) (*models.Organization, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if err := validateOrgInput(&input); err != nil {
		return nil, err
	}

	org := &models.Organization{
		Name:        input.Name,
		Slug:        Slugify(input.Name),
		Description: input.Description,
		Access:      input.Access,
		OwnerID:     ownerID,
	}
	if org.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name must contain letters or digits")
	}

	err := s.createWithSlugRetry(ctx, org)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// createWithSlugRetry retries once with a random suffix when the slug
// is already taken.
func (s *service) createWithSlugRetry(ctx context.Context, org *models.Organization) error {
	baseSlug := org.Slug
	for attempt := 0; attempt < 2; attempt++ {
		err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.orgs.InsertTx(tx, org); err != nil {
				return err
			}
			role, err := s.roles.SeedDefaultTx(tx, org.ID)
			if err != nil {
				return err
			}
			if err := s.members.InsertTx(tx, &models.OrganizationMember{
				OrganizationID: org.ID,
				UserID:         org.OwnerID,
				RoleID:         role.ID,
			}); err != nil {
				return err
			}

			orgID := org.ID
			if err := s.trail.RecordTx(ctx, tx, activity.Entry{
				OrganizationID: org.ID,
				ActorID:        org.OwnerID,
				Type:           enums.ActivityOrgCreated,
				TargetID:       &orgID,
				Detail:         map[string]any{"name": org.Name, "slug": org.Slug},
			}); err != nil {
				s.logg.Error(ctx, "failed to record org created activity", err)
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if db.IsUniqueViolation(err, "ux_organizations_slug") && attempt == 0 {
			org.ID = uuid.Nil
			org.Slug = baseSlug + "-" + randomSlugSuffix()
			continue
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create organization")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "organization slug already taken")
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}
	if org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return org, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	org, err := s.orgs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}
	if org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return org, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.Organization, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.orgs.List(ctx, limit)
}

func (s *service) Update(ctx context.Context, actorID, orgID uuid.UUID, input OrgInput) (*models.Organization, error) {
	org, err := s.requireOwner(ctx, actorID, orgID)
	if err != nil {
		return nil, err
	}
	if err := validateOrgInput(&input); err != nil {
		return nil, err
	}

	org.Name = input.Name
	org.Description = input.Description
	org.Access = input.Access
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update organization")
	}
	return org, nil
}

func (s *service) Delete(ctx context.Context, actorID, orgID uuid.UUID) error {
	if _, err := s.requireOwner(ctx, actorID, orgID); err != nil {
		return err
	}
	if err := s.orgs.Delete(ctx, orgID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete organization")
	}
	return nil
}

// Join adds the user directly for open organizations and files a
// pending request for approval-gated ones.
func (s *service) Join(ctx context.Context, userID, orgID uuid.UUID) (*JoinResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	if member != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already a member of this organization")
	}

	if org.Access == enums.OrgAccessApproval {
		return s.fileJoinRequest(ctx, userID, orgID)
	}

	if err := s.insertMember(ctx, userID, orgID); err != nil {
		return nil, err
	}
	return &JoinResult{Joined: true}, nil
}

func (s *service) fileJoinRequest(ctx context.Context, userID, orgID uuid.UUID) (*JoinResult, error) {
	pending, err := s.orgs.PendingRequest(ctx, orgID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load join request")
	}
	if pending != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "join request already pending")
	}

	req := &models.OrganizationRequest{
		OrganizationID: orgID,
		UserID:         userID,
		Status:         enums.RequestPending,
	}
	if err := s.orgs.InsertRequest(ctx, req); err != nil {
		if db.IsUniqueViolation(err, "ux_org_requests_pending") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "join request already pending")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create join request")
	}
	requestID := req.ID
	return &JoinResult{RequestID: &requestID}, nil
}

func (s *service) insertMember(ctx context.Context, userID, orgID uuid.UUID) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		role, err := s.roles.DefaultRoleTx(tx, orgID)
		if err != nil {
			return err
		}
		if role == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "default role missing for organization")
		}
		if err := s.members.InsertTx(tx, &models.OrganizationMember{
			OrganizationID: orgID,
			UserID:         userID,
			RoleID:         role.ID,
		}); err != nil {
			if db.IsUniqueViolation(err, "idx_org_member_user") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "already a member of this organization")
			}
			return err
		}

		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: orgID,
			ActorID:        userID,
			Type:           enums.ActivityOrgJoined,
		}); err != nil {
			s.logg.Error(ctx, "failed to record join activity", err)
		}
		return nil
	})
}

// Leave removes the member row. The owner cannot leave their own
// organization; they delete it instead.
func (s *service) Leave(ctx context.Context, userID, orgID uuid.UUID) error {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return err
	}
	if org.OwnerID == userID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the owner cannot leave the organization")
	}

	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	if member == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not a member of this organization")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.members.DeleteMemberTx(tx, orgID, userID); err != nil {
			return err
		}
		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: orgID,
			ActorID:        userID,
			Type:           enums.ActivityOrgLeft,
		}); err != nil {
			s.logg.Error(ctx, "failed to record leave activity", err)
		}
		return nil
	})
}

func (s *service) ListRequests(ctx context.Context, actorID, orgID uuid.UUID) ([]models.OrganizationRequest, error) {
	if _, err := s.requireOwner(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	return s.orgs.ListPendingRequests(ctx, orgID)
}

// AcceptRequest settles the request and inserts the member row.
func (s *service) AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	req, err := s.requireDecidableRequest(ctx, actorID, requestID)
	if err != nil {
		return err
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.orgs.DecideRequestTx(tx, req.ID, enums.RequestAccepted, actorID, time.Now().UTC())
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")
		}

		role, err := s.roles.DefaultRoleTx(tx, req.OrganizationID)
		if err != nil {
			return err
		}
		if role == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "default role missing for organization")
		}
		if err := s.members.InsertTx(tx, &models.OrganizationMember{
			OrganizationID: req.OrganizationID,
			UserID:         req.UserID,
			RoleID:         role.ID,
		}); err != nil {
			if db.IsUniqueViolation(err, "idx_org_member_user") {
				return nil
			}
			return err
		}

		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: req.OrganizationID,
			ActorID:        req.UserID,
			Type:           enums.ActivityOrgJoined,
			Detail:         map[string]any{"approved_by": actorID.String()},
		}); err != nil {
			s.logg.Error(ctx, "failed to record join activity", err)
		}
		return nil
	})
}

// DeclineRequest settles the request without adding a member.
func (s *service) DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	req, err := s.requireDecidableRequest(ctx, actorID, requestID)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.orgs.DecideRequestTx(tx, req.ID, enums.RequestDeclined, actorID, time.Now().UTC())
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")
		}
		return nil
	})
}

func (s *service) requireDecidableRequest(ctx context.Context, actorID, requestID uuid.UUID) (*models.OrganizationRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	req, err := s.orgs.GetRequest(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load join request")
	}
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "join request not found")
	}
	if _, err := s.requireOwner(ctx, actorID, req.OrganizationID); err != nil {
		return nil, err
	}
	if req.Status != enums.RequestPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")
	}
	return req, nil
}

func (s *service) requireOwner(ctx context.Context, actorID, orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the organization owner can do this")
	}
	return org, nil
}

func validateOrgInput(input *OrgInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	input.Description = strings.TrimSpace(input.Description)
	if input.Access == "" {
		input.Access = enums.OrgAccessOpen
	}
	if !input.Access.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid access policy")
	}
	return nil
}
