package posts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/internal/privacy"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type postRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Post, error)
	InsertTx(tx *gorm.DB, post *models.Post, roleIDs, membershipIDs []uuid.UUID) error
	UpdateTx(tx *gorm.DB, post *models.Post, roleIDs, membershipIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ScopeRoleIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
	ScopeMembershipIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
	InsertComment(ctx context.Context, comment *models.PostComment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.PostComment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) (int64, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.PostComment, error)
}

type roleCatalog interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error)
}

type tierCatalog interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.MembershipTier, error)
}

type memberReader interface {
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMember, error)
}

type orgReader interface {
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PostInput carries the post create/update fields.
type PostInput struct {
	Title   string
	Body    string
	Privacy privacy.ScopeInput
}

// Service manages the organization feed and comments.
type Service interface {
	Create(ctx context.Context, actorID, orgID uuid.UUID, input PostInput) (*models.Post, error)
	Update(ctx context.Context, actorID, postID uuid.UUID, input PostInput) (*models.Post, error)
	Delete(ctx context.Context, actorID, postID uuid.UUID) error
	Get(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
	ListVisible(ctx context.Context, viewerID, orgID uuid.UUID) ([]models.Post, error)
	Comment(ctx context.Context, actorID, postID uuid.UUID, body string) (*models.PostComment, error)
	DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error
	ListComments(ctx context.Context, viewerID, postID uuid.UUID) ([]models.PostComment, error)
}

// ServiceParams groups dependencies for the posts service.
type ServiceParams struct {
	PostRepo          postRepository
	RoleCatalog       roleCatalog
	TierCatalog       tierCatalog
	MemberRepo        memberReader
	OrgRepo           orgReader
	Activity          activity.Sink
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type service struct {
	posts    postRepository
	roles    roleCatalog
	tiers    tierCatalog
	members  memberReader
	orgs     orgReader
	trail    activity.Sink
	txRunner txRunner
	logg     *logger.Logger
}

// NewService builds the posts service.
func NewService(params ServiceParams) (Service, error) {
	if params.PostRepo == nil {
		return nil, fmt.Errorf("post repo required")
	}
	if params.RoleCatalog == nil || params.TierCatalog == nil {
		return nil, fmt.Errorf("role and tier catalogs required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	if params.OrgRepo == nil {
		return nil, fmt.Errorf("organization repo required")
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
		posts:    params.PostRepo,
		roles:    params.RoleCatalog,
		tiers:    params.TierCatalog,
		members:  params.MemberRepo,
		orgs:     params.OrgRepo,
		trail:    params.Activity,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

// Create validates the privacy scope against the organization's
// catalogs and stores the post.
func (s *service) Create(ctx context.Context, actorID, orgID uuid.UUID, input PostInput) (*models.Post, error) {
	if actorID == uuid.Nil || orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor and organization ids are required")
	}
	member, err := s.members.GetMember(ctx, orgID, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only organization members can post")
	}

	scope, err := s.resolveScope(ctx, orgID, input.Privacy)
	if err != nil {
		return nil, err
	}
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}

	post := &models.Post{
		OrganizationID:      orgID,
		AuthorID:            actorID,
		Title:               input.Title,
		Body:                input.Body,
		Privacy:             scope.Type,
		AllowAllRoles:       scope.AllowAllRoles,
		AllowAllMemberships: scope.AllowAllMemberships,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.posts.InsertTx(tx, post, scope.RoleIDs(), scope.MembershipIDs()); err != nil {
			return err
		}
		postID := post.ID
		if err := s.trail.RecordTx(ctx, tx, activity.Entry{
			OrganizationID: orgID,
			ActorID:        actorID,
			Type:           enums.ActivityPostCreated,
			Aggregate:      enums.AggregatePost,
			TargetID:       &postID,
			Detail:         map[string]any{"title": post.Title},
		}); err != nil {
			s.logg.Error(ctx, "failed to record post created activity", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create post")
	}
	return post, nil
}

// Update revalidates the scope and replaces the post's allow-lists.
func (s *service) Update(ctx context.Context, actorID, postID uuid.UUID, input PostInput) (*models.Post, error) {
	post, err := s.requireAuthor(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(ctx, post.OrganizationID, input.Privacy)
	if err != nil {
		return nil, err
	}
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Body = input.Body
	post.Privacy = scope.Type
	post.AllowAllRoles = scope.AllowAllRoles
	post.AllowAllMemberships = scope.AllowAllMemberships

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.posts.UpdateTx(tx, post, scope.RoleIDs(), scope.MembershipIDs())
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update post")
	}
	return post, nil
}

func (s *service) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	if _, err := s.requireAuthor(ctx, actorID, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete post")
	}
	return nil
}

// Get returns the post when it is visible to the viewer. Invisible
// posts are indistinguishable from missing ones.
func (s *service) Get(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	visible, err := s.isVisibleTo(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return post, nil
}

// ListVisible returns the organization's feed filtered by the viewer's
// role and membership tier.
func (s *service) ListVisible(ctx context.Context, viewerID, orgID uuid.UUID) ([]models.Post, error) {
	posts, err := s.posts.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list posts")
	}

	member, err := s.viewerMember(ctx, viewerID, orgID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		ok, err := s.scopeAllows(ctx, &posts[i], member)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, posts[i])
		}
	}
	return visible, nil
}

// Comment adds a comment. Commenting requires seeing the post.
func (s *service) Comment(ctx context.Context, actorID, postID uuid.UUID, body string) (*models.PostComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment body is required")
	}
	if _, err := s.Get(ctx, actorID, postID); err != nil {
		return nil, err
	}

	comment := &models.PostComment{
		PostID:   postID,
		AuthorID: actorID,
		Body:     body,
	}
	if err := s.posts.InsertComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create comment")
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment author, the post author,
// and the organization owner may delete.
func (s *service) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error {
	comment, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load comment")
	}
	if comment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}

	if comment.AuthorID != actorID {
		if _, err := s.requireAuthor(ctx, actorID, comment.PostID); err != nil {
			return err
		}
	}

	rows, err := s.posts.DeleteComment(ctx, commentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete comment")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	return nil
}

// ListComments returns a post's comments when the post is visible to
// the viewer.
func (s *service) ListComments(ctx context.Context, viewerID, postID uuid.UUID) ([]models.PostComment, error) {
	if _, err := s.Get(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	return s.posts.ListComments(ctx, postID)
}

// requireAuthor loads the post and checks the actor is its author or
// the organization owner.
func (s *service) requireAuthor(ctx context.Context, actorID, postID uuid.UUID) (*models.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if post.AuthorID == actorID {
		return post, nil
	}
	org, err := s.orgs.Get(ctx, post.OrganizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}
	if org == nil || org.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the post author or organization owner can do this")
	}
	return post, nil
}

func (s *service) resolveScope(ctx context.Context, orgID uuid.UUID, input privacy.ScopeInput) (privacy.Scope, error) {
	roles, err := s.roles.ListByOrg(ctx, orgID)
	if err != nil {
		return privacy.Scope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role catalog")
	}
	tiers, err := s.tiers.ListByOrg(ctx, orgID)
	if err != nil {
		return privacy.Scope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tier catalog")
	}

	catalog := privacy.Catalog{
		Roles:       make([]privacy.CatalogEntry, 0, len(roles)),
		Memberships: make([]privacy.CatalogEntry, 0, len(tiers)),
	}
	for _, role := range roles {
		catalog.Roles = append(catalog.Roles, privacy.CatalogEntry{ID: role.ID, Name: role.Name})
	}
	for _, tier := range tiers {
		catalog.Memberships = append(catalog.Memberships, privacy.CatalogEntry{ID: tier.ID, Name: tier.Name})
	}
	return privacy.ValidateScope(input, catalog)
}

func (s *service) viewerMember(ctx context.Context, viewerID, orgID uuid.UUID) (*models.OrganizationMember, error) {
	if viewerID == uuid.Nil {
		return nil, nil
	}
	member, err := s.members.GetMember(ctx, orgID, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	return member, nil
}

func (s *service) isVisibleTo(ctx context.Context, viewerID uuid.UUID, post *models.Post) (bool, error) {
	member, err := s.viewerMember(ctx, viewerID, post.OrganizationID)
	if err != nil {
		return false, err
	}
	return s.scopeAllows(ctx, post, member)
}

func (s *service) scopeAllows(ctx context.Context, post *models.Post, member *models.OrganizationMember) (bool, error) {
	if post.Privacy == enums.PrivacyPublic {
		return true, nil
	}
	if member == nil {
		return false, nil
	}

	scope := privacy.Scope{
		Type:                post.Privacy,
		AllowAllRoles:       post.AllowAllRoles,
		AllowAllMemberships: post.AllowAllMemberships,
	}
	if !post.AllowAllRoles {
		roleIDs, err := s.posts.ScopeRoleIDs(ctx, post.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post scope")
		}
		for _, id := range roleIDs {
			scope.Roles = append(scope.Roles, privacy.CatalogEntry{ID: id})
		}
	}
	if !post.AllowAllMemberships {
		membershipIDs, err := s.posts.ScopeMembershipIDs(ctx, post.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post scope")
		}
		for _, id := range membershipIDs {
			scope.Memberships = append(scope.Memberships, privacy.CatalogEntry{ID: id})
		}
	}
	return privacy.IsVisible(scope, member.RoleID, member.MembershipID), nil
}

func validatePostInput(input *PostInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	if input.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "post title is required")
	}
	if input.Body == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "post body is required")
	}
	return nil
}
