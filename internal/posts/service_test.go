package posts

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/internal/privacy"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

type stubPostRepo struct {
	post          *models.Post
	posts         []models.Post
	inserted      *models.Post
	insertedRoles []uuid.UUID
	insertedTiers []uuid.UUID
	updated       *models.Post
	deleted       []uuid.UUID
	scopeRoles    []uuid.UUID
	scopeTiers    []uuid.UUID
	comment       *models.PostComment
	insertedCmt   *models.PostComment
	deleteCmtRows int64
	comments      []models.PostComment
}

func (s *stubPostRepo) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.post, nil
}

func (s *stubPostRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Post, error) {
	return s.posts, nil
}

func (s *stubPostRepo) InsertTx(tx *gorm.DB, post *models.Post, roleIDs, membershipIDs []uuid.UUID) error {
	post.ID = uuid.New()
	s.inserted = post
	s.insertedRoles = roleIDs
	s.insertedTiers = membershipIDs
	return nil
}

func (s *stubPostRepo) UpdateTx(tx *gorm.DB, post *models.Post, roleIDs, membershipIDs []uuid.UUID) error {
	s.updated = post
	s.insertedRoles = roleIDs
	s.insertedTiers = membershipIDs
	return nil
}

func (s *stubPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPostRepo) ScopeRoleIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	return s.scopeRoles, nil
}

func (s *stubPostRepo) ScopeMembershipIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	return s.scopeTiers, nil
}

func (s *stubPostRepo) InsertComment(ctx context.Context, comment *models.PostComment) error {
	comment.ID = uuid.New()
	s.insertedCmt = comment
	return nil
}

func (s *stubPostRepo) GetComment(ctx context.Context, id uuid.UUID) (*models.PostComment, error) {
	return s.comment, nil
}

func (s *stubPostRepo) DeleteComment(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.deleteCmtRows, nil
}

func (s *stubPostRepo) ListComments(ctx context.Context, postID uuid.UUID) ([]models.PostComment, error) {
	return s.comments, nil
}

type stubRoleCatalog struct {
	roles []models.OrganizationRole
}

func (s *stubRoleCatalog) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationRole, error) {
	return s.roles, nil
}

type stubTierCatalog struct {
	tiers []models.MembershipTier
}

func (s *stubTierCatalog) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.MembershipTier, error) {
	return s.tiers, nil
}

type stubMemberReader struct {
	member *models.OrganizationMember
}

func (s *stubMemberReader) GetMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMember, error) {
	return s.member, nil
}

type stubOrgReader struct {
	org *models.Organization
}

func (s *stubOrgReader) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.org, nil
}

type stubTrail struct {
	entries []activity.Entry
}

func (s *stubTrail) RecordTx(ctx context.Context, tx *gorm.DB, entry activity.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type postFixture struct {
	repo    *stubPostRepo
	roles   *stubRoleCatalog
	tiers   *stubTierCatalog
	members *stubMemberReader
	orgs    *stubOrgReader
	trail   *stubTrail
}

func newFixture() *postFixture {
	return &postFixture{
		repo:    &stubPostRepo{},
		roles:   &stubRoleCatalog{},
		tiers:   &stubTierCatalog{},
		members: &stubMemberReader{},
		orgs:    &stubOrgReader{},
		trail:   &stubTrail{},
	}
}

func (f *postFixture) build(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		PostRepo:          f.repo,
		RoleCatalog:       f.roles,
		TierCatalog:       f.tiers,
		MemberRepo:        f.members,
		OrgRepo:           f.orgs,
		Activity:          f.trail,
		TransactionRunner: stubTx{},
		Logger:            logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func publicPost(orgID uuid.UUID) *models.Post {
	return &models.Post{
		ID:             uuid.New(),
		OrganizationID: orgID,
		AuthorID:       uuid.New(),
		Title:          "Season kickoff",
		Body:           "See you all at the park.",
		Privacy:        enums.PrivacyPublic,
	}
}

func postInput() PostInput {
	return PostInput{
		Title:   "Season kickoff",
		Body:    "See you all at the park.",
		Privacy: privacy.ScopeInput{Type: enums.PrivacyPublic},
	}
}

func TestCreateStoresPostAndActivity(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	actorID := uuid.New()
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, UserID: actorID}
	svc := f.build(t)

	post, err := svc.Create(context.Background(), actorID, orgID, postInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.AuthorID != actorID {
		t.Fatalf("expected author %s, got %s", actorID, post.AuthorID)
	}
	if len(f.trail.entries) != 1 || f.trail.entries[0].Type != enums.ActivityPostCreated {
		t.Fatalf("expected post created activity, got %+v", f.trail.entries)
	}
}

func TestCreateRequiresMembership(t *testing.T) {
	f := newFixture()
	svc := f.build(t)

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), postInput())
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreatePrivateScopeResolvesMembershipAllowList(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	actorID := uuid.New()
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, UserID: actorID}
	tier := models.MembershipTier{ID: uuid.New(), Name: "Gold", OrganizationID: orgID}
	f.tiers.tiers = []models.MembershipTier{tier}
	svc := f.build(t)

	input := postInput()
	input.Privacy = privacy.ScopeInput{Type: enums.PrivacyPrivate, Memberships: []string{"Gold"}}
	if _, err := svc.Create(context.Background(), actorID, orgID, input); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(f.repo.insertedTiers) != 1 || f.repo.insertedTiers[0] != tier.ID {
		t.Fatalf("expected tier allow-list [%s], got %v", tier.ID, f.repo.insertedTiers)
	}
}

func TestGetHidesPrivatePostFromNonMembers(t *testing.T) {
	f := newFixture()
	post := publicPost(uuid.New())
	post.Privacy = enums.PrivacyPrivate
	f.repo.post = post
	svc := f.build(t)

	_, err := svc.Get(context.Background(), uuid.New(), post.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListVisibleFiltersByMembershipAllowList(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	tierID := uuid.New()
	open := *publicPost(orgID)
	restricted := *publicPost(orgID)
	restricted.Privacy = enums.PrivacyPrivate
	f.repo.posts = []models.Post{open, restricted}
	f.repo.scopeTiers = []uuid.UUID{uuid.New()}
	f.members.member = &models.OrganizationMember{OrganizationID: orgID, MembershipID: &tierID}
	svc := f.build(t)

	visible, err := svc.ListVisible(context.Background(), uuid.New(), orgID)
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != open.ID {
		t.Fatalf("expected only the public post, got %+v", visible)
	}
}

func TestUpdateRequiresAuthorOrOwner(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	post := publicPost(orgID)
	f.repo.post = post
	f.orgs.org = &models.Organization{ID: orgID, OwnerID: uuid.New()}
	svc := f.build(t)

	_, err := svc.Update(context.Background(), uuid.New(), post.ID, postInput())
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCommentRequiresVisibility(t *testing.T) {
	f := newFixture()
	post := publicPost(uuid.New())
	post.Privacy = enums.PrivacyPrivate
	f.repo.post = post
	svc := f.build(t)

	_, err := svc.Comment(context.Background(), uuid.New(), post.ID, "great post")
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCommentOnVisiblePost(t *testing.T) {
	f := newFixture()
	post := publicPost(uuid.New())
	f.repo.post = post
	actorID := uuid.New()
	svc := f.build(t)

	comment, err := svc.Comment(context.Background(), actorID, post.ID, "  great post  ")
	if err != nil {
		t.Fatalf("Comment: %v", err)
	}
	if comment.Body != "great post" {
		t.Fatalf("expected trimmed body, got %q", comment.Body)
	}
	if comment.AuthorID != actorID {
		t.Fatalf("expected author %s, got %s", actorID, comment.AuthorID)
	}
}

func TestDeleteCommentByCommentAuthor(t *testing.T) {
	f := newFixture()
	actorID := uuid.New()
	f.repo.comment = &models.PostComment{ID: uuid.New(), PostID: uuid.New(), AuthorID: actorID}
	f.repo.deleteCmtRows = 1
	svc := f.build(t)

	if err := svc.DeleteComment(context.Background(), actorID, f.repo.comment.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
}

func TestDeleteCommentByStrangerForbidden(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	post := publicPost(orgID)
	f.repo.post = post
	f.repo.comment = &models.PostComment{ID: uuid.New(), PostID: post.ID, AuthorID: uuid.New()}
	f.orgs.org = &models.Organization{ID: orgID, OwnerID: uuid.New()}
	svc := f.build(t)

	err := svc.DeleteComment(context.Background(), uuid.New(), f.repo.comment.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
