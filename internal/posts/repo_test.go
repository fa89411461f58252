package posts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
)

func setupPostsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	posts := `
CREATE TABLE IF NOT EXISTS posts (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  author_id TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  privacy TEXT NOT NULL DEFAULT 'public',
  allow_all_roles INTEGER NOT NULL DEFAULT 0,
  allow_all_memberships INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	rolePrivacy := `
CREATE TABLE IF NOT EXISTS post_role_privacy (
  post_id TEXT NOT NULL,
  role_id TEXT NOT NULL,
  PRIMARY KEY (post_id, role_id)
);`
	membershipPrivacy := `
CREATE TABLE IF NOT EXISTS post_membership_privacy (
  post_id TEXT NOT NULL,
  membership_id TEXT NOT NULL,
  PRIMARY KEY (post_id, membership_id)
);`
	comments := `
CREATE TABLE IF NOT EXISTS post_comments (
  id TEXT PRIMARY KEY,
  post_id TEXT NOT NULL,
  author_id TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(posts).Error)
	require.NoError(t, db.Exec(rolePrivacy).Error)
	require.NoError(t, db.Exec(membershipPrivacy).Error)
	require.NoError(t, db.Exec(comments).Error)
	return db
}

func newPost(orgID uuid.UUID, title string, privacy enums.PrivacyType, created time.Time) *models.Post {
	return &models.Post{
		ID:             uuid.New(),
		OrganizationID: orgID,
		AuthorID:       uuid.New(),
		Title:          title,
		Body:           "body",
		Privacy:        privacy,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestRepositoryInsertTx_writesScopeRows(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)

	orgID := uuid.New()
	roleID := uuid.New()
	tierID := uuid.New()
	post := newPost(orgID, "Members only", enums.PrivacyPrivate, time.Now().UTC())

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, post, []uuid.UUID{roleID}, []uuid.UUID{tierID})
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Members only", got.Title)
	assert.Equal(t, enums.PrivacyPrivate, got.Privacy)

	roleIDs, err := repo.ScopeRoleIDs(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{roleID}, roleIDs)

	tierIDs, err := repo.ScopeMembershipIDs(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tierID}, tierIDs)
}

func TestRepositoryUpdateTx_replacesScopeRows(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)

	orgID := uuid.New()
	oldRole := uuid.New()
	newRole := uuid.New()
	post := newPost(orgID, "Original", enums.PrivacyPrivate, time.Now().UTC())

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, post, []uuid.UUID{oldRole}, nil)
	})
	require.NoError(t, err)

	post.Title = "Edited"
	post.Privacy = enums.PrivacyPrivate
	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.UpdateTx(tx, post, []uuid.UUID{newRole}, nil)
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Edited", got.Title)

	roleIDs, err := repo.ScopeRoleIDs(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newRole}, roleIDs)
}

func TestRepositoryListByOrg_newestFirst(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)

	orgID := uuid.New()
	now := time.Now().UTC()
	older := newPost(orgID, "Older", enums.PrivacyPublic, now.Add(-time.Hour))
	newer := newPost(orgID, "Newer", enums.PrivacyPublic, now)
	stranger := newPost(uuid.New(), "Other org", enums.PrivacyPublic, now)

	for _, p := range []*models.Post{older, newer, stranger} {
		post := p
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return repo.InsertTx(tx, post, nil, nil)
		}))
	}

	list, err := repo.ListByOrg(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Title)
	assert.Equal(t, "Older", list[1].Title)
}

func TestRepositoryComments_lifecycle(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)

	post := newPost(uuid.New(), "Discussion", enums.PrivacyPublic, time.Now().UTC())
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, post, nil, nil)
	}))

	now := time.Now().UTC()
	first := &models.PostComment{ID: uuid.New(), PostID: post.ID, AuthorID: uuid.New(), Body: "first", CreatedAt: now.Add(-time.Minute)}
	second := &models.PostComment{ID: uuid.New(), PostID: post.ID, AuthorID: uuid.New(), Body: "second", CreatedAt: now}
	require.NoError(t, repo.InsertComment(context.Background(), first))
	require.NoError(t, repo.InsertComment(context.Background(), second))

	comments, err := repo.ListComments(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)

	affected, err := repo.DeleteComment(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.DeleteComment(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
