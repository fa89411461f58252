package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
)

// Repository persists posts, their privacy allow-lists, and comments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a post by id, nil when no such post exists.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByOrg returns an organization's posts, newest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// InsertTx stores the post together with its allow-lists inside the
// caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, post *models.Post, roleIDs, membershipIDs []uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if err := tx.Create(post).Error; err != nil {
		return err
	}
	return r.writeScopeRowsTx(tx, post.ID, roleIDs, membershipIDs)
}

// UpdateTx overwrites the post and replaces its allow-lists.
func (r *Repository) UpdateTx(tx *gorm.DB, post *models.Post, roleIDs, membershipIDs []uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	err := tx.Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":                 post.Title,
			"body":                  post.Body,
			"privacy":               post.Privacy,
			"allow_all_roles":       post.AllowAllRoles,
			"allow_all_memberships": post.AllowAllMemberships,
		}).Error
	if err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostRolePrivacy{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostMembershipPrivacy{}).Error; err != nil {
		return err
	}
	return r.writeScopeRowsTx(tx, post.ID, roleIDs, membershipIDs)
}

func (r *Repository) writeScopeRowsTx(tx *gorm.DB, postID uuid.UUID, roleIDs, membershipIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		if err := tx.Create(&models.PostRolePrivacy{PostID: postID, RoleID: roleID}).Error; err != nil {
			return err
		}
	}
	for _, membershipID := range membershipIDs {
		if err := tx.Create(&models.PostMembershipPrivacy{PostID: postID, MembershipID: membershipID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the post. Allow-list and comment rows go with it via
// foreign key cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error
}

// ScopeRoleIDs returns the post's allow-listed role ids.
func (r *Repository) ScopeRoleIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.PostRolePrivacy
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RoleID)
	}
	return ids, nil
}

// ScopeMembershipIDs returns the post's allow-listed membership tier ids.
func (r *Repository) ScopeMembershipIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.PostMembershipPrivacy
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MembershipID)
	}
	return ids, nil
}

// InsertComment stores a comment.
func (r *Repository) InsertComment(ctx context.Context, comment *models.PostComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetComment loads a comment by id, nil when no such comment exists.
func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*models.PostComment, error) {
	var comment models.PostComment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment, reporting affected rows.
func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.PostComment{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// ListComments returns a post's comments, oldest first.
func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]models.PostComment, error) {
	var comments []models.PostComment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}
