package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/pagination"
)

// Repository persists and reads activity trail rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one activity row.
func (r *Repository) Insert(ctx context.Context, row *models.Activity) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// ListByOrg returns the newest activity for an organization, cursor-paged.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Activity, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(occurred_at, id) < (?, ?)", cursor.At, cursor.ID)
	}

	var rows []models.Activity
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) == limit {
		rows = rows[:limit-1]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{At: last.OccurredAt, ID: last.ID})
	}
	return rows, next, nil
}

// ListByActor returns the newest activity performed by a user across orgs.
func (r *Repository) ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]models.Activity, error) {
	var rows []models.Activity
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("occurred_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error
	return rows, err
}
