package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/api/middleware"
	"github.com/syncuphq/syncup-backend/api/responses"
	"github.com/syncuphq/syncup-backend/api/validators"
	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
	"github.com/syncuphq/syncup-backend/pkg/pagination"
)

// ActivityItem is one audit trail line in a feed response.
type ActivityItem struct {
	ID             uuid.UUID          `json:"id"`
	OrganizationID uuid.UUID          `json:"organizationId"`
	ActorID        uuid.UUID          `json:"actorId"`
	Type           enums.ActivityType `json:"type"`
	TargetID       *uuid.UUID         `json:"targetId,omitempty"`
	Detail         json.RawMessage    `json:"detail,omitempty"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// ActivityFeedResponse pages an activity feed, newest first.
type ActivityFeedResponse struct {
	Items      []ActivityItem `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

func activityItems(rows []models.Activity) []ActivityItem {
	items := make([]ActivityItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ActivityItem{
			ID:             row.ID,
			OrganizationID: row.OrganizationID,
			ActorID:        row.ActorID,
			Type:           row.Type,
			TargetID:       row.TargetID,
			Detail:         row.Detail,
			OccurredAt:     row.OccurredAt,
		})
	}
	return items
}

// ActivityList serves an organization's activity feed with keyset cursors.
func ActivityList(repo *activity.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParseUUIDParam(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
		if _, err := pagination.ParseCursor(cursor); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		rows, next, err := repo.ListByOrg(r.Context(), orgID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ActivityFeedResponse{Items: activityItems(rows), NextCursor: next})
	}
}

// MeActivities serves the caller's own recent activity across organizations.
func MeActivities(repo *activity.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListByActor(r.Context(), middleware.UserIDFromContext(r.Context()), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ActivityFeedResponse{Items: activityItems(rows)})
	}
}
