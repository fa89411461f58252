package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syncuphq/syncup-backend/api/middleware"
	"github.com/syncuphq/syncup-backend/api/responses"
	"github.com/syncuphq/syncup-backend/api/validators"
	"github.com/syncuphq/syncup-backend/internal/events"
	"github.com/syncuphq/syncup-backend/internal/privacy"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

// PrivacyScopeRequest is the wire shape of a privacy scope: a type plus
// role and membership tier selections by name.
type PrivacyScopeRequest struct {
	Type        string   `json:"type"`
	Roles       []string `json:"roles"`
	Memberships []string `json:"memberships"`
}

func (req PrivacyScopeRequest) toInput() (privacy.ScopeInput, error) {
	input := privacy.ScopeInput{
		Roles:       req.Roles,
		Memberships: req.Memberships,
	}
	if req.Type == "" {
		input.Type = enums.PrivacyPublic
		return input, nil
	}
	privacyType, err := enums.ParsePrivacyType(req.Type)
	if err != nil {
		return privacy.ScopeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid privacy type")
	}
	input.Type = privacyType
	return input, nil
}

// DiscountRequest is one discount rule targeting roles or tiers by name.
type DiscountRequest struct {
	Roles       []string        `json:"roles"`
	Memberships []string        `json:"memberships"`
	Percent     decimal.Decimal `json:"percent"`
}

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	StartsAt    time.Time           `json:"startsAt" validate:"required"`
	EndsAt      *time.Time          `json:"endsAt"`
	Capacity    *int                `json:"capacity"`
	Price       decimal.Decimal     `json:"price"`
	Privacy     PrivacyScopeRequest `json:"privacy"`
	Discounts   []DiscountRequest   `json:"discounts"`
}

func (req EventRequest) toInput() (events.EventInput, error) {
	scope, err := req.Privacy.toInput()
	if err != nil {
		return events.EventInput{}, err
	}
	discounts := make([]privacy.DiscountRule, 0, len(req.Discounts))
	for _, rule := range req.Discounts {
		discounts = append(discounts, privacy.DiscountRule{
			Roles:       rule.Roles,
			Memberships: rule.Memberships,
			Percent:     rule.Percent,
		})
	}
	return events.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		Price:       req.Price,
		Privacy:     scope,
		Discounts:   discounts,
	}, nil
}

// AttendanceRequest records attendance for one registrant.
type AttendanceRequest struct {
	Attendance string `json:"attendance" validate:"required"`
}

func EventCreate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParseUUIDParam(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body EventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), orgID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

func EventUpdate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body EventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), eventID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, event)
	}
}

func EventDelete(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), eventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func EventGet(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, event)
	}
}

func EventList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParseUUIDParam(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListVisible(r.Context(), middleware.UserIDFromContext(r.Context()), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func EventRegister(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Register(r.Context(), middleware.UserIDFromContext(r.Context()), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}

func EventCancelRegistration(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CancelRegistration(r.Context(), middleware.UserIDFromContext(r.Context()), eventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func EventMarkAttendance(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseUUIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body AttendanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		attendance, err := enums.ParseAttendanceStatus(body.Attendance)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid attendance status"))
			return
		}

		if err := svc.MarkAttendance(r.Context(), middleware.UserIDFromContext(r.Context()), eventID, userID, attendance); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

func EventRegistrations(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListRegistrations(r.Context(), middleware.UserIDFromContext(r.Context()), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
