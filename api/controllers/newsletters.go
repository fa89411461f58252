package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/syncuphq/syncup-backend/api/middleware"
	"github.com/syncuphq/syncup-backend/api/responses"
	"github.com/syncuphq/syncup-backend/api/validators"
	"github.com/syncuphq/syncup-backend/internal/newsletters"
	"github.com/syncuphq/syncup-backend/pkg/logger"
)

// NewsletterRequest is the payload for sending a newsletter. EventID narrows
// the audience to the event's confirmed registrants.
type NewsletterRequest struct {
	Subject string     `json:"subject" validate:"required"`
	Body    string     `json:"body" validate:"required"`
	EventID *uuid.UUID `json:"eventId"`
}

func NewsletterSend(svc newsletters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParseUUIDParam(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body NewsletterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Send(r.Context(), middleware.UserIDFromContext(r.Context()), orgID, newsletters.NewsletterInput{
			Subject: body.Subject,
			Body:    body.Body,
			EventID: body.EventID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func NewsletterList(svc newsletters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParseUUIDParam(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
