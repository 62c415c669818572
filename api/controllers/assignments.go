package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/api/responses"
	"github.com/lucasfarrell/wavecrest-backend/api/validators"
	"github.com/lucasfarrell/wavecrest-backend/internal/assignments"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
)

type assignGuidesRequest struct {
	GuideIDs []uuid.UUID       `json:"guide_ids" validate:"required,min=1,max=20"`
	Roles    []enums.CrewRole  `json:"roles,omitempty"`
	Fees     []decimal.Decimal `json:"fees,omitempty"`
	Notes    *string           `json:"notes,omitempty"`
}

type decideAssignmentRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
	Reason   string `json:"reason,omitempty"`
}

// AssignGuides offers a trip to one or more guides.
func AssignGuides(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tripID, err := parseUUIDParam(chi.URLParam(r, "tripId"), "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignGuidesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AssignGuides(r.Context(), assignments.AssignGuidesInput{
			TripID:        tripID,
			GuideIDs:      body.GuideIDs,
			Roles:         body.Roles,
			Fees:          body.Fees,
			Notes:         body.Notes,
			ActorUserID:   actor.UserID,
			ActorBranchID: actor.BranchID,
			ActorRole:     actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// DecideAssignment records a guide's accept or reject call on an offer.
func DecideAssignment(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignments service unavailable"))
			return
		}

		actor, err := requireGuide(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignmentID, err := parseUUIDParam(chi.URLParam(r, "assignmentId"), "assignment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body decideAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Decide(r.Context(), assignments.DecideInput{
			AssignmentID: assignmentID,
			Decision:     assignments.Decision(strings.ToLower(body.Decision)),
			Reason:       body.Reason,
			ActorUserID:  actor.UserID,
			ActorGuideID: *actor.GuideID,
			ActorRole:    actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}
