package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lucasfarrell/wavecrest-backend/api/responses"
	"github.com/lucasfarrell/wavecrest-backend/api/validators"
	"github.com/lucasfarrell/wavecrest-backend/internal/swaps"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
)

type createSwapRequest struct {
	TargetEmail string  `json:"target_email" validate:"required,email"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CreateSwap lets a guide offer one of their trips to a colleague.
func CreateSwap(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "swaps service unavailable"))
			return
		}

		actor, err := requireGuide(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tripID, err := parseUUIDParam(chi.URLParam(r, "tripId"), "trip id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSwapRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		swap, err := svc.Create(r.Context(), swaps.CreateSwapInput{
			TripID:        tripID,
			TargetEmail:   body.TargetEmail,
			Reason:        body.Reason,
			ActorUserID:   actor.UserID,
			ActorGuideID:  *actor.GuideID,
			ActorBranchID: actor.BranchID,
			ActorRole:     actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, swap)
	}
}

// ListMySwaps returns swap requests where the caller is either party.
func ListMySwaps(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "swaps service unavailable"))
			return
		}

		actor, err := requireGuide(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := swaps.ListSwapsInput{
			GuideID: *actor.GuideID,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.SwapStatus(raw)
			input.Status = &status
		}

		list, err := svc.ListMine(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
