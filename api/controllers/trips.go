package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasfarrell/wavecrest-backend/api/responses"
	"github.com/lucasfarrell/wavecrest-backend/api/validators"
	"github.com/lucasfarrell/wavecrest-backend/internal/riskgate"
	"github.com/lucasfarrell/wavecrest-backend/internal/trips"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
)

type tripConditionsRequest struct {
	WaveHeightMeters  float64 `json:"wave_height_meters" validate:"min=0,max=30"`
	WindSpeedKmh      float64 `json:"wind_speed_kmh" validate:"min=0,max=300"`
	Weather           string  `json:"weather" validate:"required"`
	CrewReady         bool    `json:"crew_ready"`
	EquipmentComplete bool    `json:"equipment_complete"`
}

type startTripRequest struct {
	Conditions tripConditionsRequest `json:"conditions" validate:"required"`
	Override   bool                  `json:"override,omitempty"`
}

func (b tripConditionsRequest) toInput() (riskgate.Input, error) {
	weather := enums.WeatherCondition(b.Weather)
	if !weather.IsValid() {
		return riskgate.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown weather condition").WithDetails(map[string]any{"weather": b.Weather})
	}
	return riskgate.Input{
		WaveHeightMeters:  b.WaveHeightMeters,
		WindSpeedKmh:      b.WindSpeedKmh,
		Weather:           weather,
		CrewReady:         b.CrewReady,
		EquipmentComplete: b.EquipmentComplete,
	}, nil
}

// TripRiskCheck scores conditions without touching the trip.
func TripRiskCheck(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		var body tripConditionsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		conditions, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assessment := svc.RiskCheck(r.Context(), conditions)
		responses.WriteSuccess(w, assessment)
	}
}

// StartTrip runs the safety gate and marks the trip as departed.
func StartTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
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

		var body startTripRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		conditions, err := body.Conditions.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Start(r.Context(), trips.StartTripInput{
			TripID:        tripID,
			Conditions:    conditions,
			Override:      body.Override,
			ActorUserID:   actor.UserID,
			ActorBranchID: actor.BranchID,
			ActorRole:     actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
