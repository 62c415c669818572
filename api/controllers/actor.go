package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lucasfarrell/wavecrest-backend/api/middleware"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
)

// actorContext is the authenticated caller as seeded by the auth middleware.
type actorContext struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	BranchID *uuid.UUID
	GuideID  *uuid.UUID
}

func actorFromRequest(r *http.Request) (*actorContext, error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	if rawUser == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	actor := &actorContext{
		UserID: userID,
		Role:   enums.ActorRole(middleware.RoleFromContext(r.Context())),
	}

	if raw := middleware.BranchIDFromContext(r.Context()); raw != "" {
		branchID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid branch id")
		}
		actor.BranchID = &branchID
	}
	if raw := middleware.GuideIDFromContext(r.Context()); raw != "" {
		guideID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid guide id")
		}
		actor.GuideID = &guideID
	}
	return actor, nil
}

// requireGuide resolves the actor and insists on a guide-scoped token.
func requireGuide(r *http.Request) (*actorContext, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return nil, err
	}
	if actor.GuideID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "guide context missing")
	}
	return actor, nil
}

func parseUUIDParam(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}
