package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	BranchID *uuid.UUID
	GuideID  *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	Role     enums.ActorRole `json:"role"`
	BranchID *uuid.UUID      `json:"branch_id,omitempty"`
	GuideID  *uuid.UUID      `json:"guide_id,omitempty"`
	jwt.RegisteredClaims
}
