package controllers

import (
	"net/http"

	"github.com/lucasfarrell/wavecrest-backend/api/middleware"
	"github.com/lucasfarrell/wavecrest-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if branch := middleware.BranchIDFromContext(r.Context()); branch != "" {
			payload["branch_id"] = branch
		}
		if guide := middleware.GuideIDFromContext(r.Context()); guide != "" {
			payload["guide_id"] = guide
		}
		responses.WriteSuccess(w, payload)
	}
}
