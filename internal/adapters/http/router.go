package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bilalafzal6349/ssc-system/internal/ports"
)

func NewRouter(handler *Handler, verifier ports.TokenVerifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(loggingMiddleware(logger))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ready", nil) })
	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware(verifier))
		r.Post("/contributions", handler.submitContribution)
		r.Get("/contributions", handler.listContributions)
		r.Get("/contributions/{contribution_id}", handler.getContribution)
		r.Post("/contributions/{contribution_id}/validate", handler.validateContribution)
		r.Post("/contributions/{contribution_id}/flags", handler.flagContribution)
		r.Get("/communities", handler.listCommunities)
		r.Post("/communities/{community_id}/join", handler.joinCommunity)
		r.Post("/users/{user_id}/votes", handler.voteOnUser)
		r.Post("/users/{user_id}/penalty", handler.applyPenalty)
		r.Post("/users/{user_id}/trust", handler.initializeTrust)
		r.Get("/users/{user_id}/trust", handler.getTrustProfile)
		r.Get("/trust", handler.getTrustProfile)
		r.Get("/ledger/log", handler.ledgerLog)
	})
	return r
}
