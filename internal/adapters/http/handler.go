package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bilalafzal6349/ssc-system/internal/application"
	"github.com/bilalafzal6349/ssc-system/internal/contracts"
	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

type Handler struct{ service *application.Service }

func NewHandler(service *application.Service) *Handler { return &Handler{service: service} }

func (h *Handler) submitContribution(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.SubmitContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	contribution, err := h.service.SubmitContribution(r.Context(), actor, application.SubmitContributionInput{
		RepositoryID: req.RepositoryID,
		Code:         req.Code,
		Description:  req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "contribution submitted", contribution)
}

func (h *Handler) listContributions(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	out, err := h.service.ListContributions(r.Context(), actor, r.URL.Query().Get("author"), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"items":      out.Items,
		"pagination": contracts.Pagination{Limit: limit, Offset: offset, Total: out.Total},
	})
}

func (h *Handler) getContribution(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	contribution, err := h.service.GetContribution(r.Context(), actor, chi.URLParam(r, "contribution_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", contribution)
}

func (h *Handler) validateContribution(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.ValidateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	contribution, newScore, err := h.service.ValidateContribution(r.Context(), actor, application.ValidateContributionInput{
		ContributionID: chi.URLParam(r, "contribution_id"),
		Status:         req.Status,
		Quality:        req.Feedback.Quality,
		Compliance:     req.Feedback.Compliance,
		Reason:         req.Feedback.Reason,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contribution validated", map[string]any{
		"contribution":    contribution,
		"author_score":    newScore,
		"contribution_id": contribution.ID,
	})
}

func (h *Handler) flagContribution(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.FlagContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	contribution, err := h.service.FlagContribution(r.Context(), actor, chi.URLParam(r, "contribution_id"), req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "contribution flagged", contribution)
}

func (h *Handler) listCommunities(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	communities, err := h.service.ListCommunities(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", communities)
}

func (h *Handler) joinCommunity(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.JoinCommunityRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
			return
		}
	}
	var credentials *domain.Credentials
	if req.Credentials != nil {
		credentials = &domain.Credentials{
			PreTrust:        req.Credentials.PreTrust,
			LegalAgreements: req.Credentials.LegalAgreements,
			CommunityType:   req.Credentials.CommunityType,
			Capabilities:    req.Credentials.Capabilities,
		}
	}
	result, err := h.service.JoinCommunity(r.Context(), actor, chi.URLParam(r, "community_id"), credentials)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if !result.Joined {
		status = http.StatusAccepted
	}
	writeSuccess(w, status, result.Message, result)
}

func (h *Handler) voteOnUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	vote, err := h.service.VoteOnUser(r.Context(), actor, chi.URLParam(r, "user_id"), req.Vote, req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "vote recorded", vote)
}

func (h *Handler) applyPenalty(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.PenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	newScore, err := h.service.ApplyPenalty(r.Context(), actor, chi.URLParam(r, "user_id"), req.Penalty, req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "penalty applied", map[string]any{"user_id": chi.URLParam(r, "user_id"), "trust_score": newScore})
}

func (h *Handler) getTrustProfile(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	profile, err := h.service.GetTrustProfile(r.Context(), actor, chi.URLParam(r, "user_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", profile)
}

func (h *Handler) initializeTrust(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.InitializeTrustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	userID := chi.URLParam(r, "user_id")
	score, err := h.service.InitializeTrust(r.Context(), actor, application.InitializeTrustInput{
		UserID:          userID,
		PreTrust:        req.PreTrust,
		LegalAgreements: req.LegalAgreements,
		CommunityType:   req.CommunityType,
		Capabilities:    req.Capabilities,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "trust initialized", map[string]any{"user_id": userID, "trust_score": score})
}

func (h *Handler) ledgerLog(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	receipts, err := h.service.FetchLedgerLog(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", contracts.LedgerLogResponse{Transactions: receipts})
}
