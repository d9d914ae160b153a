package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/warrantydesk/warrantydesk/internal/api"
	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/middleware"
	"github.com/warrantydesk/warrantydesk/internal/store"
)

// ClaimsHandler serves the claim intake and lifecycle endpoints
type ClaimsHandler struct {
	intake    *claims.Intake
	lifecycle *claims.Lifecycle
	store     *store.GormStore
	clock     claims.Clock
}

// NewClaimsHandler creates a new claims handler
func NewClaimsHandler(intake *claims.Intake, lifecycle *claims.Lifecycle, st *store.GormStore, clock claims.Clock) *ClaimsHandler {
	if clock == nil {
		clock = claims.SystemClock{}
	}
	return &ClaimsHandler{
		intake:    intake,
		lifecycle: lifecycle,
		store:     st,
		clock:     clock,
	}
}

// SetupRoutes sets up claim routes
func (h *ClaimsHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/claims", h.handleClaims)
	mux.HandleFunc("GET /api/claims/{id}", h.handleGetClaim)
	mux.HandleFunc("POST /api/claims/{id}/status", h.handleUpdateStatus)
	mux.HandleFunc("POST /api/claims/{id}/notes", h.handleAddNote)
	mux.HandleFunc("POST /api/claims/{id}/assign", h.handleAssign)
	mux.HandleFunc("GET /api/claims/{id}/sla", h.handleGetSLA)

	mux.HandleFunc("GET /api/categories", h.handleListCategories)
}

// handleClaims handles GET/POST /api/claims
func (h *ClaimsHandler) handleClaims(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listClaims(w, r)
	case http.MethodPost:
		h.submitClaim(w, r)
	default:
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ClaimsHandler) submitClaim(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req api.SubmitClaimRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.intake.SubmitClaim(r.Context(), req.ClaimHeader, req.Items, actor)
	if err != nil {
		api.RespondClaimError(w, err, "submit claim")
		return
	}

	categories := make(map[uint]*database.Category)
	resp := api.SubmitClaimResponse{
		ClaimIDs: result.ClaimIDs,
		Claims:   make([]api.ClaimListItem, 0, len(result.Claims)),
		Routing:  result.Routing,
	}
	for i := range result.Claims {
		sla := h.slaFor(r.Context(), &result.Claims[i], categories)
		resp.Claims = append(resp.Claims, api.ClaimToListItem(result.Claims[i], &sla))
	}

	api.RespondJSON(w, http.StatusCreated, resp)
}

func (h *ClaimsHandler) listClaims(w http.ResponseWriter, r *http.Request) {
	q, errs := api.ParseClaimListQuery(r)
	if errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	filter := store.ClaimFilter{Status: q.Status, OrderID: q.OrderID}
	page, total, err := h.store.ListClaims(r.Context(), filter, q.Offset(), q.PerPage)
	if err != nil {
		log.Printf("ClaimsHandler: Failed to list claims: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list claims")
		return
	}

	categories := make(map[uint]*database.Category)
	items := make([]api.ClaimListItem, 0, len(page))
	for i := range page {
		sla := h.slaFor(r.Context(), &page[i], categories)
		items = append(items, api.ClaimToListItem(page[i], &sla))
	}

	api.RespondJSON(w, http.StatusOK, api.NewPaginatedResponse(items, q, total))
}

// handleGetClaim handles GET /api/claims/{id}
func (h *ClaimsHandler) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClaimID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	claim, err := h.store.GetClaim(ctx, id)
	if err != nil {
		api.RespondClaimError(w, err, "get claim")
		return
	}
	category := h.lookupCategory(ctx, claim.CategoryID)

	items, err := h.store.ListItems(ctx, id)
	if err != nil {
		api.RespondClaimError(w, err, "list items")
		return
	}
	notes, err := h.store.ListNotes(ctx, id)
	if err != nil {
		api.RespondClaimError(w, err, "list notes")
		return
	}
	media, err := h.store.ListMedia(ctx, id)
	if err != nil {
		api.RespondClaimError(w, err, "list media")
		return
	}

	sla := claims.ClaimSLA(claim, category, h.clock.Now())
	api.RespondJSON(w, http.StatusOK, api.ClaimToDetail(*claim, category, &sla, items, notes, media))
}

// handleUpdateStatus handles POST /api/claims/{id}/status
func (h *ClaimsHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClaimID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req api.UpdateStatusRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	result, err := h.lifecycle.Transition(r.Context(), id, req.Status, req.Note, actor)
	if err != nil {
		api.RespondClaimError(w, err, "update status")
		return
	}

	sla := h.slaFor(r.Context(), result.Claim, make(map[uint]*database.Category))
	api.RespondJSON(w, http.StatusOK, api.UpdateStatusResponse{
		Claim:     api.ClaimToListItem(*result.Claim, &sla),
		OldStatus: result.OldStatus,
		Changed:   result.Changed,
		Note:      result.Note,
	})
}

// handleAddNote handles POST /api/claims/{id}/notes
func (h *ClaimsHandler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClaimID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req api.AddNoteRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	note, err := h.lifecycle.AddNote(r.Context(), id, req.Note, actor)
	if err != nil {
		api.RespondClaimError(w, err, "add note")
		return
	}
	api.RespondJSON(w, http.StatusCreated, note)
}

// handleAssign handles POST /api/claims/{id}/assign
func (h *ClaimsHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClaimID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req api.AssignRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	claim, err := h.lifecycle.Assign(r.Context(), id, req.AssigneeID, req.Note, actor)
	if err != nil {
		api.RespondClaimError(w, err, "assign claim")
		return
	}

	sla := h.slaFor(r.Context(), claim, make(map[uint]*database.Category))
	api.RespondJSON(w, http.StatusOK, api.ClaimToListItem(*claim, &sla))
}

// handleGetSLA handles GET /api/claims/{id}/sla
func (h *ClaimsHandler) handleGetSLA(w http.ResponseWriter, r *http.Request) {
	id, ok := pathClaimID(w, r)
	if !ok {
		return
	}

	_, sla, err := h.lifecycle.SLAForClaim(r.Context(), id)
	if err != nil {
		api.RespondClaimError(w, err, "get sla")
		return
	}
	api.RespondJSON(w, http.StatusOK, sla)
}

// handleListCategories handles GET /api/categories
func (h *ClaimsHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ClaimsHandler: Failed to list categories: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	api.RespondJSON(w, http.StatusOK, categories)
}

// slaFor computes the SLA of c, caching category lookups across a page
func (h *ClaimsHandler) slaFor(ctx context.Context, c *database.Claim, cache map[uint]*database.Category) claims.SLAResult {
	category, ok := cache[c.CategoryID]
	if !ok {
		category = h.lookupCategory(ctx, c.CategoryID)
		cache[c.CategoryID] = category
	}
	return claims.ClaimSLA(c, category, h.clock.Now())
}

// lookupCategory returns nil for unknown categories so SLA falls back to the default
func (h *ClaimsHandler) lookupCategory(ctx context.Context, id uint) *database.Category {
	category, err := h.store.GetCategory(ctx, id)
	if err != nil {
		if !errors.Is(err, claims.ErrNotFound) {
			log.Printf("ClaimsHandler: Failed to load category %d: %v", id, err)
		}
		return nil
	}
	return category
}

func requireActor(w http.ResponseWriter, r *http.Request) (claims.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		api.RespondError(w, http.StatusUnauthorized, "Not authenticated")
	}
	return actor, ok
}

func pathClaimID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid claim ID")
		return 0, false
	}
	return id, true
}
