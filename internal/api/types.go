package api

import (
	"time"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// ========== Auth Types ==========

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the response body for POST /auth/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo is the public part of a staff account.
type UserInfo struct {
	ID           uint                  `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	ApproverRole database.ApproverRole `json:"approver_role,omitempty"`
}

// ========== Claim Types ==========

// SubmitClaimRequest is the request body for POST /api/claims.
// Header fields are checked by the intake service, which reports item errors
// with their index.
type SubmitClaimRequest struct {
	claims.ClaimHeader
	Items []claims.ItemInput `json:"items"`
}

// SubmitClaimResponse is the response body for POST /api/claims.
type SubmitClaimResponse struct {
	ClaimIDs []uint                `json:"claim_ids"`
	Claims   []ClaimListItem       `json:"claims"`
	Routing  []claims.RouteOutcome `json:"routing,omitempty"`
}

// UpdateStatusRequest is the request body for POST /api/claims/{id}/status.
// Status is validated by the lifecycle so the error can name the current status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note" validate:"max=4000"`
}

// UpdateStatusResponse is the response body for POST /api/claims/{id}/status.
type UpdateStatusResponse struct {
	Claim     ClaimListItem        `json:"claim"`
	OldStatus database.ClaimStatus `json:"old_status"`
	Changed   bool                 `json:"changed"`
	Note      *database.ClaimNote  `json:"note,omitempty"`
}

// AddNoteRequest is the request body for POST /api/claims/{id}/notes.
type AddNoteRequest struct {
	Note string `json:"note" validate:"required,max=4000"`
}

// AssignRequest is the request body for POST /api/claims/{id}/assign.
// A null assignee_id unassigns the claim.
type AssignRequest struct {
	AssigneeID *uint  `json:"assignee_id"`
	Note       string `json:"note" validate:"max=4000"`
}

// ========== Pagination Types ==========

// PaginationMeta contains pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PaginatedResponse wraps a list response with pagination metadata.
type PaginatedResponse struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// ========== Mapper Output Types ==========

// ClaimListItem is a claim header with its SLA classification, without
// items and notes.
type ClaimListItem struct {
	ID            uint                 `json:"id"`
	ClaimNumber   string               `json:"claim_number"`
	OrderID       string               `json:"order_id"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	CategoryID    uint                 `json:"category_id"`
	Status        database.ClaimStatus `json:"status"`
	StatusLabel   string               `json:"status_label"`
	AssignedTo    *uint                `json:"assigned_to,omitempty"`
	CreatedBy     uint                 `json:"created_by"`
	SLA           *claims.SLAResult    `json:"sla,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ClaimDetail is a claim with everything attached to it.
type ClaimDetail struct {
	ClaimListItem
	CustomerPhone string                `json:"customer_phone,omitempty"`
	DeliveryDate  *time.Time            `json:"delivery_date,omitempty"`
	Category      *database.Category    `json:"category,omitempty"`
	Items         []database.ClaimItem  `json:"items"`
	Notes         []database.ClaimNote  `json:"notes"`
	Media         []database.ClaimMedia `json:"media"`
}
