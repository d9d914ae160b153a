package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

// Claim list paging. per_page above the cap is clamped, not rejected.
const (
	DefaultClaimsPerPage = 50
	MaxClaimsPerPage     = 200
)

// ClaimListQuery is the parsed query string of GET /api/claims
type ClaimListQuery struct {
	Status  database.ClaimStatus // empty lists every status
	OrderID string
	Page    int
	PerPage int
}

// ParseClaimListQuery reads status, order_id, page and per_page. Page values
// that are missing or not positive fall back to the defaults; an unknown
// status is returned as a field error.
func ParseClaimListQuery(r *http.Request) (ClaimListQuery, map[string]string) {
	values := r.URL.Query()
	q := ClaimListQuery{
		OrderID: strings.TrimSpace(values.Get("order_id")),
		Page:    positiveInt(values.Get("page"), 1),
		PerPage: min(positiveInt(values.Get("per_page"), DefaultClaimsPerPage), MaxClaimsPerPage),
	}

	if raw := values.Get("status"); raw != "" {
		status, err := database.ParseClaimStatus(raw)
		if err != nil {
			return q, map[string]string{"status": "must be one of: " + statusNames()}
		}
		q.Status = status
	}
	return q, nil
}

// Offset is the number of rows before the requested page
func (q ClaimListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// TotalPages is the page count for total matching claims
func (q ClaimListQuery) TotalPages(total int64) int {
	if q.PerPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
}

// NewPaginatedResponse wraps one page of claims with its metadata
func NewPaginatedResponse(data interface{}, q ClaimListQuery, total int64) PaginatedResponse {
	return PaginatedResponse{
		Data: data,
		Pagination: PaginationMeta{
			Page:       q.Page,
			PerPage:    q.PerPage,
			Total:      total,
			TotalPages: q.TotalPages(total),
		},
	}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func statusNames() string {
	statuses := database.ValidClaimStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
