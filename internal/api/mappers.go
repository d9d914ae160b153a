package api

import (
	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// ClaimToListItem converts a database Claim to its list representation.
// sla may be nil when it was not computed.
func ClaimToListItem(c database.Claim, sla *claims.SLAResult) ClaimListItem {
	return ClaimListItem{
		ID:            c.ID,
		ClaimNumber:   c.ClaimNumber,
		OrderID:       c.OrderID,
		CustomerName:  c.CustomerName,
		CustomerEmail: c.CustomerEmail,
		CategoryID:    c.CategoryID,
		Status:        c.Status,
		StatusLabel:   c.Status.Label(),
		AssignedTo:    c.AssignedTo,
		CreatedBy:     c.CreatedBy,
		SLA:           sla,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ClaimToDetail converts a claim and its children to the detail representation.
// Nil slices become empty arrays in JSON.
func ClaimToDetail(c database.Claim, category *database.Category, sla *claims.SLAResult, items []database.ClaimItem, notes []database.ClaimNote, media []database.ClaimMedia) ClaimDetail {
	if items == nil {
		items = []database.ClaimItem{}
	}
	if notes == nil {
		notes = []database.ClaimNote{}
	}
	if media == nil {
		media = []database.ClaimMedia{}
	}
	return ClaimDetail{
		ClaimListItem: ClaimToListItem(c, sla),
		CustomerPhone: c.CustomerPhone,
		DeliveryDate:  c.DeliveryDate,
		Category:      category,
		Items:         items,
		Notes:         notes,
		Media:         media,
	}
}

// UserToInfo converts a database User to its public fields.
func UserToInfo(u database.User) UserInfo {
	return UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ApproverRole: u.ApproverRole,
	}
}
