package claims

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/warrantydesk/warrantydesk/internal/database"
)

// RouteOutcome records what RouteForApproval did with a claim
type RouteOutcome string

const (
	RouteNotified       RouteOutcome = "notified"
	RouteNoApproverRole RouteOutcome = "no_approver_role"
	RouteNoApprovers    RouteOutcome = "no_approvers"
	RouteNoRecipients   RouteOutcome = "no_recipients"
	RouteFailed         RouteOutcome = "failed"
)

// RouterOptions controls who gets a copy of routed notifications
type RouterOptions struct {
	NotifyCustomer bool
	NotifyCreator  bool
}

// Router sends newly created claims to the users holding the approver role
// of the claim's category
type Router struct {
	categories CategoryDirectory
	users      ApproverDirectory
	notifier   Notifier
	opts       RouterOptions
}

// NewRouter creates an approval router
func NewRouter(categories CategoryDirectory, users ApproverDirectory, notifier Notifier, opts RouterOptions) *Router {
	return &Router{
		categories: categories,
		users:      users,
		notifier:   notifier,
		opts:       opts,
	}
}

// RouteForApproval notifies the approvers of a newly created claim. It never
// fails the caller: lookup and delivery problems are logged and reported
// through the returned outcome.
func (r *Router) RouteForApproval(ctx context.Context, claim *database.Claim, items []database.ClaimItem) RouteOutcome {
	categoryID := claim.CategoryID
	if categoryID == 0 && len(items) > 0 {
		categoryID = items[0].CategoryID
	}

	category, err := r.categories.GetCategory(ctx, categoryID)
	if err != nil {
		log.Printf("Router: claim %s: failed to resolve category %d: %v", claim.ClaimNumber, categoryID, err)
		return RouteFailed
	}
	if category.Approver.IsZero() {
		return RouteNoApproverRole
	}

	approvers, err := r.users.FindActiveUsersByRole(ctx, category.Approver)
	if err != nil {
		log.Printf("Router: claim %s: failed to look up approvers for role %q: %v", claim.ClaimNumber, category.Approver, err)
		return RouteFailed
	}
	if len(approvers) == 0 {
		log.Printf("Router: claim %s: no active approvers hold role %q", claim.ClaimNumber, category.Approver)
		return RouteNoApprovers
	}

	recipients := make([]string, 0, len(approvers))
	seen := make(map[string]bool, len(approvers))
	for _, u := range approvers {
		email := strings.TrimSpace(u.Email)
		if email == "" {
			log.Printf("Router: claim %s: approver %d (%s) has no email, skipping", claim.ClaimNumber, u.ID, u.Name)
			continue
		}
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true
		recipients = append(recipients, email)
	}
	if len(recipients) == 0 {
		log.Printf("Router: claim %s: no approver for role %q has an email address", claim.ClaimNumber, category.Approver)
		return RouteNoRecipients
	}

	n := &ClaimNotification{
		Claim:          *claim,
		Items:          r.joinCategories(ctx, items, category),
		Recipients:     recipients,
		ApproverRole:   category.Approver,
		NotifyCustomer: r.opts.NotifyCustomer,
		NotifyCreator:  r.opts.NotifyCreator,
	}
	if creator, err := r.users.GetUser(ctx, claim.CreatedBy); err == nil {
		n.CreatorName = creator.DisplayName()
		n.CreatorEmail = creator.Email
	} else {
		log.Printf("Router: claim %s: could not resolve creator %d: %v", claim.ClaimNumber, claim.CreatedBy, err)
	}

	if err := r.notifier.SendClaimNotification(ctx, n); err != nil {
		log.Printf("Router: %v", fmt.Errorf("%w: claim %s to %v: %v", ErrNotification, claim.ClaimNumber, recipients, err))
		return RouteFailed
	}

	log.Printf("Router: claim %s routed to role %q (%d recipients)", claim.ClaimNumber, category.Approver, len(recipients))
	return RouteNotified
}

// joinCategories attaches category names to items, reusing the already
// resolved category where ids match
func (r *Router) joinCategories(ctx context.Context, items []database.ClaimItem, known *database.Category) []NotificationItem {
	out := make([]NotificationItem, 0, len(items))
	for _, item := range items {
		ni := NotificationItem{ClaimItem: item}
		if item.CategoryID == known.ID {
			ni.CategoryName = known.Name
		} else if c, err := r.categories.GetCategory(ctx, item.CategoryID); err == nil {
			ni.CategoryName = c.Name
		}
		out = append(out, ni)
	}
	return out
}
