package notify

import (
	"context"
	"errors"

	"github.com/warrantydesk/warrantydesk/internal/claims"
)

// Multi sends every notification through each configured transport. One
// transport failing does not stop the others.
type Multi struct {
	claimNotifiers  []claims.Notifier
	statusNotifiers []claims.StatusNotifier
}

// NewMulti creates an empty fan-out notifier
func NewMulti() *Multi {
	return &Multi{}
}

// Add registers n. Transports that also implement claims.StatusNotifier
// receive status changes too.
func (m *Multi) Add(n claims.Notifier) {
	m.claimNotifiers = append(m.claimNotifiers, n)
	if sn, ok := n.(claims.StatusNotifier); ok {
		m.statusNotifiers = append(m.statusNotifiers, sn)
	}
}

// Len returns the number of claim transports
func (m *Multi) Len() int {
	return len(m.claimNotifiers)
}

// SendClaimNotification implements claims.Notifier
func (m *Multi) SendClaimNotification(ctx context.Context, n *claims.ClaimNotification) error {
	var errs []error
	for _, t := range m.claimNotifiers {
		if err := t.SendClaimNotification(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendStatusChange implements claims.StatusNotifier
func (m *Multi) SendStatusChange(ctx context.Context, n *claims.StatusChangeNotification) error {
	var errs []error
	for _, t := range m.statusNotifiers {
		if err := t.SendStatusChange(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
