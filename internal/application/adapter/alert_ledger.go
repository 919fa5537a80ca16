// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// AlertLedger remembers which budget alerts were already sent.
type AlertLedger interface {
	// MarkSent records the alert for (ownerID, period). It returns false when
	// the alert had already been recorded.
	MarkSent(ctx context.Context, ownerID, period string) (bool, error)

	// Forget removes a record so the alert can be sent again.
	Forget(ctx context.Context, ownerID, period string) error
}
