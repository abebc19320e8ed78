// Package port defines the interfaces between the application services and
// the infrastructure adapters (storage, delivery channels, report sink).
package port

import (
	"context"
	"time"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// InvoiceRepository reads the external accounts-receivable ledger. Filtering
// is pushed down server-side from the Criteria value; implementations must
// fully materialize the result set before returning, so no two logical
// queries ever interleave on one physical connection.
type InvoiceRepository interface {
	// Query returns the invoices covered by the criteria. now anchors the
	// overdue-only predicate.
	Query(ctx context.Context, criteria entity.Criteria, now time.Time) ([]entity.Invoice, error)
}

// ClientRepository reads the client store. Lookups tolerate misses: absent
// identifiers are simply omitted from the returned map.
type ClientRepository interface {
	// GetByIDs resolves normalized client identifiers (terceros without
	// leading zeros) to client records.
	GetByIDs(ctx context.Context, ids []string) (map[string]entity.Client, error)
}

// ActionRepository reads and updates follow-up actions. The notifier only
// ever marks actions sent; creation and deletion belong to the CRUD surface.
type ActionRepository interface {
	// ListDue returns actions with a non-nil reminder timestamp at or before
	// cutoff that have not been marked sent.
	ListDue(ctx context.Context, cutoff time.Time) ([]entity.FollowUpAction, error)
	// MarkSent flips the sent flag and records the send timestamp.
	MarkSent(ctx context.Context, id int64, at time.Time) error
}
