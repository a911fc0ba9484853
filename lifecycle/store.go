package lifecycle

import (
	"context"
	"time"

	"gatepass/models"
)

// Store is the record-store contract the engine and the overdue sweeper run
// against. One instance backs the visitors collection and one the
// appointments collection; both hold the same document shape.
//
// Implementations must return KindNotFound errors for unknown ids and map
// duplicate-key inserts on the active-visit index to KindDuplicateActive.
type Store interface {
	Insert(ctx context.Context, v *models.Visit) error
	FindByID(ctx context.Context, id string) (*models.Visit, error)
	FindByContact(ctx context.Context, contact string) (*models.Visit, error)

	// FindActive returns the visit for the contact with no timeOut yet,
	// or a KindNotFound error.
	FindActive(ctx context.Context, contact string) (*models.Visit, error)

	// CountInWindow counts records for the contact whose effective day
	// (scheduledDate when set, otherwise createdAt) falls in [from, to).
	CountInWindow(ctx context.Context, contact string, from, to time.Time) (int64, error)

	// Update applies the set fields of upd to the record with the given id.
	Update(ctx context.Context, id string, upd models.VisitUpdate) error

	// UpdateByContact applies upd to the record matching the contact
	// number. Used for linked-record sync.
	UpdateByContact(ctx context.Context, contact string, upd models.VisitUpdate) error

	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Visit, error)

	// OverdueCandidates returns records processed at or before cutoff that
	// are still inside, have an email address, and have not been notified.
	OverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.Visit, error)

	// ClaimOverdueNotice atomically flips overdueEmailSent false to true
	// and reports whether this caller won the claim. Losing the claim is
	// not an error; it means another sweep already owns the send.
	ClaimOverdueNotice(ctx context.Context, id string) (bool, error)

	// ReleaseOverdueNotice undoes a claim after a failed send so the next
	// sweep retries.
	ReleaseOverdueNotice(ctx context.Context, id string) error
}
