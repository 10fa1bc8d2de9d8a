// Package reconcile turns freshly polled canonical items into stored, diffed
// state: insert on first observation, field-level diff plus audit entry on
// change, no-op otherwise.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jimmwu/stratus/store"
	"github.com/jimmwu/stratus/types"
)

// Outcome describes what a reconciliation call did.
type Outcome string

const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

// Reconciler reconciles pipeline items against the store.
type Reconciler struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

// New creates a reconciler backed by the given store.
func New(st store.Store) *Reconciler {
	return &Reconciler{
		store: st,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Reconcile looks up the item's natural key and inserts, updates, or leaves
// the stored row alone. The cloud account row is created lazily on first
// observation of (provider, account id).
func (r *Reconciler) Reconcile(ctx context.Context, item *types.Item) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if item.ResourceID == "" {
		return "", fmt.Errorf("reconcile %s/%s: empty resource id", item.Provider, item.ResourceType)
	}

	account, err := r.store.EnsureAccount(item.Provider, item.AccountID, item.AccountID)
	if err != nil {
		return "", err
	}

	incoming := r.storedFromItem(item, account.ID)

	existing, err := r.store.FindByNaturalKey(account.ID, item.ResourceType, item.ResourceID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return r.insert(incoming)
	case err != nil:
		return "", fmt.Errorf("lookup %s: %w", item.ResourceID, err)
	default:
		return r.update(existing, incoming)
	}
}

// insert writes a brand-new row. A duplicate-key error means another writer
// won the insert race; re-read and retry as an update instead of failing.
func (r *Reconciler) insert(incoming *types.CloudResource) (Outcome, error) {
	err := r.store.Insert(incoming)
	if err == nil {
		return Created, nil
	}
	if !errors.Is(err, store.ErrDuplicateKey) {
		return "", fmt.Errorf("insert %s: %w", incoming.ResourceID, err)
	}

	existing, err := r.store.FindByNaturalKey(incoming.CloudAccountID, incoming.ResourceType, incoming.ResourceID)
	if err != nil {
		return "", fmt.Errorf("re-read after insert race %s: %w", incoming.ResourceID, err)
	}
	return r.update(existing, incoming)
}

// update diffs incoming against existing. On change it appends the audit
// entry and applies the new values in place; otherwise nothing is written.
func (r *Reconciler) update(existing, incoming *types.CloudResource) (Outcome, error) {
	changes := computeDiff(existing, incoming)
	if len(changes) == 0 {
		return Unchanged, nil
	}

	// Keep the opaque primary key stable across updates.
	incoming.ID = existing.ID

	before, _ := json.Marshal(existing)
	after, _ := json.Marshal(incoming)
	entry := &types.DiffLogEntry{
		CloudAccountID: incoming.CloudAccountID,
		Provider:       incoming.Provider,
		Region:         incoming.Region,
		ResourceType:   incoming.ResourceType,
		ResourceID:     incoming.ResourceID,
		ChangedFields:  changes,
		RawBefore:      before,
		RawAfter:       after,
		ChangedAt:      r.now().UTC(),
	}
	if err := r.store.AppendDiffLog(entry); err != nil {
		return "", fmt.Errorf("append diff log %s: %w", incoming.ResourceID, err)
	}
	if err := r.store.Update(incoming); err != nil {
		return "", fmt.Errorf("update %s: %w", incoming.ResourceID, err)
	}
	return Updated, nil
}

// storedFromItem projects the pipeline item onto a stored row with a fresh
// primary key and observation timestamp.
func (r *Reconciler) storedFromItem(item *types.Item, accountPK string) *types.CloudResource {
	tags := item.Tags
	if tags == nil {
		tags = map[string]string{}
	}
	return &types.CloudResource{
		ID:               r.newID(),
		CloudAccountID:   accountPK,
		Provider:         item.Provider,
		ResourceType:     item.ResourceType,
		ResourceID:       item.ResourceID,
		Region:           item.Region,
		Zone:             item.Zone,
		Name:             item.Name,
		Status:           item.Status,
		DomainName:       item.DomainName,
		VPCID:            item.VPCID,
		IPAddresses:      item.IPAddresses,
		Tags:             tags,
		ResourceMetadata: item.ResourceMetadata,
		FetchedAt:        r.now().UTC(),
	}
}
