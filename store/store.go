// Package store persists cloud resources, accounts, and the diff audit log.
// The reconciler only depends on the Store contract; the bbolt implementation
// is one engine behind it.
package store

import (
	"errors"

	"github.com/jimmwu/stratus/types"
)

// ErrNotFound is returned when no row matches the requested key.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateKey is returned by Insert when the natural key already exists.
// The reconciler treats it as a concurrent-insert race and retries as an
// update.
var ErrDuplicateKey = errors.New("store: duplicate natural key")

// ResourceReader queries stored resources.
type ResourceReader interface {
	// FindByNaturalKey looks up one resource by its dedup key.
	FindByNaturalKey(accountPK, resourceType, resourceID string) (*types.CloudResource, error)
	ListByAccountType(accountPK, resourceType string) ([]*types.CloudResource, error)
}

// ResourceWriter mutates stored resources.
type ResourceWriter interface {
	// Insert adds a new resource. The natural key must not exist yet.
	Insert(res *types.CloudResource) error
	// Update replaces an existing resource row in place.
	Update(res *types.CloudResource) error
}

// DiffLogger appends to the change audit trail.
type DiffLogger interface {
	AppendDiffLog(entry *types.DiffLogEntry) error
	ListDiffs(resourceID string, limit int) ([]*types.DiffLogEntry, error)
}

// AccountStore manages cloud account rows.
type AccountStore interface {
	// EnsureAccount returns the account for (provider, accountID), creating
	// it on first observation.
	EnsureAccount(provider, accountID, name string) (*types.CloudAccount, error)
	ListAccounts() ([]*types.CloudAccount, error)
}

// Store is the full persistence contract the pipeline and its side jobs use.
type Store interface {
	AccountStore
	ResourceReader
	ResourceWriter
	DiffLogger

	AppendRelationship(rel *types.ResourceRelationship) error
	InsertResolved(rec *types.ResolvedDNSRecord) error

	Close() error
}
