package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/jimmwu/stratus/types"
)

// Bucket names in bbolt.
var (
	bucketAccounts      = []byte("accounts")
	bucketResources     = []byte("resources")
	bucketDiffLog       = []byte("diff_log")
	bucketRelationships = []byte("relationships")
	bucketResolved      = []byte("resolved_dns")
	bucketMeta          = []byte("meta")
)

const schemaVersion = "1"

// BoltStore implements Store on a single bbolt file. Each write runs in its
// own update transaction, so the reconciler's read-compare-write is atomic
// per natural key. Key uniqueness is a property of the bucket keying itself:
// the backstop constraint on (account, type, resource id).
type BoltStore struct {
	mu sync.RWMutex

	db *bbolt.DB

	// In-memory natural-key index for ordered prefix listing.
	index *btree.BTreeG[string]
}

// Open creates or opens the inventory database in dir.
func Open(dir string) (*BoltStore, error) {
	dbPath := filepath.Join(dir, "stratus.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{
			bucketAccounts, bucketResources, bucketDiffLog,
			bucketRelationships, bucketResolved, bucketMeta,
		} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if meta.Get([]byte("schema_version")) == nil {
			return meta.Put([]byte("schema_version"), []byte(schemaVersion))
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:    db,
		index: btree.NewG[string](32, func(a, b string) bool { return a < b }),
	}
	if err := s.rebuildIndex(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// naturalKey encodes the dedup key. Account PKs are opaque UUIDs and resource
// types carry no separator, so the prefix scan below stays unambiguous.
func naturalKey(accountPK, resourceType, resourceID string) []byte {
	return []byte(accountPK + "|" + resourceType + "|" + resourceID)
}

// EnsureAccount returns the account row for (provider, accountID), creating
// it on first observation.
func (s *BoltStore) EnsureAccount(provider, accountID, name string) (*types.CloudAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := []byte(provider + "|" + accountID)
	var account types.CloudAccount

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAccounts)
		if data := bucket.Get(key); data != nil {
			return json.Unmarshal(data, &account)
		}

		now := time.Now().UTC()
		account = types.CloudAccount{
			ID:        uuid.NewString(),
			Name:      name,
			Provider:  provider,
			AccountID: accountID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		data, err := json.Marshal(account)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return nil, fmt.Errorf("ensure account %s/%s: %w", provider, accountID, err)
	}
	return &account, nil
}

// ListAccounts returns all known account rows.
func (s *BoltStore) ListAccounts() ([]*types.CloudAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accounts []*types.CloudAccount
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccounts).ForEach(func(_, v []byte) error {
			var account types.CloudAccount
			if err := json.Unmarshal(v, &account); err != nil {
				return err
			}
			accounts = append(accounts, &account)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindByNaturalKey looks up one stored resource.
func (s *BoltStore) FindByNaturalKey(accountPK, resourceType, resourceID string) (*types.CloudResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res *types.CloudResource
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResources).Get(naturalKey(accountPK, resourceType, resourceID))
		if data == nil {
			return ErrNotFound
		}
		res = &types.CloudResource{}
		return json.Unmarshal(data, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Insert adds a new resource row. Returns ErrDuplicateKey when the natural
// key is already present.
func (s *BoltStore) Insert(res *types.CloudResource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := naturalKey(res.CloudAccountID, res.ResourceType, res.ResourceID)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketResources)
		if bucket.Get(key) != nil {
			return ErrDuplicateKey
		}
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return err
	}

	s.index.ReplaceOrInsert(string(key))
	return nil
}

// Update replaces an existing resource row.
func (s *BoltStore) Update(res *types.CloudResource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := naturalKey(res.CloudAccountID, res.ResourceType, res.ResourceID)
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketResources)
		if bucket.Get(key) == nil {
			return ErrNotFound
		}
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}

// ListByAccountType returns all resources for one (account, type) pair in
// natural-key order.
func (s *BoltStore) ListByAccountType(accountPK, resourceType string) ([]*types.CloudResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := accountPK + "|" + resourceType + "|"
	var keys []string
	s.index.AscendGreaterOrEqual(prefix, func(key string) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		keys = append(keys, key)
		return true
	})

	var results []*types.CloudResource
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketResources)
		for _, key := range keys {
			data := bucket.Get([]byte(key))
			if data == nil {
				continue
			}
			var res types.CloudResource
			if err := json.Unmarshal(data, &res); err != nil {
				return err
			}
			results = append(results, &res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AppendDiffLog appends one audit entry. Entries are keyed by a monotonic
// sequence so iteration order is chronological.
func (s *BoltStore) AppendDiffLog(entry *types.DiffLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDiffLog)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = int64(seq) // #nosec G115 -- sequence stays far below int64 max
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return bucket.Put(sequenceKey(seq), data)
	})
}

// ListDiffs returns the most recent diff entries, newest first, optionally
// filtered by resource id. limit <= 0 means no limit.
func (s *BoltStore) ListDiffs(resourceID string, limit int) ([]*types.DiffLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*types.DiffLogEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketDiffLog).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry types.DiffLogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if resourceID != "" && entry.ResourceID != resourceID {
				continue
			}
			entries = append(entries, &entry)
			if limit > 0 && len(entries) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendRelationship appends one tagged edge.
func (s *BoltStore) AppendRelationship(rel *types.ResourceRelationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRelationships)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		rel.ID = int64(seq) // #nosec G115
		data, err := json.Marshal(rel)
		if err != nil {
			return err
		}
		return bucket.Put(sequenceKey(seq), data)
	})
}

// InsertResolved stores one authoritative resolution result.
func (s *BoltStore) InsertResolved(rec *types.ResolvedDNSRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResolved).Put([]byte(rec.ID), data)
	})
}

// rebuildIndex loads all natural keys into the in-memory index on open.
func (s *BoltStore) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResources).ForEach(func(k, _ []byte) error {
			s.index.ReplaceOrInsert(string(k))
			return nil
		})
	})
}

func sequenceKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%016d", seq))
}
