package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmwu/stratus/store"
	"github.com/jimmwu/stratus/types"
)

// fakeStore is an in-memory Store with scriptable insert behavior.
type fakeStore struct {
	accounts  map[string]*types.CloudAccount
	resources map[string]*types.CloudResource
	diffs     []*types.DiffLogEntry

	// insertRace makes the first Insert lose to a simulated concurrent
	// writer: the competing row is stored and ErrDuplicateKey returned.
	insertRace    *types.CloudResource
	insertedCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:  make(map[string]*types.CloudAccount),
		resources: make(map[string]*types.CloudResource),
	}
}

func (f *fakeStore) key(accountPK, resourceType, resourceID string) string {
	return accountPK + "|" + resourceType + "|" + resourceID
}

func (f *fakeStore) EnsureAccount(provider, accountID, name string) (*types.CloudAccount, error) {
	k := provider + "|" + accountID
	if acct, ok := f.accounts[k]; ok {
		return acct, nil
	}
	acct := &types.CloudAccount{ID: "pk-" + k, Provider: provider, AccountID: accountID, Name: name}
	f.accounts[k] = acct
	return acct, nil
}

func (f *fakeStore) ListAccounts() ([]*types.CloudAccount, error) {
	var out []*types.CloudAccount
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) FindByNaturalKey(accountPK, resourceType, resourceID string) (*types.CloudResource, error) {
	res, ok := f.resources[f.key(accountPK, resourceType, resourceID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return res, nil
}

func (f *fakeStore) ListByAccountType(accountPK, resourceType string) ([]*types.CloudResource, error) {
	var out []*types.CloudResource
	for _, r := range f.resources {
		if r.CloudAccountID == accountPK && r.ResourceType == resourceType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(res *types.CloudResource) error {
	k := f.key(res.CloudAccountID, res.ResourceType, res.ResourceID)
	if f.insertRace != nil {
		f.resources[k] = f.insertRace
		f.insertRace = nil
		return store.ErrDuplicateKey
	}
	if _, ok := f.resources[k]; ok {
		return store.ErrDuplicateKey
	}
	f.resources[k] = res
	f.insertedCount++
	return nil
}

func (f *fakeStore) Update(res *types.CloudResource) error {
	k := f.key(res.CloudAccountID, res.ResourceType, res.ResourceID)
	if _, ok := f.resources[k]; !ok {
		return store.ErrNotFound
	}
	f.resources[k] = res
	return nil
}

func (f *fakeStore) AppendDiffLog(entry *types.DiffLogEntry) error {
	entry.ID = int64(len(f.diffs) + 1)
	f.diffs = append(f.diffs, entry)
	return nil
}

func (f *fakeStore) ListDiffs(resourceID string, limit int) ([]*types.DiffLogEntry, error) {
	return f.diffs, nil
}

func (f *fakeStore) AppendRelationship(rel *types.ResourceRelationship) error { return nil }
func (f *fakeStore) InsertResolved(rec *types.ResolvedDNSRecord) error        { return nil }
func (f *fakeStore) Close() error                                             { return nil }

func testItem() *types.Item {
	return &types.Item{
		Provider:     "aws",
		AccountID:    "123456789012",
		ResourceType: "dns_record",
		ResourceID:   "example.com|web.example.com|A",
		Name:         "web.example.com",
		Status:       "active",
		Zone:         "Z123",
		DomainName:   "example.com",
		Tags:         map[string]string{"env": "prod"},
		ResourceMetadata: map[string]any{
			"extra": map[string]any{"value": "192.0.2.1"},
			"tags":  map[string]string{"env": "prod"},
		},
	}
}

func TestReconcileCreates(t *testing.T) {
	f := newFakeStore()
	r := New(f)

	outcome, err := r.Reconcile(context.Background(), testItem())

	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Len(t, f.resources, 1)
	assert.Len(t, f.accounts, 1)
	assert.Empty(t, f.diffs)
}

func TestReconcileUnchangedIsIdempotent(t *testing.T) {
	f := newFakeStore()
	r := New(f)

	firstAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return firstAt }
	_, err := r.Reconcile(context.Background(), testItem())
	require.NoError(t, err)

	r.now = func() time.Time { return firstAt.Add(time.Hour) }
	outcome, err := r.Reconcile(context.Background(), testItem())

	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)
	assert.Empty(t, f.diffs)

	// No writes on an unchanged resource: the observation timestamp stays.
	stored, err := f.FindByNaturalKey(accountPK(f), "dns_record", testItem().ResourceID)
	require.NoError(t, err)
	assert.Equal(t, firstAt, stored.FetchedAt)
}

func TestReconcileUpdateAppendsDiffAndApplies(t *testing.T) {
	f := newFakeStore()
	r := New(f)

	_, err := r.Reconcile(context.Background(), testItem())
	require.NoError(t, err)
	originalPK := f.resources[onlyKey(f)].ID

	changed := testItem()
	changed.Status = "paused"
	outcome, err := r.Reconcile(context.Background(), changed)

	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)

	require.Len(t, f.diffs, 1)
	entry := f.diffs[0]
	assert.Equal(t, "aws", entry.Provider)
	assert.Equal(t, changed.ResourceID, entry.ResourceID)
	assert.Equal(t, types.FieldChange{Old: "active", New: "paused"}, entry.ChangedFields["status"])
	assert.NotEmpty(t, entry.RawBefore)
	assert.NotEmpty(t, entry.RawAfter)
	assert.False(t, entry.ChangedAt.IsZero())

	stored := f.resources[onlyKey(f)]
	assert.Equal(t, "paused", stored.Status)
	assert.Equal(t, originalPK, stored.ID, "primary key must stay stable across updates")
}

func TestReconcileInsertRaceRetriesAsUpdate(t *testing.T) {
	f := newFakeStore()
	r := New(f)

	competing := testItem()
	competingRes := &types.CloudResource{
		ID:               "competing-pk",
		CloudAccountID:   "pk-aws|123456789012",
		Provider:         "aws",
		ResourceType:     competing.ResourceType,
		ResourceID:       competing.ResourceID,
		Name:             competing.Name,
		Status:           "pending",
		Zone:             competing.Zone,
		DomainName:       competing.DomainName,
		Tags:             competing.Tags,
		ResourceMetadata: competing.ResourceMetadata,
	}
	f.insertRace = competingRes

	outcome, err := r.Reconcile(context.Background(), testItem())

	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)
	require.Len(t, f.diffs, 1)
	assert.Equal(t, types.FieldChange{Old: "pending", New: "active"}, f.diffs[0].ChangedFields["status"])

	stored := f.resources[onlyKey(f)]
	assert.Equal(t, "competing-pk", stored.ID)
	assert.Equal(t, "active", stored.Status)
}

func TestReconcileEmptyResourceID(t *testing.T) {
	f := newFakeStore()
	r := New(f)

	item := testItem()
	item.ResourceID = ""
	_, err := r.Reconcile(context.Background(), item)

	assert.Error(t, err)
	assert.Empty(t, f.resources)
}

func TestReconcileCancelledContext(t *testing.T) {
	f := newFakeStore()
	r := New(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Reconcile(ctx, testItem())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.resources)
}

func accountPK(f *fakeStore) string {
	for _, a := range f.accounts {
		return a.ID
	}
	return ""
}

func onlyKey(f *fakeStore) string {
	for k := range f.resources {
		return k
	}
	return ""
}
