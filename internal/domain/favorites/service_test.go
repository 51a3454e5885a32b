package favorites_test

import (
	"context"
	"fmt"
	"testing"

	"openmat-france/backend/internal/domain/favorites"
	"openmat-france/backend/internal/domain/openmat"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byUser map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byUser: map[string][]string{}}
}

func (f *fakeStore) Add(_ context.Context, uid, id string) error {
	for _, existing := range f.byUser[uid] {
		if existing == id {
			return nil
		}
	}
	f.byUser[uid] = append(f.byUser[uid], id)
	return nil
}

func (f *fakeStore) Remove(_ context.Context, uid, id string) error {
	out := f.byUser[uid][:0]
	for _, existing := range f.byUser[uid] {
		if existing != id {
			out = append(out, existing)
		}
	}
	f.byUser[uid] = out
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, uid string) ([]string, error) {
	return f.byUser[uid], nil
}

type fakeListings struct {
	mats map[string]openmat.OpenMat
}

func (f *fakeListings) Get(_ context.Context, id string) (*openmat.OpenMat, error) {
	m, ok := f.mats[id]
	if !ok {
		return nil, fmt.Errorf("%w: open mat %s", openmat.ErrNotFound, id)
	}
	return &m, nil
}

func newService(store favorites.Store, listings favorites.Listings) *favorites.Service {
	return favorites.NewService(store, listings, zerolog.Nop())
}

func TestAddIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeListings{mats: map[string]openmat.OpenMat{"1": {ID: "1"}}})

	require.NoError(t, svc.Add(context.Background(), "u1", "1"))
	require.NoError(t, svc.Add(context.Background(), "u1", "1"))
	assert.Equal(t, []string{"1"}, store.byUser["u1"])
}

func TestAddUnknownListingIsNotFound(t *testing.T) {
	svc := newService(newFakeStore(), &fakeListings{mats: map[string]openmat.OpenMat{}})
	err := svc.Add(context.Background(), "u1", "ghost")
	assert.ErrorIs(t, err, openmat.ErrNotFound)
}

func TestRemoveAbsentFavoriteIsNoError(t *testing.T) {
	svc := newService(newFakeStore(), &fakeListings{})
	assert.NoError(t, svc.Remove(context.Background(), "u1", "never-added"))
}

func TestListResolvesListingsAndSkipsDangling(t *testing.T) {
	store := newFakeStore()
	listings := &fakeListings{mats: map[string]openmat.OpenMat{
		"1": {ID: "1", ClubName: "Gracie Paris"},
	}}
	svc := newService(store, listings)

	require.NoError(t, svc.Add(context.Background(), "u1", "1"))
	// Simulate a favorite whose listing disappeared upstream.
	store.byUser["u1"] = append(store.byUser["u1"], "gone")

	out, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Gracie Paris", out[0].ClubName)
}
