package service

import (
	"context"
	"errors"
	"testing"

	"placebot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mimics the repository's quota semantics in memory.
type memStore struct {
	nextID int64
	places map[int64][]model.Place
	fail   error
}

func newMemStore() *memStore {
	return &memStore{places: make(map[int64][]model.Place)}
}

func (m *memStore) ListByUser(_ context.Context, userID int64) ([]model.Place, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]model.Place(nil), m.places[userID]...), nil
}

func (m *memStore) SaveWithQuota(_ context.Context, place *model.Place, maxPerUser int) (int64, []int64, error) {
	if m.fail != nil {
		return 0, nil, m.fail
	}
	list := m.places[place.User]
	var evicted []int64
	if maxPerUser > 0 && len(list) >= maxPerUser {
		drop := len(list) - maxPerUser + 1
		for _, p := range list[:drop] {
			evicted = append(evicted, p.ID)
		}
		list = list[drop:]
	}
	m.nextID++
	place.ID = m.nextID
	m.places[place.User] = append(list, *place)
	return place.ID, evicted, nil
}

func (m *memStore) DeleteAllByUser(_ context.Context, userID int64) (int64, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	n := int64(len(m.places[userID]))
	delete(m.places, userID)
	return n, nil
}

func TestSavePopulatesAllFields(t *testing.T) {
	svc := NewPlaceService(newMemStore())
	ctx := context.Background()

	draft := model.DraftPlace{
		Address:   "Coffee corner",
		Latitude:  59.93,
		Longitude: 30.33,
		Image:     "file-id-1",
	}
	place, err := svc.Save(ctx, 42, draft)
	require.NoError(t, err)

	assert.NotZero(t, place.ID)
	assert.EqualValues(t, 42, place.User)
	assert.Equal(t, "Coffee corner", place.Address)
	assert.Equal(t, 59.93, place.Latitude)
	assert.Equal(t, 30.33, place.Longitude)
	assert.Equal(t, "file-id-1", place.Image)
}

func TestSaveEvictsOldestAtQuota(t *testing.T) {
	svc := NewPlaceService(newMemStore())
	ctx := context.Background()

	for i := 0; i < MaxPlacesPerUser; i++ {
		_, err := svc.Save(ctx, 1, model.DraftPlace{Address: "Place", Latitude: 1, Longitude: 1})
		require.NoError(t, err)
	}

	places, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, places, MaxPlacesPerUser)
	first := places[0].ID

	_, err = svc.Save(ctx, 1, model.DraftPlace{Address: "One more", Latitude: 2, Longitude: 2})
	require.NoError(t, err)

	places, err = svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, places, MaxPlacesPerUser)
	assert.NotEqual(t, first, places[0].ID, "oldest place must be gone")
	assert.Equal(t, "One more", places[MaxPlacesPerUser-1].Address)
}

func TestSaveQuotaIsPerUser(t *testing.T) {
	svc := NewPlaceService(newMemStore())
	ctx := context.Background()

	for i := 0; i < MaxPlacesPerUser; i++ {
		_, err := svc.Save(ctx, 1, model.DraftPlace{Address: "A", Latitude: 1, Longitude: 1})
		require.NoError(t, err)
	}
	_, err := svc.Save(ctx, 2, model.DraftPlace{Address: "B", Latitude: 1, Longitude: 1})
	require.NoError(t, err)

	one, err := svc.List(ctx, 1)
	require.NoError(t, err)
	two, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, one, MaxPlacesPerUser)
	assert.Len(t, two, 1)
}

func TestListEmpty(t *testing.T) {
	svc := NewPlaceService(newMemStore())

	places, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestByPosition(t *testing.T) {
	svc := NewPlaceService(newMemStore())
	ctx := context.Background()

	for _, addr := range []string{"first", "second", "third"} {
		_, err := svc.Save(ctx, 5, model.DraftPlace{Address: addr, Latitude: 1, Longitude: 1})
		require.NoError(t, err)
	}

	place, ok, err := svc.ByPosition(ctx, 5, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", place.Address)

	_, ok, err = svc.ByPosition(ctx, 5, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.ByPosition(ctx, 5, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetReportsCount(t *testing.T) {
	svc := NewPlaceService(newMemStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Save(ctx, 9, model.DraftPlace{Address: "P", Latitude: 1, Longitude: 1})
		require.NoError(t, err)
	}

	n, err := svc.Reset(ctx, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	places, err := svc.List(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestSaveStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("connection reset")
	svc := NewPlaceService(store)

	_, err := svc.Save(context.Background(), 1, model.DraftPlace{Address: "X"})
	assert.Error(t, err)
}
