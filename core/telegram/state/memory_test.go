package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManagerStateLifecycle(t *testing.T) {
	m := NewMemoryManager(0)

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))

	m.SetState(1, State("add_address"))
	assert.Equal(t, State("add_address"), m.GetState(1))
	assert.True(t, m.InProgress(1))
	assert.Equal(t, 1, m.Active())

	m.Clear(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.Equal(t, 0, m.Active())
}

func TestMemoryManagerTempData(t *testing.T) {
	m := NewMemoryManager(0)

	_, ok := m.GetTemp(7, "draft")
	assert.False(t, ok)

	m.SetTemp(7, "draft", "some value")
	got, ok := m.GetTemp(7, "draft")
	require.True(t, ok)
	assert.Equal(t, "some value", got)

	m.ClearTemp(7, "draft")
	_, ok = m.GetTemp(7, "draft")
	assert.False(t, ok)
}

func TestMemoryManagerIdleEviction(t *testing.T) {
	mgr := NewMemoryManager(10 * time.Minute).(*memoryManager)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return clock }

	mgr.SetState(1, State("add_address"))
	mgr.SetState(2, State("add_image"))
	assert.Equal(t, 2, mgr.Active())

	// User 2 keeps interacting, user 1 goes quiet.
	clock = clock.Add(8 * time.Minute)
	mgr.SetTemp(2, "draft", "x")

	clock = clock.Add(5 * time.Minute)
	mgr.SetState(3, State("add_address"))

	assert.Equal(t, StateIdle, mgr.GetState(1))
	assert.Equal(t, State("add_image"), mgr.GetState(2))
	assert.Equal(t, 2, mgr.Active())
}

func TestMemoryManagerSweepThrottled(t *testing.T) {
	mgr := NewMemoryManager(time.Minute).(*memoryManager)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return clock }

	mgr.SetState(1, State("add_address"))
	clock = clock.Add(90 * time.Second)

	// First write after the interval triggers the sweep.
	mgr.SetState(2, State("add_address"))
	assert.Equal(t, StateIdle, mgr.GetState(1))
}
