package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"placebot/core/telegram/state"
	"placebot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSave struct {
	drafts []model.DraftPlace
	err    error
}

func (r *recordedSave) fn(_ context.Context, _ int64, draft model.DraftPlace) error {
	if r.err != nil {
		return r.err
	}
	r.drafts = append(r.drafts, draft)
	return nil
}

func newTestDialog(t *testing.T) (*Dialog, *recordedSave) {
	t.Helper()
	store := &recordedSave{}
	return NewDialog(state.NewMemoryManager(0), store.fn), store
}

func texts(replies []Reply) []string {
	out := make([]string, 0, len(replies))
	for _, r := range replies {
		out = append(out, r.Text)
	}
	return out
}

func TestFullDialogSavesCompleteDraft(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()
	const user = int64(10)

	replies := d.Start(user)
	require.Equal(t, []string{msgAskAddress}, texts(replies))
	assert.True(t, d.InProgress(user))

	replies = d.HandleEvent(user, Event{Kind: EventText, Text: "Night bakery"})
	require.Equal(t, []string{msgAskMap}, texts(replies))

	replies = d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 59.93, Longitude: 30.33})
	require.Equal(t, []string{msgAskPhoto}, texts(replies))

	replies = d.HandleEvent(user, Event{Kind: EventPhoto, PhotoID: "photo-1"})
	require.Equal(t, []string{fmt.Sprintf(msgConfirmF, "Night bakery")}, texts(replies))

	replies = d.Confirm(ctx, user)
	require.Equal(t, []string{msgSaved}, texts(replies))
	assert.False(t, d.InProgress(user))

	require.Len(t, store.drafts, 1)
	saved := store.drafts[0]
	assert.Equal(t, "Night bakery", saved.Address)
	assert.Equal(t, 59.93, saved.Latitude)
	assert.Equal(t, 30.33, saved.Longitude)
	assert.Equal(t, "photo-1", saved.Image)
}

func TestSkipLeavesImageEmpty(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()
	const user = int64(11)

	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Pier"})
	d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 1, Longitude: 2})

	replies := d.Skip(user)
	require.Equal(t, []string{msgSkipPhoto, fmt.Sprintf(msgConfirmF, "Pier")}, texts(replies))

	d.Confirm(ctx, user)
	require.Len(t, store.drafts, 1)
	assert.Empty(t, store.drafts[0].Image)
}

func TestWrongContentIsRejectedWithoutTransition(t *testing.T) {
	d, _ := newTestDialog(t)
	const user = int64(12)

	d.Start(user)

	replies := d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 1, Longitude: 2})
	assert.Equal(t, []string{msgNotAnAddress}, texts(replies))

	d.HandleEvent(user, Event{Kind: EventText, Text: "Museum"})

	replies = d.HandleEvent(user, Event{Kind: EventText, Text: "still not a pin"})
	assert.Equal(t, []string{msgNotALocation}, texts(replies))

	replies = d.HandleEvent(user, Event{Kind: EventOther})
	assert.Equal(t, []string{msgNotALocation}, texts(replies))

	d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 1, Longitude: 2})

	replies = d.HandleEvent(user, Event{Kind: EventText, Text: "not a photo"})
	assert.Equal(t, []string{msgNotAPhoto}, texts(replies))
}

func TestOverlongAddressIsRejectedWithoutTransition(t *testing.T) {
	d, _ := newTestDialog(t)
	const user = int64(18)

	d.Start(user)

	replies := d.HandleEvent(user, Event{Kind: EventText, Text: strings.Repeat("x", maxAddressLen+1)})
	assert.Equal(t, []string{msgAddressTooLong}, texts(replies))

	// Rune count matters, not byte length.
	cyrillic := strings.Repeat("ж", maxAddressLen)
	replies = d.HandleEvent(user, Event{Kind: EventText, Text: cyrillic})
	assert.Equal(t, []string{msgAskMap}, texts(replies))
}

func TestCancelAnywhereDiscardsDraft(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()
	const user = int64(13)

	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Old draft"})

	replies := d.Cancel(user)
	require.Equal(t, []string{msgCancelled}, texts(replies))
	assert.False(t, d.InProgress(user))

	// A later completed dialogue must not see leftovers of the old draft.
	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Fresh"})
	d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 3, Longitude: 4})
	d.Skip(user)
	d.Confirm(ctx, user)

	require.Len(t, store.drafts, 1)
	assert.Equal(t, "Fresh", store.drafts[0].Address)
}

func TestCancelOutsideDialogueIsNoop(t *testing.T) {
	d, _ := newTestDialog(t)
	assert.Nil(t, d.Cancel(99))
}

func TestStartResetsPreviousDraft(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()
	const user = int64(14)

	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Abandoned"})

	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Taken over"})
	d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 5, Longitude: 6})
	d.Skip(user)
	d.Confirm(ctx, user)

	require.Len(t, store.drafts, 1)
	assert.Equal(t, "Taken over", store.drafts[0].Address)
}

func TestConfirmStateReshowsPrompt(t *testing.T) {
	d, _ := newTestDialog(t)
	const user = int64(15)

	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Dock"})
	d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 1, Longitude: 1})
	d.Skip(user)

	replies := d.HandleEvent(user, Event{Kind: EventText, Text: "random chatter"})
	assert.Equal(t, []string{fmt.Sprintf(msgConfirmF, "Dock")}, texts(replies))
}

func TestConfirmFailureKeepsState(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()
	const user = int64(16)

	d.Start(user)
	d.HandleEvent(user, Event{Kind: EventText, Text: "Flaky"})
	d.HandleEvent(user, Event{Kind: EventLocation, Latitude: 1, Longitude: 1})
	d.Skip(user)

	store.err = errors.New("db down")
	replies := d.Confirm(ctx, user)
	require.Equal(t, []string{msgSaveFailed, fmt.Sprintf(msgConfirmF, "Flaky")}, texts(replies))
	assert.True(t, d.InProgress(user))

	store.err = nil
	replies = d.Confirm(ctx, user)
	require.Equal(t, []string{msgSaved}, texts(replies))
	assert.False(t, d.InProgress(user))
}

func TestSkipAndConfirmOutsideTheirStatesAreNoops(t *testing.T) {
	d, _ := newTestDialog(t)
	ctx := context.Background()
	const user = int64(17)

	assert.Nil(t, d.Skip(user))
	assert.Nil(t, d.Confirm(ctx, user))

	d.Start(user)
	assert.Nil(t, d.Skip(user), "skip is only valid on the photo step")
	assert.Nil(t, d.Confirm(ctx, user))
}
