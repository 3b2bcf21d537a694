package bot

import (
	"context"
	"errors"
	"testing"

	"placebot/core/telegram/state"
	"placebot/internal/distance"
	"placebot/internal/model"
	"placebot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// recordingContext is a minimal tele.Context for handler tests: it
// records everything the handler sends and serves the metadata the
// context helpers read.
type recordingContext struct {
	tele.Context

	sender  *tele.User
	message *tele.Message
	store   map[string]any
	sent    []any
}

func newRecordingContext(userID int64) *recordingContext {
	return &recordingContext{
		sender: &tele.User{ID: userID},
		store:  map[string]any{},
	}
}

func (c *recordingContext) Sender() *tele.User     { return c.sender }
func (c *recordingContext) Chat() *tele.Chat       { return &tele.Chat{ID: c.sender.ID} }
func (c *recordingContext) Message() *tele.Message { return c.message }
func (c *recordingContext) Update() tele.Update    { return tele.Update{} }
func (c *recordingContext) Get(key string) any     { return c.store[key] }
func (c *recordingContext) Set(key string, v any)  { c.store[key] = v }

func (c *recordingContext) Send(what any, _ ...any) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *recordingContext) sentTexts() []string {
	out := make([]string, 0, len(c.sent))
	for _, v := range c.sent {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// failingStore fails every persistence call.
type failingStore struct{ err error }

func (s *failingStore) ListByUser(context.Context, int64) ([]model.Place, error) {
	return nil, s.err
}

func (s *failingStore) SaveWithQuota(context.Context, *model.Place, int) (int64, []int64, error) {
	return 0, nil, s.err
}

func (s *failingStore) DeleteAllByUser(context.Context, int64) (int64, error) {
	return 0, s.err
}

func newFailingApp() *App {
	places := service.NewPlaceService(&failingStore{err: errors.New("connection refused")})
	dist := distance.NewClient(distance.Config{URL: "http://127.0.0.1:0", APIKey: "k"})
	return NewApp(places, dist, state.NewMemoryManager(0))
}

func TestHandlersReportStoreFailure(t *testing.T) {
	app := newFailingApp()

	cases := map[string]func(c tele.Context) error{
		"list":  app.handleList,
		"reset": app.handleReset,
		"show":  func(c tele.Context) error { return app.handleShowPlace(c, 1) },
		"idle location": func(c tele.Context) error {
			rc := c.(*recordingContext)
			rc.message = &tele.Message{Location: &tele.Location{Lat: 55.75, Lng: 37.61}}
			return app.HandleIdleLocation(c)
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			c := newRecordingContext(7)

			err := handler(c)

			require.Error(t, err)
			assert.Equal(t, []string{msgStoreFailed}, c.sentTexts())
		})
	}
}

func TestHandleListEmpty(t *testing.T) {
	app := NewApp(
		service.NewPlaceService(&emptyStore{}),
		distance.NewClient(distance.Config{URL: "http://127.0.0.1:0", APIKey: "k"}),
		state.NewMemoryManager(0),
	)
	c := newRecordingContext(7)

	require.NoError(t, app.handleList(c))
	assert.Equal(t, []string{msgEmptyList}, c.sentTexts())
}

type emptyStore struct{}

func (emptyStore) ListByUser(context.Context, int64) ([]model.Place, error) { return nil, nil }

func (emptyStore) SaveWithQuota(context.Context, *model.Place, int) (int64, []int64, error) {
	return 1, nil, nil
}

func (emptyStore) DeleteAllByUser(context.Context, int64) (int64, error) { return 0, nil }
