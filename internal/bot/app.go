package bot

import (
	"context"
	"time"

	tg "placebot/core/telegram"
	tghelpers "placebot/core/telegram/helpers"
	"placebot/core/telegram/state"
	"placebot/internal/distance"
	"placebot/internal/model"
	"placebot/internal/service"

	tele "gopkg.in/telebot.v4"
)

// App wires the dialogue, the place service and the proximity matcher
// to the Telegram transport. It satisfies the router's FSM interface.
type App struct {
	places    *service.PlaceService
	distance  *distance.Client
	sessions  state.Manager
	dialog    *Dialog
	startedAt time.Time
}

// NewApp creates the bot application.
func NewApp(places *service.PlaceService, dist *distance.Client, sessions state.Manager) *App {
	a := &App{
		places:    places,
		distance:  dist,
		sessions:  sessions,
		startedAt: time.Now(),
	}
	a.dialog = NewDialog(sessions, a.saveDraft)
	return a
}

// Register wires command and callback handlers into the registry.
func (a *App) Register(reg *tg.Registry) {
	a.registerCommands(reg)

	_ = reg.RegisterCallback(CallbackCancel, a.onCancelPressed)
	_ = reg.RegisterCallback(CallbackSkip, a.onSkipPressed)
	_ = reg.RegisterCallback(CallbackConfirm, a.onConfirmPressed)
}

// InProgress reports whether the sender has an active dialogue.
func (a *App) InProgress(userID int64) bool {
	return a.dialog.InProgress(userID)
}

// Handle feeds a non-command message into the dialogue state machine.
func (a *App) Handle(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return sendReplies(c, a.dialog.HandleEvent(sender.ID, eventFrom(c)))
}

// HandleIdleLocation answers a bare location with the nearby-places
// report.
func (a *App) HandleIdleLocation(c tele.Context) error {
	msg := c.Message()
	sender := c.Sender()
	if msg == nil || msg.Location == nil || sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	places, err := a.places.List(ctx, sender.ID)
	if err != nil {
		_ = tghelpers.SendText(c, msgStoreFailed)
		return err
	}
	if len(places) == 0 {
		return tghelpers.SendText(c, msgEmptyList)
	}

	origin := distance.Point{
		Latitude:  float64(msg.Location.Lat),
		Longitude: float64(msg.Location.Lng),
	}
	candidates := make([]distance.Point, 0, len(places))
	for _, p := range places {
		candidates = append(candidates, distance.Point{Latitude: p.Latitude, Longitude: p.Longitude})
	}
	matched := a.distance.FindNearby(ctx, origin, candidates)

	var header string
	switch len(matched) {
	case 0:
		header = msgNoneNearby
	case 1:
		header = msgOneNearby
	default:
		header = msgManyNearby
	}
	if err := tghelpers.SendText(c, header); err != nil {
		return err
	}
	for _, idx := range matched {
		if err := sendPlace(c, idx+1, places[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) saveDraft(ctx context.Context, userID int64, draft model.DraftPlace) error {
	_, err := a.places.Save(ctx, userID, draft)
	return err
}

func (a *App) onCancelPressed(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	tghelpers.ClearButtons(c)
	return sendReplies(c, a.dialog.Cancel(sender.ID))
}

func (a *App) onSkipPressed(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	tghelpers.ClearButtons(c)
	return sendReplies(c, a.dialog.Skip(sender.ID))
}

func (a *App) onConfirmPressed(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	tghelpers.ClearButtons(c)
	ctx := tghelpers.BuildContext(c)
	return sendReplies(c, a.dialog.Confirm(ctx, sender.ID))
}

// eventFrom maps an incoming message to a dialogue event.
func eventFrom(c tele.Context) Event {
	msg := c.Message()
	if msg == nil {
		return Event{Kind: EventOther}
	}
	switch {
	case msg.Location != nil:
		return Event{
			Kind:      EventLocation,
			Latitude:  float64(msg.Location.Lat),
			Longitude: float64(msg.Location.Lng),
		}
	case msg.Photo != nil:
		return Event{Kind: EventPhoto, PhotoID: msg.Photo.FileID}
	case msg.Text != "":
		return Event{Kind: EventText, Text: msg.Text}
	default:
		return Event{Kind: EventOther}
	}
}
