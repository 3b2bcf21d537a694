package bot

import (
	"context"
	"fmt"
	"unicode/utf8"

	"placebot/core/telegram/state"
	"placebot/internal/model"
)

// EventKind classifies an incoming message for dialogue routing.
type EventKind int

const (
	EventText EventKind = iota
	EventLocation
	EventPhoto
	EventOther
)

// Event is a transport-independent view of an incoming message: only
// the fields a dialogue step may consume.
type Event struct {
	Kind      EventKind
	Text      string
	Latitude  float64
	Longitude float64
	PhotoID   string
}

// Button is an inline button attached to a Reply.
type Button struct {
	Text   string
	Unique string
}

// Reply is one outbound message produced by a dialogue step.
type Reply struct {
	Text    string
	Buttons []Button
}

// Dialogue states of the add-place flow.
const (
	stateAddress  state.State = "add_address"
	stateLocation state.State = "add_location"
	stateImage    state.State = "add_image"
	stateConfirm  state.State = "add_confirm"
)

const draftKey = "draft"

// maxAddressLen matches the places.address column width. Checking here
// keeps an oversized address from failing only at commit time.
const maxAddressLen = 32

// SaveFunc persists a completed draft.
type SaveFunc func(ctx context.Context, userID int64, draft model.DraftPlace) error

// Dialog drives the multi-step add-place conversation. Each step is a
// single rule keyed by (state, event kind); anything else the state
// does not accept produces its validation message. The Dialog produces
// Reply values and never touches the transport.
type Dialog struct {
	sessions state.Manager
	save     SaveFunc
}

// NewDialog creates a Dialog on top of a session manager.
func NewDialog(sessions state.Manager, save SaveFunc) *Dialog {
	return &Dialog{sessions: sessions, save: save}
}

type stepFunc func(d *Dialog, userID int64, ev Event) []Reply

// steps maps (state, event kind) to the accepting handler. States
// absent from a kind's map fall through to rejections.
var steps = map[state.State]map[EventKind]stepFunc{
	stateAddress:  {EventText: (*Dialog).acceptAddress},
	stateLocation: {EventLocation: (*Dialog).acceptLocation},
	stateImage:    {EventPhoto: (*Dialog).acceptPhoto},
}

// rejections holds the validation message each state answers with when
// it receives content it cannot use.
var rejections = map[state.State]string{
	stateAddress:  msgNotAnAddress,
	stateLocation: msgNotALocation,
	stateImage:    msgNotAPhoto,
}

// InProgress reports whether the user is inside the add-place dialogue.
func (d *Dialog) InProgress(userID int64) bool {
	return d.sessions.InProgress(userID)
}

// Start begins the dialogue, discarding any previous draft.
func (d *Dialog) Start(userID int64) []Reply {
	d.sessions.Clear(userID)
	d.sessions.SetState(userID, stateAddress)
	return []Reply{{Text: msgAskAddress, Buttons: []Button{buttonCancel}}}
}

// Cancel aborts the dialogue and discards the draft.
func (d *Dialog) Cancel(userID int64) []Reply {
	if !d.InProgress(userID) {
		return nil
	}
	d.sessions.Clear(userID)
	return []Reply{{Text: msgCancelled}}
}

// Skip jumps from the photo step straight to confirmation.
func (d *Dialog) Skip(userID int64) []Reply {
	if d.sessions.GetState(userID) != stateImage {
		return nil
	}
	d.sessions.SetState(userID, stateConfirm)
	return []Reply{{Text: msgSkipPhoto}, d.confirmPrompt(userID)}
}

// Confirm persists the draft. On failure the dialogue stays in the
// confirmation state so the user can press the button again.
func (d *Dialog) Confirm(ctx context.Context, userID int64) []Reply {
	if d.sessions.GetState(userID) != stateConfirm {
		return nil
	}
	if err := d.save(ctx, userID, d.draft(userID)); err != nil {
		return []Reply{{Text: msgSaveFailed}, d.confirmPrompt(userID)}
	}
	d.sessions.Clear(userID)
	return []Reply{{Text: msgSaved}}
}

// HandleEvent routes a message event through the step table. It returns
// nil when no dialogue is active.
func (d *Dialog) HandleEvent(userID int64, ev Event) []Reply {
	st := d.sessions.GetState(userID)
	if st == state.StateIdle {
		return nil
	}
	if st == stateConfirm {
		// Only the buttons advance from here; any message re-shows
		// the prompt.
		return []Reply{d.confirmPrompt(userID)}
	}
	if accept, ok := steps[st]; ok {
		if h, ok := accept[ev.Kind]; ok {
			return h(d, userID, ev)
		}
	}
	if msg, ok := rejections[st]; ok {
		return []Reply{{Text: msg}}
	}
	return nil
}

func (d *Dialog) acceptAddress(userID int64, ev Event) []Reply {
	if utf8.RuneCountInString(ev.Text) > maxAddressLen {
		return []Reply{{Text: msgAddressTooLong, Buttons: []Button{buttonCancel}}}
	}
	draft := d.draft(userID)
	draft.Address = ev.Text
	d.putDraft(userID, draft)
	d.sessions.SetState(userID, stateLocation)
	return []Reply{{Text: msgAskMap, Buttons: []Button{buttonCancel}}}
}

func (d *Dialog) acceptLocation(userID int64, ev Event) []Reply {
	draft := d.draft(userID)
	draft.Latitude = ev.Latitude
	draft.Longitude = ev.Longitude
	d.putDraft(userID, draft)
	d.sessions.SetState(userID, stateImage)
	return []Reply{{Text: msgAskPhoto, Buttons: []Button{buttonSkip, buttonCancel}}}
}

func (d *Dialog) acceptPhoto(userID int64, ev Event) []Reply {
	draft := d.draft(userID)
	draft.Image = ev.PhotoID
	d.putDraft(userID, draft)
	d.sessions.SetState(userID, stateConfirm)
	return []Reply{d.confirmPrompt(userID)}
}

func (d *Dialog) confirmPrompt(userID int64) Reply {
	return Reply{
		Text:    fmt.Sprintf(msgConfirmF, d.draft(userID).Address),
		Buttons: []Button{buttonConfirm, buttonCancel},
	}
}

func (d *Dialog) draft(userID int64) model.DraftPlace {
	if v, ok := d.sessions.GetTemp(userID, draftKey); ok {
		if draft, ok := v.(model.DraftPlace); ok {
			return draft
		}
	}
	return model.DraftPlace{}
}

func (d *Dialog) putDraft(userID int64, draft model.DraftPlace) {
	d.sessions.SetTemp(userID, draftKey, draft)
}
