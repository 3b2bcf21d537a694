package router

import (
	"time"

	tg "placebot/core/telegram"
	"placebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a dialogue state machine.
type FSM interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// MessageOptions controls routing of non-command updates.
type MessageOptions struct {
	// IdleLocation handles a location shared outside of a dialogue.
	IdleLocation tele.HandlerFunc
	UnknownText  tele.HandlerFunc
	UnknownOther tele.HandlerFunc
}

// rejectedEndpoints are content kinds no dialogue step accepts as-is.
// They still go through the state machine so the active step can reply
// with its own validation error.
var rejectedEndpoints = []string{
	tele.OnDocument,
	tele.OnSticker,
	tele.OnAudio,
	tele.OnVideo,
	tele.OnVideoNote,
	tele.OnVoice,
	tele.OnContact,
}

// MessageRoutes builds handlers for text, location, photo and other
// content updates. An in-progress dialogue always wins; otherwise text
// falls through to command lookup, and a bare location triggers the
// idle-location handler.
func MessageRoutes(fsmMgr FSM, reg *tg.Registry, opts MessageOptions) []tg.Route {
	inDialogue := func(c tele.Context) bool {
		return fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID)
	}

	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if inDialogue(c) {
			return handleWithSummary(c, "fsm_text", start, "", "", func() error {
				return fsmMgr.Handle(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	locationHandler := func(c tele.Context) error {
		start := time.Now()

		if inDialogue(c) {
			return handleWithSummary(c, "fsm_location", start, "", "", func() error {
				return fsmMgr.Handle(c)
			})
		}

		if opts.IdleLocation != nil {
			return handleWithSummary(c, "nearby", start, "", "", func() error {
				return opts.IdleLocation(c)
			})
		}

		logHandlerSummary(c, "idle_location", start, "skip", "ok", nil)
		return nil
	}

	photoHandler := func(c tele.Context) error {
		start := time.Now()

		if inDialogue(c) {
			return handleWithSummary(c, "fsm_photo", start, "", "", func() error {
				return fsmMgr.Handle(c)
			})
		}

		if opts.UnknownOther != nil {
			return handleWithSummary(c, "unexpected_photo", start, "", "", func() error {
				return opts.UnknownOther(c)
			})
		}

		logHandlerSummary(c, "unexpected_photo", start, "skip", "ok", nil)
		return nil
	}

	otherHandler := func(c tele.Context) error {
		start := time.Now()

		if inDialogue(c) {
			return handleWithSummary(c, "fsm_other", start, "", "", func() error {
				return fsmMgr.Handle(c)
			})
		}

		if opts.UnknownOther != nil {
			return handleWithSummary(c, "unexpected_content", start, "", "", func() error {
				return opts.UnknownOther(c)
			})
		}

		logHandlerSummary(c, "unexpected_content", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
		{Endpoint: tele.OnLocation, Handler: wrap(locationHandler)},
		{Endpoint: tele.OnPhoto, Handler: wrap(photoHandler)},
	}
	wrappedOther := wrap(otherHandler)
	for _, ep := range rejectedEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrappedOther})
	}
	return routes
}
