package bot

import (
	"fmt"
	"strconv"
	"time"

	"placebot/core/buildinfo"
	tg "placebot/core/telegram"
	"placebot/core/telegram/commands"
	tghelpers "placebot/core/telegram/helpers"
	"placebot/internal/service"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleHelp,
		Description: "What this bot does",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Show available commands",
	})
	reg.RegisterCommand("/add", commands.Command{
		Handler:     a.handleAdd,
		Description: "Save a new place",
	})
	reg.RegisterCommand("/list", commands.Command{
		Handler:     a.handleList,
		Description: "Show saved places",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     a.handleReset,
		Description: "Delete all saved places",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Runtime statistics",
		AdminOnly:   true,
		Hidden:      true,
	})

	// /1 .. /10 show one saved place by its display position.
	for n := 1; n <= service.MaxPlacesPerUser; n++ {
		position := n
		reg.RegisterCommand("/"+strconv.Itoa(position), commands.Command{
			Handler:     func(c tele.Context) error { return a.handleShowPlace(c, position) },
			Description: "Show place " + strconv.Itoa(position),
			Hidden:      true,
		})
	}
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, msgWelcome)
}

// handleAdd starts the add-place dialogue, discarding any draft left
// over from an abandoned run.
func (a *App) handleAdd(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return sendReplies(c, a.dialog.Start(sender.ID))
}

func (a *App) handleList(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
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
	return tghelpers.SendText(c, formatPlaceList(places))
}

func (a *App) handleReset(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	n, err := a.places.Reset(ctx, sender.ID)
	if err != nil {
		_ = tghelpers.SendText(c, msgStoreFailed)
		return err
	}
	if n == 0 {
		return tghelpers.SendText(c, msgEmptyList)
	}
	return tghelpers.SendText(c, msgResetDone)
}

// handleShowPlace renders the place at a 1-based position. Positions
// past the end of the list are silently ignored.
func (a *App) handleShowPlace(c tele.Context, position int) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	place, ok, err := a.places.ByPosition(ctx, sender.ID, position)
	if err != nil {
		_ = tghelpers.SendText(c, msgStoreFailed)
		return err
	}
	if !ok {
		return nil
	}
	return sendPlace(c, position, place)
}

func (a *App) handleStats(c tele.Context) error {
	text := fmt.Sprintf(
		"version: %s (%s)\nuptime: %s\nactive dialogues: %d",
		buildinfo.Version,
		buildinfo.Commit,
		time.Since(a.startedAt).Round(time.Second),
		a.sessions.Active(),
	)
	return tghelpers.SendText(c, text)
}
