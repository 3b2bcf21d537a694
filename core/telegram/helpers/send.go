package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"placebot/core/logger"
	"placebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendKeyboard sends text together with an inline keyboard.
func SendKeyboard(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// SendLocation sends a location pin to the current recipient.
func SendLocation(c tele.Context, lat, lon float64) error {
	return sendAsync(c, "send.location", "sendLocation", func() error {
		return c.Send(&tele.Location{Lat: float32(lat), Lng: float32(lon)})
	})
}

// SendPhoto sends a photo by its Telegram file identifier.
func SendPhoto(c tele.Context, fileID string) error {
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		return c.Send(&tele.Photo{File: tele.File{FileID: fileID}})
	})
}

// ClearButtons removes the inline keyboard from the message that carried
// the pressed callback button. Errors are reported but not fatal: the
// button row may already be gone.
func ClearButtons(c tele.Context) {
	msg := c.Message()
	if msg == nil {
		return
	}
	if _, err := c.Bot().EditReplyMarkup(msg, nil); err != nil {
		ctx := BuildContext(c)
		logger.Debug(ctx, "tg", "buttons.clear",
			slog.String("status", "skip"),
			slog.String("err", err.Error()),
		)
	}
}
