package bot

import (
	"fmt"
	"strings"

	tghelpers "placebot/core/telegram/helpers"
	"placebot/core/telegram/keyboard"
	"placebot/internal/model"

	tele "gopkg.in/telebot.v4"
)

// sendReplies renders dialogue replies in order, attaching inline
// keyboards where a reply carries buttons.
func sendReplies(c tele.Context, replies []Reply) error {
	for _, r := range replies {
		if len(r.Buttons) == 0 {
			if err := tghelpers.SendText(c, r.Text); err != nil {
				return err
			}
			continue
		}
		btns := make([]keyboard.InlineBtn, 0, len(r.Buttons))
		for _, b := range r.Buttons {
			btns = append(btns, keyboard.InlineBtn{Text: b.Text, Unique: b.Unique})
		}
		if err := tghelpers.SendKeyboard(c, r.Text, keyboard.SingleRow(btns...)); err != nil {
			return err
		}
	}
	return nil
}

// sendPlace renders one saved place: its numbered address line, a
// location pin and, when present, the photo.
func sendPlace(c tele.Context, position int, place model.Place) error {
	if err := tghelpers.SendText(c, fmt.Sprintf("%d. %s", position, place.Address)); err != nil {
		return err
	}
	if err := tghelpers.SendLocation(c, place.Latitude, place.Longitude); err != nil {
		return err
	}
	if place.Image != "" {
		return tghelpers.SendPhoto(c, place.Image)
	}
	return nil
}

// formatPlaceList builds the /list body: numbered addresses plus the
// detail-command hint.
func formatPlaceList(places []model.Place) string {
	lines := make([]string, 0, len(places))
	for i, p := range places {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, p.Address))
	}
	return fmt.Sprintf(msgListHeaderF, strings.Join(lines, "\n"))
}
