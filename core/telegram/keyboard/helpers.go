package keyboard

import (
	tele "gopkg.in/telebot.v4"

	navkb "github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/telegram/callbacks"
)

// NavUnique is the callback unique shared by all menu buttons; the button payload
// travels as callback data.
const NavUnique = "nav"

// maxCallbackData is Telegram's limit for callback_data in bytes.
const maxCallbackData = 64

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// FromMenu converts a menu keyboard into inline markup. Empty lines are dropped
// and buttons whose payload would overflow callback data are skipped, reported
// through the second return value. A nil or empty keyboard yields nil markup.
func FromMenu(kb *navkb.Keyboard) (*tele.ReplyMarkup, []string) {
	if kb.Empty() {
		return nil, nil
	}
	var (
		rows    [][]InlineBtn
		skipped []string
	)
	for _, line := range kb.Lines {
		row := make([]InlineBtn, 0, len(line))
		for _, b := range line {
			if len(callbacks.EncodeData(NavUnique, b.Payload)) > maxCallbackData {
				skipped = append(skipped, b.Payload)
				continue
			}
			row = append(row, InlineBtn{Text: b.Text, Unique: NavUnique, Data: b.Payload})
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, skipped
	}
	return InlineButtonsRows(rows...), skipped
}
