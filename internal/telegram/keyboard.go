package telegram

import "github.com/quailyquaily/text2cw/internal/dispatch"

type keyboardButton struct {
	Text string `json:"text"`
}

// replyMarkup covers ReplyKeyboardMarkup and ReplyKeyboardRemove.
type replyMarkup struct {
	Keyboard       [][]keyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
	RemoveKeyboard bool               `json:"remove_keyboard,omitempty"`
}

func keyboardLayout(rows [][]string) *replyMarkup {
	out := &replyMarkup{ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]keyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, keyboardButton{Text: text})
		}
		out.Keyboard = append(out.Keyboard, buttons)
	}
	return out
}

// markupFor returns nil for dispatch.KeyboardKeep, leaving the keyboard the
// chat already shows.
func markupFor(kb dispatch.Keyboard) *replyMarkup {
	switch kb {
	case dispatch.KeyboardMain:
		return keyboardLayout(dispatch.MainKeyboard)
	case dispatch.KeyboardLeave:
		return keyboardLayout(dispatch.LeaveKeyboard)
	case dispatch.KeyboardRemove:
		return &replyMarkup{RemoveKeyboard: true}
	default:
		return nil
	}
}
