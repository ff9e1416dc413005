// Package keyboard builds inline keyboards for the bot.
package keyboard

import "github.com/go-telegram/bot/models"

// Builder собирает inline клавиатуру по рядам
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.InlineKeyboardButton, 0),
	}
}

// Row добавляет ряд; пустые ряды пропускаются
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// Grid раскладывает кнопки рядами по perRow штук
func (b *Builder) Grid(perRow int, buttons ...models.InlineKeyboardButton) *Builder {
	if perRow <= 0 {
		perRow = 1
	}
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		b.Row(buttons[start:end]...)
	}
	return b
}

func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: b.rows,
	}
}

func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}
