package state

import "time"

// UserState текущий шаг диалога пользователя
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	// Регистрация студента: номер -> столовая -> повар
	StateRegisterRegNumber UserState = "register_reg_number"
	StateRegisterMessType  UserState = "register_mess_type"
	StateRegisterCaterer   UserState = "register_caterer"

	// Отзыв: выбор повара -> текст
	StateFeedbackCaterer UserState = "feedback_caterer"
	StateFeedbackMessage UserState = "feedback_message"
)

// Ключи временных данных диалога
const (
	KeyRegNumber = "reg_number"
	KeyMessType  = "mess_type"
	KeyCatererID = "caterer_id"
)

// DefaultTTL сколько живёт брошенный диалог
const DefaultTTL = 30 * time.Minute

// UserData данные одного диалога
type UserData struct {
	State     UserState
	Data      map[string]string
	UpdatedAt time.Time
}
