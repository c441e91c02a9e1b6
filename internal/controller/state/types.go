package state

import "time"

// UserState шаг диалога, в котором находится пользователь
type UserState string

const (
	StateNone UserState = ""

	// Бот ждёт email для привязки аккаунта
	StateLinkEmail UserState = "link_email"
)

// DefaultTTL через сколько брошенный диалог считается завершённым
const DefaultTTL = 15 * time.Minute

// UserData состояние диалога и данные, собранные на его шагах
type UserData struct {
	State     UserState
	Data      map[string]any
	UpdatedAt time.Time
}
