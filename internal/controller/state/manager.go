package state

import (
	"sync"
	"time"
)

// Manager хранит диалоги пользователей в памяти процесса.
// Диалог без изменений дольше ttl забывается
type Manager struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	users map[int64]*UserData // telegramID -> диалог
}

// NewManager создаёт менеджер. ttl <= 0 отключает истечение диалогов
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:   ttl,
		now:   time.Now,
		users: make(map[int64]*UserData),
	}
}

// lookup возвращает живой диалог, истёкший удаляет. Вызывается под mu
func (m *Manager) lookup(telegramID int64) *UserData {
	data, ok := m.users[telegramID]
	if !ok {
		return nil
	}
	if m.expired(data) {
		delete(m.users, telegramID)
		return nil
	}
	return data
}

func (m *Manager) expired(data *UserData) bool {
	return m.ttl > 0 && m.now().Sub(data.UpdatedAt) > m.ttl
}

// GetState текущий шаг диалога, StateNone если диалога нет
func (m *Manager) GetState(telegramID int64) UserState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data := m.lookup(telegramID); data != nil {
		return data.State
	}
	return StateNone
}

// SetState переводит диалог на шаг state. StateNone завершает диалог вместе с данными
func (m *Manager) SetState(telegramID int64, state UserState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state == StateNone {
		delete(m.users, telegramID)
		return
	}

	data := m.lookup(telegramID)
	if data == nil {
		data = &UserData{Data: make(map[string]any)}
		m.users[telegramID] = data
	}
	data.State = state
	data.UpdatedAt = m.now()
}

// GetData значение, сохранённое на одном из шагов активного диалога
func (m *Manager) GetData(telegramID int64, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := m.lookup(telegramID)
	if data == nil {
		return nil, false
	}
	value, ok := data.Data[key]
	return value, ok
}

// SetData сохраняет значение в активном диалоге. Без диалога ничего не делает
func (m *Manager) SetData(telegramID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := m.lookup(telegramID)
	if data == nil {
		return
	}
	data.Data[key] = value
	data.UpdatedAt = m.now()
}

// ClearState завершает диалог пользователя
func (m *Manager) ClearState(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, telegramID)
}

// Cleanup удаляет истёкшие диалоги и возвращает их количество
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, data := range m.users {
		if m.expired(data) {
			delete(m.users, id)
			removed++
		}
	}
	return removed
}
