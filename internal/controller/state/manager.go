package state

import (
	"sync"
	"time"
)

// Manager хранит диалоги пользователей бота в памяти.
// Диалог, который не трогали дольше ttl, считается брошенным и сбрасывается.
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		states: make(map[int64]*UserData),
		ttl:    ttl,
		now:    time.Now,
	}
}

// lookup возвращает живой диалог; вызывать под блокировкой
func (sm *Manager) lookup(telegramID int64) (*UserData, bool) {
	ud, ok := sm.states[telegramID]
	if !ok || sm.now().Sub(ud.UpdatedAt) > sm.ttl {
		return nil, false
	}
	return ud, true
}

func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if ud, ok := sm.lookup(telegramID); ok {
		return ud.State
	}
	return StateNone
}

// SetState переводит диалог на новый шаг, StateNone завершает его
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	ud, ok := sm.lookup(telegramID)
	if !ok {
		ud = &UserData{Data: make(map[string]string)}
		sm.states[telegramID] = ud
	}
	ud.State = state
	ud.UpdatedAt = sm.now()
}

func (sm *Manager) GetData(telegramID int64, key string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if ud, ok := sm.lookup(telegramID); ok {
		v, ok := ud.Data[key]
		return v, ok
	}
	return "", false
}

func (sm *Manager) SetData(telegramID int64, key, value string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ud, ok := sm.lookup(telegramID)
	if !ok {
		ud = &UserData{Data: make(map[string]string)}
		sm.states[telegramID] = ud
	}
	ud.Data[key] = value
	ud.UpdatedAt = sm.now()
}

func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Expire удаляет брошенные диалоги и возвращает их количество
func (sm *Manager) Expire() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	n := 0
	for id := range sm.states {
		if _, ok := sm.lookup(id); !ok {
			delete(sm.states, id)
			n++
		}
	}
	return n
}

func (sm *Manager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.states)
}
