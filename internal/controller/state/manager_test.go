package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*Manager, *time.Time) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m := NewManager(ttl)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestManagerStateAndData(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	assert.Equal(t, StateNone, m.GetState(1))

	m.SetState(1, StateRegisterRegNumber)
	m.SetData(1, KeyRegNumber, "21BCE0001")

	assert.Equal(t, StateRegisterRegNumber, m.GetState(1))
	v, ok := m.GetData(1, KeyRegNumber)
	require.True(t, ok)
	assert.Equal(t, "21BCE0001", v)

	// другой пользователь не видит чужой диалог
	assert.Equal(t, StateNone, m.GetState(2))
	_, ok = m.GetData(2, KeyRegNumber)
	assert.False(t, ok)

	// смена шага сохраняет данные
	m.SetState(1, StateRegisterMessType)
	v, _ = m.GetData(1, KeyRegNumber)
	assert.Equal(t, "21BCE0001", v)

	m.SetState(1, StateNone)
	assert.Equal(t, StateNone, m.GetState(1))
	_, ok = m.GetData(1, KeyRegNumber)
	assert.False(t, ok)
}

func TestManagerClearState(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	m.SetState(1, StateFeedbackMessage)
	m.ClearState(1)
	assert.Equal(t, StateNone, m.GetState(1))
	assert.Equal(t, 0, m.Len())
}

func TestManagerTTL(t *testing.T) {
	m, now := newTestManager(time.Minute)

	m.SetState(1, StateFeedbackMessage)
	m.SetData(1, KeyCatererID, "x")
	m.SetState(2, StateRegisterRegNumber)

	*now = now.Add(50 * time.Second)
	m.SetState(2, StateRegisterMessType) // touch

	*now = now.Add(20 * time.Second)
	assert.Equal(t, StateNone, m.GetState(1))
	_, ok := m.GetData(1, KeyCatererID)
	assert.False(t, ok)
	assert.Equal(t, StateRegisterMessType, m.GetState(2))

	// истёкший диалог начинается заново без старых данных
	m.SetState(1, StateFeedbackCaterer)
	_, ok = m.GetData(1, KeyCatererID)
	assert.False(t, ok)

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, m.Expire())
	assert.Equal(t, 0, m.Len())
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager(time.Minute)
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, StateFeedbackMessage)
			m.SetData(id, KeyCatererID, "c")
			_ = m.GetState(id)
			_, _ = m.GetData(id, KeyCatererID)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}
