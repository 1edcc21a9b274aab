package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerLifecycle(t *testing.T) {
	sm := NewManager()
	const chat = int64(42)

	assert.Equal(t, StateNone, sm.GetState(chat))
	assert.Nil(t, sm.GetAllData(chat))

	sm.SetState(chat, StateLinked)
	sm.SetData(chat, KeyPID, "P-1")
	sm.SetData(chat, KeyFreeSlotsInfo, "Room 12: ...")
	assert.Equal(t, StateLinked, sm.GetState(chat))
	assert.Equal(t, "P-1", sm.GetString(chat, KeyPID))

	sm.DeleteData(chat, KeyFreeSlotsInfo)
	_, ok := sm.GetData(chat, KeyFreeSlotsInfo)
	assert.False(t, ok)
	assert.Equal(t, "P-1", sm.GetString(chat, KeyPID))

	snapshot := sm.GetAllData(chat)
	snapshot[KeyPID] = "changed"
	assert.Equal(t, "P-1", sm.GetString(chat, KeyPID))

	sm.SetState(chat, StateNone)
	assert.Equal(t, "", sm.GetString(chat, KeyPID))
}

func TestManagerGetStringIgnoresOtherTypes(t *testing.T) {
	sm := NewManager()
	sm.SetData(1, KeyCourseIndex, 3)

	assert.Equal(t, "", sm.GetString(1, KeyCourseIndex))
	assert.Equal(t, StateNone, sm.GetState(1))
}

func TestManagerConcurrentAccess(t *testing.T) {
	sm := NewManager()

	var wg sync.WaitGroup
	for i := int64(0); i < 20; i++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			sm.SetState(chat, StateLinked)
			sm.SetData(chat, KeyPID, "P")
			_ = sm.GetAllData(chat)
			sm.ClearState(chat)
		}(i)
	}
	wg.Wait()

	for i := int64(0); i < 20; i++ {
		assert.Equal(t, StateNone, sm.GetState(i))
	}
}
