package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetCreatesIdle(t *testing.T) {
	store := NewStore()

	sess := store.Get(42)
	require.NotNil(t, sess)
	assert.Equal(t, int64(42), sess.UserID)
	assert.IsType(t, Idle{}, sess.Step)
}

func TestStoreSetStepAndClear(t *testing.T) {
	store := NewStore()

	store.SetStep(42, AwaitingProjectName{})
	assert.IsType(t, AwaitingProjectName{}, store.Get(42).Step)

	// A new flow entry supersedes the active one.
	store.SetStep(42, AwaitingJoinKey{})
	assert.IsType(t, AwaitingJoinKey{}, store.Get(42).Step)

	store.Clear(42)
	assert.IsType(t, Idle{}, store.Get(42).Step)
}

func TestStoreSessionsAreIndependent(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.SetStep(id, AwaitingFullName{})
			store.Clear(id)
			store.SetStep(id, AwaitingJoinKey{})
		}(i)
	}
	wg.Wait()

	for i := int64(1); i <= 20; i++ {
		assert.IsType(t, AwaitingJoinKey{}, store.Get(i).Step)
	}
}

func TestSelectionToggleIsInvolution(t *testing.T) {
	sel := NewSelectionSet()

	assert.True(t, sel.Toggle(7))
	assert.True(t, sel.Has(7))
	assert.False(t, sel.Toggle(7))
	assert.False(t, sel.Has(7))
	assert.Zero(t, sel.Len())
}

func TestSelectionIDs(t *testing.T) {
	sel := NewSelectionSet()
	sel.Toggle(1)
	sel.Toggle(2)
	sel.Toggle(3)
	sel.Toggle(2)

	assert.ElementsMatch(t, []int64{1, 3}, sel.IDs())
	assert.Equal(t, 2, sel.Len())
}

func TestBypassesCommandFilter(t *testing.T) {
	assert.False(t, BypassesCommandFilter(Idle{}))
	assert.False(t, BypassesCommandFilter(AwaitingFullName{}))

	inFlow := []Step{
		AwaitingProjectName{},
		AwaitingProjectDescription{Name: "x"},
		AwaitingJoinKey{},
		AwaitingTaskName{},
		AwaitingTaskDescription{},
		AwaitingTaskAssignees{},
		AwaitingTaskHours{},
		AwaitingTaskDeadline{},
		AwaitingTaskConfirm{},
		AwaitingNewStatus{},
	}
	for _, s := range inFlow {
		assert.True(t, BypassesCommandFilter(s), "%T", s)
	}
}
