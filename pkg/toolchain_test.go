package tools

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingTool struct {
	name        string
	initialised int
	executed    int
	finalised   int

	initErr error
	execErr error
	panics  bool
}

func (t *recordingTool) Name() string { return t.name }

func (t *recordingTool) Initialise(config Configuration, data *DataModel) error {
	t.initialised++
	return t.initErr
}

func (t *recordingTool) Execute(data *DataModel) error {
	t.executed++
	if t.panics {
		panic("tool exploded")
	}
	return t.execErr
}

func (t *recordingTool) Finalise() error {
	t.finalised++
	return nil
}

func TestToolChainLifecycle(t *testing.T) {
	first := &recordingTool{name: "first"}
	second := &recordingTool{name: "second"}
	chain := NewToolChain(testConfiguration(), NewDataModel(), first, second)

	require.NoError(t, chain.Initialise())
	require.NoError(t, chain.Execute())
	require.NoError(t, chain.Execute())
	require.NoError(t, chain.Finalise())

	require.Equal(t, 1, first.initialised)
	require.Equal(t, 2, first.executed)
	require.Equal(t, 1, first.finalised)
	require.Equal(t, 2, second.executed)
	require.Equal(t, 2, chain.EventsProcessed)
	require.Equal(t, 0, chain.EventsDiscarded)
}

func TestToolChainInitialiseAborts(t *testing.T) {
	bad := &recordingTool{name: "bad", initErr: fmt.Errorf("no geometry")}
	after := &recordingTool{name: "after"}
	chain := NewToolChain(testConfiguration(), NewDataModel(), bad, after)

	err := chain.Initialise()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad")
	require.Equal(t, 0, after.initialised)
}

func TestToolChainDiscardsFailedEvent(t *testing.T) {
	failing := &recordingTool{name: "failing", execErr: fmt.Errorf("missing entry")}
	after := &recordingTool{name: "after"}
	chain := NewToolChain(testConfiguration(), NewDataModel(), failing, after)

	require.Error(t, chain.Execute())
	require.Equal(t, 0, after.executed)
	require.Equal(t, 1, chain.EventsDiscarded)

	// The chain keeps running after a discarded event.
	failing.execErr = nil
	require.NoError(t, chain.Execute())
	require.Equal(t, 1, chain.EventsProcessed)
}

func TestToolChainRecoversFromPanic(t *testing.T) {
	panicking := &recordingTool{name: "panicking", panics: true}
	chain := NewToolChain(testConfiguration(), NewDataModel(), panicking)

	err := chain.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "recovered from panic")
	require.Equal(t, 1, chain.EventsDiscarded)
}
