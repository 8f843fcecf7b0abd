package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "TaskStarted", typ: TaskStarted},
		{want: "TaskProgress", typ: TaskProgress},
		{want: "TaskPaused", typ: TaskPaused},
		{want: "TaskCompleted", typ: TaskCompleted},
		{want: "TaskFailed", typ: TaskFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "OK", CodeOK.String())
	assert.Equal(t, "WriteError", CodeWrite.String())
	assert.Equal(t, "CapacityExceeded", CodeCapacityExceeded.String())
	assert.Equal(t, "Unknown", Code(-99).String())
}

func TestForward_ProgressAndError(t *testing.T) {
	ch := make(chan Event, 4)
	progress, onError := Forward(ch)

	progress(3, 42.5, 1024)
	onError(3, CodeRead, "boom")

	ev := <-ch
	assert.Equal(t, TaskProgress, ev.Type)
	assert.Equal(t, 3, ev.TaskID)
	assert.InDelta(t, 42.5, ev.Percent, 0.001)
	assert.InDelta(t, 1024.0, ev.Speed, 0.001)
	assert.False(t, ev.Timestamp.IsZero())

	ev = <-ch
	assert.Equal(t, TaskFailed, ev.Type)
	assert.Equal(t, CodeRead, ev.Code)
	assert.Equal(t, "boom", ev.Message)
}

func TestForward_DropsIntermediateProgressWhenFull(t *testing.T) {
	ch := make(chan Event, 1)
	progress, _ := Forward(ch)

	progress(1, 10, 0)
	progress(1, 20, 0) // dropped, channel full

	require.Len(t, ch, 1)
	ev := <-ch
	assert.InDelta(t, 10.0, ev.Percent, 0.001)

	// Final update blocks until delivered.
	done := make(chan struct{})
	go func() {
		progress(1, 100, 0)
		close(done)
	}()
	ev = <-ch
	<-done
	assert.InDelta(t, 100.0, ev.Percent, 0.001)
}
