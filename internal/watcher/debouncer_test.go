package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 30 * time.Millisecond

func receiveBatch(t *testing.T, d *Debouncer) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("no batch emitted")
		return nil
	}
}

func TestDebouncerEmitsAfterWindow(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a.txt", Operation: OpModify})

	batch := receiveBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncerCreateThenModifyStaysCreate(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a.txt", Operation: OpCreate})
	d.Add(FileEvent{Path: "/a.txt", Operation: OpModify})

	batch := receiveBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestDebouncerCreateThenDeleteCancels(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a.txt", Operation: OpCreate})
	d.Add(FileEvent{Path: "/a.txt", Operation: OpDelete})
	d.Add(FileEvent{Path: "/b.txt", Operation: OpModify})

	batch := receiveBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "/b.txt", batch[0].Path)
}

func TestDebouncerModifyThenDeleteBecomesDelete(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a.txt", Operation: OpModify})
	d.Add(FileEvent{Path: "/a.txt", Operation: OpDelete})

	batch := receiveBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpDelete, batch[0].Operation)
}

func TestDebouncerDeleteThenCreateBecomesModify(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a.txt", Operation: OpDelete})
	d.Add(FileEvent{Path: "/a.txt", Operation: OpCreate})

	batch := receiveBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncerSeparatePathsInOneBatch(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a.txt", Operation: OpModify})
	d.Add(FileEvent{Path: "/b.txt", Operation: OpCreate})

	batch := receiveBatch(t, d)
	assert.Len(t, batch, 2)
}

func TestDebouncerStopIsIdempotent(t *testing.T) {
	d := NewDebouncer(testWindow)
	d.Stop()
	d.Stop()
	d.Add(FileEvent{Path: "/a.txt", Operation: OpModify})

	_, ok := <-d.Output()
	assert.False(t, ok)
}
