package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTaskProgressLastWriteWins(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil)
	manager.UpdateTaskProgress("s1", "# step 1")
	manager.UpdateTaskProgress("s1", "# step 2")

	progress, ok := manager.TaskProgress("s1")
	require.True(t, ok)
	assert.Equal(t, "# step 2", progress.MarkdownContent)
	assert.NotZero(t, progress.Timestamp)
}

func TestTaskProgressMissingSession(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil)
	_, ok := manager.TaskProgress("ghost")
	assert.False(t, ok)
}

func TestSendUserMessagePreservesOrder(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil)
	manager.SendUserMessage("s1", "first", MessageInfo)
	manager.SendUserMessage("s1", "second", MessageWarning)
	manager.SendUserMessage("other", "elsewhere", MessageError)

	messages := manager.UserMessages("s1")
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, MessageInfo, messages[0].MessageType)
	assert.Equal(t, "second", messages[1].Message)
}

func TestClearSessionDropsBothMaps(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil)
	manager.UpdateTaskProgress("s1", "progress")
	manager.SendUserMessage("s1", "msg", MessageSuccess)

	manager.ClearSession("s1")

	_, ok := manager.TaskProgress("s1")
	assert.False(t, ok)
	assert.Empty(t, manager.UserMessages("s1"))
}

func TestParseMessageType(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"info", "Success", "WARNING", "error"} {
		_, err := ParseMessageType(raw)
		assert.NoError(t, err, raw)
	}

	_, err := ParseMessageType("verbose")
	assert.Error(t, err)
}

func TestManagerTimestampsAreMilliseconds(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil)
	fixed := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return fixed }

	progress := manager.UpdateTaskProgress("s1", "x")
	assert.Equal(t, fixed.UnixMilli(), progress.Timestamp)
}

func TestSQLiteArchiveRecordsState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	archive, err := OpenSQLiteArchive(ctx, ":memory:")
	require.NoError(t, err)
	defer archive.Close()

	manager := NewManager(archive, nil)
	manager.UpdateTaskProgress("s1", "# working")
	manager.UpdateTaskProgress("s1", "# done")
	manager.SendUserMessage("s1", "hello", MessageInfo)

	count, err := archive.MessageCount("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	history, err := archive.ProgressHistory("s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "# working", history[0].MarkdownContent)
	assert.Equal(t, "# done", history[1].MarkdownContent)
}

func TestClearSessionKeepsArchive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	archive, err := OpenSQLiteArchive(ctx, ":memory:")
	require.NoError(t, err)
	defer archive.Close()

	manager := NewManager(archive, nil)
	manager.SendUserMessage("s1", "kept", MessageInfo)
	manager.ClearSession("s1")

	count, err := archive.MessageCount("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, manager.UserMessages("s1"))
}
