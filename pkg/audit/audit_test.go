package audit

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashID(t *testing.T) {
	h := HashID("USER-abcd1234")
	assert.Len(t, h, hashPrefixLen)
	assert.Equal(t, h, HashID("USER-abcd1234"), "hash must be deterministic")
	assert.NotEqual(t, h, HashID("USER-abcd1235"))
	assert.NotContains(t, h, "USER", "raw identifier must not leak into the hash")
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(ActionGenerate, HashID("id-1"), true)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Time.IsZero())
	assert.Equal(t, ActionGenerate, ev.Action)
	assert.True(t, ev.Success)
	assert.Nil(t, ev.Metadata)

	// Distinct events get distinct IDs.
	assert.NotEqual(t, ev.ID, NewEvent(ActionGenerate, ev.IDHash, true).ID)

	md := ev.WithMetadata(map[string]string{"mode": "random"})
	assert.Equal(t, "random", md.Metadata["mode"])
	assert.Nil(t, ev.Metadata, "WithMetadata must not mutate the receiver")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Record(ctx, NewEvent(ActionGenerate, HashID("a"), true)))
	require.NoError(t, sink.Record(ctx, NewEvent(ActionVerify, HashID("a"), false)))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var events []Event
	for _, line := range splitLines(data) {
		var ev Event
		require.NoError(t, json.Unmarshal(line, &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, ActionGenerate, events[0].Action)
	assert.Equal(t, ActionVerify, events[1].Action)
	assert.False(t, events[1].Success)

	t.Run("closed sink rejects records", func(t *testing.T) {
		err := sink.Record(ctx, NewEvent(ActionParse, HashID("b"), true))
		assert.ErrorContains(t, err, "closed")
	})

	t.Run("double close is safe", func(t *testing.T) {
		assert.NoError(t, sink.Close())
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		cancel()
		reopened, err := NewFileSink(path)
		require.NoError(t, err)
		defer reopened.Close()
		assert.ErrorIs(t, reopened.Record(cctx, NewEvent(ActionParse, HashID("c"), true)), context.Canceled)
	})
}

func splitLines(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				out = append(out, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, data[start:])
	}
	return out
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, Event) error { return f.err }
func (f failingSink) Close() error                        { return f.err }

func TestMultiSink(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out to all sinks", func(t *testing.T) {
		a, b := NewMemorySink(), NewMemorySink()
		multi := NewMultiSink(a, nil, b)
		require.NoError(t, multi.Record(ctx, NewEvent(ActionGenerate, HashID("x"), true)))
		assert.Len(t, a.Events(), 1)
		assert.Len(t, b.Events(), 1)
	})

	t.Run("keeps delivering after a failure", func(t *testing.T) {
		boom := errors.New("boom")
		mem := NewMemorySink()
		multi := NewMultiSink(failingSink{err: boom}, mem)

		err := multi.Record(ctx, NewEvent(ActionVerify, HashID("y"), true))
		assert.ErrorIs(t, err, boom)
		assert.Len(t, mem.Events(), 1, "healthy sink still receives the event")
		assert.ErrorIs(t, multi.Close(), boom)
	})
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, NewEvent(ActionGenerate, HashID("1"), true)))
	require.NoError(t, sink.Record(ctx, NewEvent(ActionRevoke, HashID("1"), true)))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, ActionRevoke, events[1].Action)

	// Events returns a copy; mutating it does not affect the sink.
	events[0].Action = "mutated"
	assert.Equal(t, ActionGenerate, sink.Events()[0].Action)
}

func TestNoOpSink(t *testing.T) {
	var sink NoOpSink
	assert.NoError(t, sink.Record(context.Background(), NewEvent(ActionParse, HashID("z"), true)))
	assert.NoError(t, sink.Close())
}
