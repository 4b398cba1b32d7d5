package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipso-client-coap/lwm2m"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var value = lwm2m.Path{Object: 3303, Resource: 5700}

func TestDeliverAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, v := range []float64{20, 21.5, 19.25} {
		s.now = func() time.Time { return time.UnixMilli(int64(1000 * (i + 1))) }
		require.NoError(t, s.Deliver(ctx, []lwm2m.Snapshot{
			{Path: value, Value: lwm2m.Float(v)},
			{Path: lwm2m.Path{Object: 3303, Resource: 5601}, Value: lwm2m.Float(19.25)},
		}))
	}

	entries, err := s.Recent(ctx, value, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 19.25, entries[0].Value.Float())
	assert.Equal(t, time.UnixMilli(3000), entries[0].Time)
	assert.Equal(t, 21.5, entries[1].Value.Float())
	assert.Equal(t, value, entries[1].Path)
}

func TestRecentDecodesEveryType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	values := []lwm2m.Value{
		lwm2m.Integer(-4),
		lwm2m.Boolean(true),
		lwm2m.String("Celsius deg"),
		lwm2m.Opaque([]byte{0, 1, 2}),
		lwm2m.Float(0.5),
	}
	for i, v := range values {
		s.now = func() time.Time { return time.UnixMilli(int64(i + 1)) }
		require.NoError(t, s.Deliver(ctx, []lwm2m.Snapshot{{Path: value, ResourceInstance: 1, Value: v}}))
	}

	entries, err := s.Recent(ctx, value, 10)
	require.NoError(t, err)
	require.Len(t, entries, len(values))
	for i, e := range entries {
		want := values[len(values)-1-i]
		assert.True(t, want.Equal(e.Value), "got %v want %v", e.Value, want)
		assert.Equal(t, lwm2m.ResourceInstanceID(1), e.ResourceInstance)
	}
}

func TestDeliverNothing(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Deliver(context.Background(), nil))

	entries, err := s.Recent(context.Background(), value, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecentCorruptRow(t *testing.T) {
	s := openTestStore(t)
	_, err := s.db.Exec(`INSERT INTO resource_values
		(recorded_at, object_id, instance_id, resource_id, value_type, value)
		VALUES (1, 3303, 0, 5700, ?, 'warm')`, int(lwm2m.TypeFloat))
	require.NoError(t, err)

	_, err = s.Recent(context.Background(), value, 1)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Deliver(context.Background(), []lwm2m.Snapshot{{Path: value, Value: lwm2m.Float(1)}}))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.Recent(context.Background(), value, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "history", s.Name())
}
