package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func sampleSnapshot() Snapshot {
	return Snapshot{
		"100": {
			{DurationHours: 2, ImageRef: "https://img/a", CustomMessage: nil},
			{DurationHours: 0.5, ImageRef: "https://img/b", CustomMessage: strp("Boss is up!")},
		},
		"200": {
			{DurationHours: 1.25, ImageRef: "", CustomMessage: strp("")},
		},
	}
}

func TestEntryJSONTuple(t *testing.T) {
	b, err := Entry{DurationHours: 1.5, ImageRef: "img", CustomMessage: nil}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,"img",null]`, string(b))

	var e Entry
	require.NoError(t, e.UnmarshalJSON([]byte(`[2,"x","done"]`)))
	assert.Equal(t, 2.0, e.DurationHours)
	assert.Equal(t, "x", e.ImageRef)
	require.NotNil(t, e.CustomMessage)
	assert.Equal(t, "done", *e.CustomMessage)

	assert.Error(t, e.UnmarshalJSON([]byte(`[2,"x"]`)))
	assert.Error(t, e.UnmarshalJSON([]byte(`{"d":2}`)))
}

func TestJSONFile_MissingFileIsEmpty(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "timers.json"))
	snap, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestJSONFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "timers.json")
	f := NewJSONFile(path)

	require.NoError(t, f.Save(ctx, sampleSnapshot()))
	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"100":[[2,"https://img/a",null],[0.5,"https://img/b","Boss is up!"]],"200":[[1.25,"",""]]}`, string(raw))
}

func TestJSONFile_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	f := NewJSONFile(filepath.Join(t.TempDir(), "timers.json"))
	require.NoError(t, f.Save(ctx, sampleSnapshot()))
	require.NoError(t, f.Save(ctx, Snapshot{"300": {{DurationHours: 1}}}))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"300": {{DurationHours: 1}}}, got)
}

func TestJSONFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": [[1, "a"`), 0o644))
	_, err := NewJSONFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "timers.db")

	r, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	empty, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, r.Save(ctx, sampleSnapshot()))
	require.NoError(t, r.Close())

	// Reopen: migrations must be idempotent and data must survive.
	r, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)

	require.NoError(t, r.Save(ctx, Snapshot{}))
	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "bolt", "x")
	assert.Error(t, err)
}
