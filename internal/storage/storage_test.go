package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/manrura/internal/config"
	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/migrations"
)

func sampleSnapshot() *models.Snapshot {
	snap := directory.DefaultSnapshot()
	snap.Wards = append(snap.Wards, models.Ward{ID: "ward-1700000000000", Name: "Ruang Melati"})
	snap.Assessments = snap.Assessments.With("ward-1", "bab1-el1-p1", models.ScoreRoleAssessor, models.RoleScore{
		Score:      models.Int(8),
		Notes:      "lengkap",
		AssessorID: "user-assessor",
	})
	snap.Periods = []models.AssessmentPeriod{{ID: "p1", Name: "2026", StartDate: "2026-01-01", EndDate: "2026-12-31"}}
	return snap
}

// exerciseKV runs the behaviour every backend must share
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, kv.Ping(ctx))

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":1}`)))
	require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":2}`)))

	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(v))

	store := NewStore(kv)
	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))

	got := store.Load(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// a NUL in free text is escaped as \u0000 and must not break later saves
	want.Assessments = want.Assessments.With("ward-1", "bab1-el1-p2", models.ScoreRoleWardStaff, models.RoleScore{
		Score: models.Int(5),
		Notes: "a\x00b",
	})
	require.NoError(t, store.Save(ctx, want, models.KeyAssessments))
	require.NoError(t, store.Save(ctx, want, models.KeyAssessments))

	got = store.Load(ctx)
	pa, ok := got.Assessments.Lookup("ward-1", "bab1-el1-p2")
	require.True(t, ok)
	assert.Equal(t, "a\x00b", pa.WardStaff.Notes)
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	buf := []byte(`"a"`)
	require.NoError(t, kv.Set(context.Background(), "k", buf))
	buf[1] = 'b'

	v, _, _ := kv.Get(context.Background(), "k")
	assert.Equal(t, `"a"`, string(v))
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "manrura.db")

	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	exerciseKV(t, kv)
	require.NoError(t, kv.Close())

	// state survives reopening the file
	reopened, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	got := NewStore(reopened).Load(context.Background())
	assert.Len(t, got.Wards, 3)
	score, ok := got.Assessments.AssessorScore("ward-1", "bab1-el1-p1")
	assert.True(t, ok)
	assert.Equal(t, 8, score)
}

func TestSQLiteKV_InMemory(t *testing.T) {
	kv, err := NewSQLiteKV(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestPostgresKV(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()

	kv, err := Open(ctx, config.StorageConfig{
		Backend:  BackendPostgres,
		Database: config.DatabaseConfig{DSN: dsn, Table: "manrura_state_test"},
	})
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS not set")
	}

	kv, err := NewRedisKV(context.Background(), RedisConfig{Address: addr, Prefix: "manrura-test:"})
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestStore_LoadEmptyGivesDefaults(t *testing.T) {
	got := NewStore(NewMemoryKV()).Load(context.Background())
	if diff := cmp.Diff(directory.DefaultSnapshot(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_LoadFallsBackPerKey(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, models.KeyUsers, []byte(`{not json`)))
	require.NoError(t, kv.Set(ctx, models.KeyWards, []byte(`[{"id":"w9","name":"Ruang Kenari"}]`)))
	require.NoError(t, kv.Set(ctx, models.KeyAssessments, []byte(`null`)))
	require.NoError(t, kv.Set(ctx, models.KeyPeriods, []byte(`{"wrong":"shape"}`)))

	got := NewStore(kv).Load(ctx)

	assert.Equal(t, directory.DefaultUsers(), got.Users, "malformed users fall back")
	assert.Equal(t, []models.Ward{{ID: "w9", Name: "Ruang Kenari"}}, got.Wards, "valid wards are kept")
	assert.NotNil(t, got.Assessments)
	assert.Empty(t, got.Assessments)
	assert.Empty(t, got.Periods)
}

func TestStore_SaveSelectedKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)

	require.NoError(t, store.Save(ctx, sampleSnapshot(), models.KeyWards))

	_, ok, _ := kv.Get(ctx, models.KeyWards)
	assert.True(t, ok)
	_, ok, _ = kv.Get(ctx, models.KeyUsers)
	assert.False(t, ok)
}

func TestStore_SaveUnknownKey(t *testing.T) {
	err := NewStore(NewMemoryKV()).Save(context.Background(), sampleSnapshot(), "bogus")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpen_Memory(t *testing.T) {
	kv, err := Open(context.Background(), config.StorageConfig{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)
}

func TestEmbeddedMigrations_ConvertValueToBytea(t *testing.T) {
	pending, err := pendingMigrations(migrations.FS, map[string]bool{})
	require.NoError(t, err)
	require.Contains(t, pending, "003_manrura_state_bytea.sql")
	assert.Equal(t, "003_manrura_state_bytea.sql", pending[len(pending)-1])

	sql, err := fs.ReadFile(migrations.FS, "003_manrura_state_bytea.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sql), "TYPE BYTEA")
}

func TestPendingMigrations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_b.sql"), []byte("SELECT 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_a.sql"), []byte("SELECT 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	pending, err := pendingMigrations(os.DirFS(dir), map[string]bool{"001_a.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_b.sql"}, pending)
}
