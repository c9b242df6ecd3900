package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	mr := miniredis.RunT(t)
	redisStore := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	sqliteStore, err := OpenSQLiteStore(ctx, filepath.Join(dir, "sessions.db"))
	require.NoError(t, err)

	boltStore, err := OpenBoltStore(filepath.Join(dir, "sessions.bolt"))
	require.NoError(t, err)

	stores := map[string]Store{
		BackendMemory: NewMemoryStore(),
		BackendRedis:  redisStore,
		BackendSQLite: sqliteStore,
		BackendBolt:   boltStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Ping(ctx))

			t.Run("missing session loads empty", func(t *testing.T) {
				data, err := store.Load(ctx, "never-saved")
				require.NoError(t, err)
				assert.NotNil(t, data.Answers)
				assert.Empty(t, data.Answers)
			})

			t.Run("save then load", func(t *testing.T) {
				data := NewData()
				data.Answers["1"] = map[string]map[string]string{
					"10": {"text": "a"},
					"11": {"day": "1", "month": "2", "year": "2022"},
				}
				require.NoError(t, store.Save(ctx, "s1", data))

				loaded, err := store.Load(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, data.Answers, loaded.Answers)
			})

			t.Run("submitted marker survives a round trip", func(t *testing.T) {
				data := NewData()
				data.Answers["2"] = nil
				data.Answers["3"] = map[string]map[string]string{"30": {"email": "a@example.com"}}
				require.NoError(t, store.Save(ctx, "s2", data))

				loaded, err := store.Load(ctx, "s2")
				require.NoError(t, err)

				entry, present := loaded.Answers["2"]
				assert.True(t, present)
				assert.Nil(t, entry)
				assert.Len(t, loaded.Answers["3"], 1)
			})

			t.Run("save overwrites", func(t *testing.T) {
				first := NewData()
				first.Answers["1"] = map[string]map[string]string{"10": {"text": "first"}}
				require.NoError(t, store.Save(ctx, "s3", first))

				second := NewData()
				second.Answers["1"] = map[string]map[string]string{"10": {"text": "second"}}
				require.NoError(t, store.Save(ctx, "s3", second))

				loaded, err := store.Load(ctx, "s3")
				require.NoError(t, err)
				assert.Equal(t, "second", loaded.Answers["1"]["10"]["text"])
			})

			t.Run("delete", func(t *testing.T) {
				data := NewData()
				data.Answers["1"] = map[string]map[string]string{"10": {"text": "a"}}
				require.NoError(t, store.Save(ctx, "s4", data))
				require.NoError(t, store.Delete(ctx, "s4"))
				require.NoError(t, store.Delete(ctx, "s4"), "deleting twice is not an error")

				loaded, err := store.Load(ctx, "s4")
				require.NoError(t, err)
				assert.Empty(t, loaded.Answers)
			})
		})
	}
}

func TestRedisStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 30*time.Minute)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), "abc", NewData()))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:abc"))

	mr.FastForward(31 * time.Minute)
	loaded, err := store.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, loaded.Answers)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	defer store.Close()

	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionCorrupt, apperrors.CodeOf(err))
}

func TestSQLiteStoreDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, "old", NewData()))

	n, err := store.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeleteOlderThan(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := NewData()
			data.Answers["1"] = map[string]map[string]string{"10": {"text": "x"}}
			_ = store.Save(ctx, "shared", data)
			_, _ = store.Load(ctx, "shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		opts     Options
		wantType Store
		wantErr  bool
	}{
		{name: "default", opts: Options{}, wantType: &MemoryStore{}},
		{name: "memory", opts: Options{Backend: BackendMemory}, wantType: &MemoryStore{}},
		{name: "redis", opts: Options{Backend: BackendRedis, DSN: "redis://" + mr.Addr() + "/0"}, wantType: &RedisStore{}},
		{name: "sqlite", opts: Options{Backend: BackendSQLite, DSN: filepath.Join(dir, "s.db")}, wantType: &SQLiteStore{}},
		{name: "bolt", opts: Options{Backend: BackendBolt, DSN: filepath.Join(dir, "s.bolt")}, wantType: &BoltStore{}},
		{name: "bad redis url", opts: Options{Backend: BackendRedis, DSN: "not a url"}, wantErr: true},
		{name: "unknown", opts: Options{Backend: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.wantType, store)
		})
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestCookieSigner(t *testing.T) {
	signer := NewCookieSigner("secret")
	id := NewID()
	value := signer.Sign(id)

	got, ok := signer.Verify(value)
	require.True(t, ok)
	assert.Equal(t, id, got)

	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "unsigned", value: id},
		{name: "empty signature", value: id + "."},
		{name: "empty id", value: "." + value[len(id)+1:]},
		{name: "swapped id", value: NewID() + value[len(id):]},
		{name: "other secret", value: NewCookieSigner("other").Sign(id)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := signer.Verify(tt.value)
			assert.False(t, ok)
		})
	}
}
