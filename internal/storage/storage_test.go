package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "visor.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestLoadWithoutSnapshot(t *testing.T) {
	s, _ := openTemp(t)

	data, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, data)

	_, ok, err := s.Stat()
	require.NoError(t, err)
	require.False(t, ok)

	changed, err := s.ExternalChange()
	require.NoError(t, err)
	require.False(t, changed)
}

func TestSaveAndLoad(t *testing.T) {
	s, _ := openTemp(t)

	require.NoError(t, s.Save([]byte(`{"tasks":{}}`)))
	require.NoError(t, s.Save([]byte(`{"tasks":{"a":{}}}`)))

	data, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, `{"tasks":{"a":{}}}`, string(data))

	info, ok, err := s.Stat()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), info.Revision)
	require.Equal(t, s.Writer(), info.Writer)
	require.WithinDuration(t, time.Now(), info.UpdatedAt, time.Minute)
}

func TestExternalChangeIgnoresOwnWrites(t *testing.T) {
	a, path := openTemp(t)
	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()
	require.NotEqual(t, a.Writer(), b.Writer())

	require.NoError(t, a.Save([]byte("one")))
	changed, err := a.ExternalChange()
	require.NoError(t, err)
	require.False(t, changed)

	require.NoError(t, b.Save([]byte("two")))
	changed, err = a.ExternalChange()
	require.NoError(t, err)
	require.True(t, changed)

	data, err := a.Load()
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
	changed, err = a.ExternalChange()
	require.NoError(t, err)
	require.False(t, changed)
}

func TestEnsureSchemaUpgradesOldTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE snapshots (id INTEGER PRIMARY KEY, data BLOB NOT NULL, revision INTEGER NOT NULL DEFAULT 1);
INSERT INTO snapshots (id, data, revision) VALUES (1, 'legacy', 7);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "legacy", string(data))
	require.NoError(t, s.Save([]byte("upgraded")))
	info, _, err := s.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(8), info.Revision)
}

func TestWatchReportsWrites(t *testing.T) {
	s, path := openTemp(t)
	other, err := Open(path)
	require.NoError(t, err)
	defer other.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() {
			select {
			case events <- struct{}{}:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		if err := other.Save([]byte("external")); err != nil {
			return false
		}
		select {
		case <-events:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestSqliteDSN(t *testing.T) {
	require.Equal(t, "file:memdb?mode=memory", sqliteDSN("file:memdb?mode=memory"))
	dsn := sqliteDSN("/tmp/visor.db")
	require.True(t, strings.HasPrefix(dsn, "file:///tmp/visor.db?"))
	require.Contains(t, dsn, "mode=rwc")
	require.Contains(t, dsn, "busy_timeout")
}
