package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/tos-network/lockvault/tosdb"
	"github.com/tos-network/lockvault/tosdb/dbtest"
)

func TestLevelDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() tosdb.KeyValueStore {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}
			return &Database{
				db: db,
			}
		})
	})
}

func TestMemoryDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() tosdb.KeyValueStore {
			return NewMemory()
		})
	})
}

func TestReopenPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vaultdata")
	db, err := New(dir, 0, 0, "test/", false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Closing twice is a no-op.
	if err := db.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	db, err = New(dir, 0, 0, "test/", true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, err := db.Get([]byte("k"))
	if err != nil || string(got) != "v" {
		t.Fatalf("reopened value: have %q (%v), want %q", got, err, "v")
	}
	if db.Path() != dir {
		t.Fatalf("path: have %s want %s", db.Path(), dir)
	}
}
