package library

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMissingKey(t *testing.T) {
	db := tempDB(t)
	payload, found, err := db.Load(context.Background(), KeyLoans)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found || payload != nil {
		t.Fatalf("expected absent key, got found=%v payload=%q", found, payload)
	}
}

func TestSaveOverwritesCollection(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	if err := db.Save(ctx, KeyCatalog, []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := db.Save(ctx, KeyCatalog, []byte(`[{"id":2}]`)); err != nil {
		t.Fatalf("second save: %v", err)
	}
	payload, found, err := db.Load(ctx, KeyCatalog)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(payload) != `[{"id":2}]` {
		t.Fatalf("want overwritten payload, got %s", payload)
	}
}

func TestLargeCollectionRoundTrip(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	books := GenerateSeedCatalog(NewRand(7), 5000)
	if err := saveCollection(ctx, db, KeyCatalog, books); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, found, err := loadCollection[Book](ctx, db, KeyCatalog)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(got) != len(books) {
		t.Fatalf("want %d books, got %d", len(books), len(got))
	}
	for i := range books {
		if got[i] != books[i] {
			t.Fatalf("book %d differs: want %+v, got %+v", i, books[i], got[i])
		}
	}
}

func TestReopenKeepsCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lib.db")
	ctx := context.Background()

	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := saveCollection(ctx, db, KeyAccounts, []Account{DefaultAdmin}); err != nil {
		t.Fatalf("save: %v", err)
	}
	db.Close()

	db, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	accounts, found, err := loadCollection[Account](ctx, db, KeyAccounts)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(accounts) != 1 || accounts[0] != DefaultAdmin {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}
}

func TestKeys(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	for _, k := range []string{KeyLoans, KeyAccounts, KeyCatalog} {
		if err := db.Save(ctx, k, []byte("[]")); err != nil {
			t.Fatalf("save %s: %v", k, err)
		}
	}
	keys, err := db.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if strings.Join(keys, ",") != "accounts,catalog,loans" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestDecodeErrorIsReported(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	if err := db.Save(ctx, KeyLoans, []byte("not json")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, _, err := loadCollection[Loan](ctx, db, KeyLoans)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if !strings.Contains(err.Error(), "decode loans") {
		t.Fatalf("expected decode prefix, got %v", err)
	}
}
