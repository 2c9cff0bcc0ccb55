package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpenMemory_PragmasApplied(t *testing.T) {
	db := OpenMemory(t)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys: got %d, want 1", fk)
	}
}

func TestOpen_WithSchema(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE things (id TEXT PRIMARY KEY)`))

	if _, err := db.Exec(`INSERT INTO things (id) VALUES ('a')`); err != nil {
		t.Fatalf("insert into schema table: %v", err)
	}
}

func TestOpen_BadSchema(t *testing.T) {
	_, err := Open(":memory:", WithSchema("NOT VALID SQL"))
	if err == nil {
		t.Fatal("expected schema error")
	}
}

func TestIsBusy(t *testing.T) {
	if IsBusy(nil) {
		t.Error("nil is not busy")
	}
	if !IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("SQLITE_BUSY not recognised")
	}
	if IsBusy(errors.New("no such table: things")) {
		t.Error("unrelated error treated as busy")
	}
}

func TestRunTx_CommitAndRollback(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE things (id TEXT PRIMARY KEY)`))
	ctx := context.Background()

	err := RunTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO things (id) VALUES ('a')`)
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	wantErr := errors.New("abort")
	err = RunTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO things (id) VALUES ('b')`); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("rollback: got %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM things`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows after rollback: got %d, want 1", n)
	}
}
