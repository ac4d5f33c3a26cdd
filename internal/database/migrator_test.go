package database

import (
	"testing"
	"testing/fstest"

	"github.com/VyasaPraveen/Pragathi-CRM/migrations"
)

func TestPending(t *testing.T) {
	files := fstest.MapFS{
		"002_documents.sql": {Data: []byte("select 2")},
		"001_users.sql":     {Data: []byte("select 1")},
		"003_reset_all.sql": {Data: []byte("drop table users")},
		"README.md":         {Data: []byte("notes")},
	}

	got, err := Pending(files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "001_users.sql" || got[1] != "002_documents.sql" {
		t.Fatalf("pending = %v", got)
	}

	got, _ = Pending(files, map[string]bool{"001_users.sql": true})
	if len(got) != 1 || got[0] != "002_documents.sql" {
		t.Fatalf("pending after 001 = %v", got)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := Pending(migrations.FS, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 || got[0] != "001_users.sql" {
		t.Fatalf("embedded migrations = %v", got)
	}
}
