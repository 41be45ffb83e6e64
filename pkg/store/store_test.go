package store

import (
	"path/filepath"
	"testing"
)

func testStoreContract(t *testing.T, st Store) {
	t.Helper()

	if _, ok, err := st.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}
	if err := st.Set("k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := st.Get("k"); err != nil || !ok || v != "v1" {
		t.Fatalf("Get = %q %v %v", v, ok, err)
	}
	if err := st.Set("k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _, _ := st.Get("k"); v != "v2" {
		t.Fatalf("overwrite lost: %q", v)
	}
	if err := st.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := st.Get("k"); ok {
		t.Fatal("Delete left the key behind")
	}
	if err := st.Delete("k"); err != nil {
		t.Fatalf("deleting an absent key must not error: %v", err)
	}
}

func TestMemStore(t *testing.T) {
	st := NewMemStore()
	defer st.Close()
	testStoreContract(t, st)
}

func TestSQLiteStore(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state", "campass.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	testStoreContract(t, st)
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campass.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Set(KeyEaHost, "jwxt2.example.edu.cn"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	if v, ok, err := st2.Get(KeyEaHost); err != nil || !ok || v != "jwxt2.example.edu.cn" {
		t.Fatalf("Get after reopen = %q %v %v", v, ok, err)
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)
	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir = %q, want %q", got, dir)
	}
}
