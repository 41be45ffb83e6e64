package keyring

import (
	"bytes"
	"errors"
	"testing"
)

func withFakeKeyring(t *testing.T) map[string]string {
	t.Helper()
	stored := map[string]string{}
	origSet, origGet, origDelete := keyringSet, keyringGet, keyringDelete
	keyringSet = func(service, user, password string) error {
		stored[service+"/"+user] = password
		return nil
	}
	keyringGet = func(service, user string) (string, error) {
		v, ok := stored[service+"/"+user]
		if !ok {
			return "", errors.New("secret not found in keyring")
		}
		return v, nil
	}
	keyringDelete = func(service, user string) error {
		delete(stored, service+"/"+user)
		return nil
	}
	t.Cleanup(func() {
		keyringSet, keyringGet, keyringDelete = origSet, origGet, origDelete
	})
	return stored
}

func TestKeyringSetGetDelete(t *testing.T) {
	withFakeKeyring(t)
	k := NewKeyring()

	if _, err := k.GetKey(); err == nil {
		t.Fatal("GetKey on an empty keyring must fail")
	}

	key, err := k.SetKey()
	if err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("key length = %d, want 32", len(key))
	}

	got, err := k.GetKey()
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("GetKey returned a different key than SetKey stored")
	}

	if err := k.DeleteKey(); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if _, err := k.GetKey(); err == nil {
		t.Error("GetKey after DeleteKey must fail")
	}
}

func TestKeyringSetKeyRandFailure(t *testing.T) {
	withFakeKeyring(t)
	orig := randRead
	randRead = func(b []byte) (int, error) { return 0, errors.New("entropy exhausted") }
	t.Cleanup(func() { randRead = orig })

	if _, err := NewKeyring().SetKey(); err == nil {
		t.Fatal("SetKey must surface a rand failure")
	}
}
