package urlcipher

import "testing"

// The classic single-block vector: plaintext 0x0123456789ABCDEF under
// key 0x133457799BBCDFF1 encrypts to 0x85E813540F0AB405.
func TestEncryptBlock(t *testing.T) {
	const (
		plain  = uint64(0x0123456789ABCDEF)
		key    = uint64(0x133457799BBCDFF1)
		cipher = uint64(0x85E813540F0AB405)
	)
	if got := encryptBlock(plain, key); got != cipher {
		t.Fatalf("encryptBlock = %016x, want %016x", got, cipher)
	}
	if got := decryptBlock(cipher, key); got != plain {
		t.Fatalf("decryptBlock = %016x, want %016x", got, plain)
	}
}

func TestBlockRoundTrip(t *testing.T) {
	keys := []uint64{0, 1, 0x133457799BBCDFF1, ^uint64(0)}
	blocks := []uint64{0, 0xFFFFFFFFFFFFFFFF, 0x0011223344556677, 0xDEADBEEFCAFEF00D}
	for _, k := range keys {
		for _, b := range blocks {
			if got := decryptBlock(encryptBlock(b, k), k); got != b {
				t.Errorf("round trip of %016x under key %016x gave %016x", b, k, got)
			}
		}
	}
}
