// Package urlcipher implements the two obfuscation primitives the campus
// gateways require: AES-CFB hostname encryption for WebVPN URL rewriting,
// and the legacy 64-bit block cipher that encodes login credentials for
// the SSO form endpoint. Neither is a confidentiality mechanism; both must
// reproduce the remote side's expectations bit for bit.
package urlcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
)

// hostKey is the fixed 16-byte key the WebVPN gateway derives hostnames
// with. By the gateway's construction the key doubles as the IV, so the
// "IV" transmitted in the clear is the key itself. This is obfuscation,
// not secrecy.
var hostKey = []byte("wrdvpnisthebest!")

// EncryptHost encrypts the UTF-8 bytes of host under AES-128-CFB keyed by
// the fixed gateway key, using the key as IV, and returns
// hex(key) + hex(ciphertext). Deterministic: same host, same output.
func EncryptHost(host string) string {
	block, err := aes.NewCipher(hostKey)
	if err != nil {
		// 16-byte constant key; NewCipher cannot fail.
		panic(err)
	}
	src := []byte(host)
	dst := make([]byte, len(src))
	cipher.NewCFBEncrypter(block, hostKey).XORKeyStream(dst, src)
	return hex.EncodeToString(hostKey) + hex.EncodeToString(dst)
}

// DecryptHost reverses EncryptHost. The leading 32 hex digits carry the
// IV; the remainder is the ciphertext.
func DecryptHost(enc string) (string, error) {
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode encrypted host: %w", err)
	}
	if len(raw) < aes.BlockSize {
		return "", errors.New("encrypted host shorter than IV")
	}
	iv, ct := raw[:aes.BlockSize], raw[aes.BlockSize:]
	block, err := aes.NewCipher(hostKey)
	if err != nil {
		panic(err)
	}
	dst := make([]byte, len(ct))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(dst, ct)
	return string(dst), nil
}
