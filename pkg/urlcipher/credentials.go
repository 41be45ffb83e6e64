package urlcipher

import (
	"fmt"
	"strconv"
	"strings"
)

// credentialKeys are the three fixed single-character keys the login page
// applies in sequence. Process-wide constants with no lifecycle; they are
// obfuscation parameters matching the remote form handler, not secrets.
var credentialKeys = [3]uint64{
	packBlock([]rune("1")),
	packBlock([]rune("2")),
	packBlock([]rune("3")),
}

// packBlock packs up to four 16-bit code units into a 64-bit block,
// first character in the most significant position, zero-padded.
func packBlock(chunk []rune) uint64 {
	var b uint64
	for i := 0; i < 4; i++ {
		var c rune
		if i < len(chunk) {
			c = chunk[i]
		}
		b = (b << 16) | uint64(uint16(c))
	}
	return b
}

// unpackBlock is the inverse of packBlock; trailing zero code units are
// padding and are dropped by the caller.
func unpackBlock(b uint64) []rune {
	out := make([]rune, 4)
	for i := 3; i >= 0; i-- {
		out[i] = rune(b & 0xFFFF)
		b >>= 16
	}
	return out
}

// EncodeCredentials encodes user+pass+token for the SSO login form: the
// concatenation is split into 64-bit blocks (four characters each, final
// block zero-padded), every block is encrypted sequentially under the
// three fixed keys, and the results are concatenated as hex. Pure and
// deterministic: same input, same output.
func EncodeCredentials(user, pass, token string) string {
	runes := []rune(user + pass + token)
	var b strings.Builder
	for i := 0; i < len(runes); i += 4 {
		end := i + 4
		if end > len(runes) {
			end = len(runes)
		}
		block := packBlock(runes[i:end])
		for _, k := range credentialKeys {
			block = encryptBlock(block, k)
		}
		fmt.Fprintf(&b, "%016x", block)
	}
	return b.String()
}

// DecodeCredentials inverts EncodeCredentials. The remote endpoint never
// needs this; it exists so the cipher pair is verifiable by round-trip.
func DecodeCredentials(enc string) (string, error) {
	if len(enc)%16 != 0 {
		return "", fmt.Errorf("encoded credentials length %d is not a multiple of 16", len(enc))
	}
	var out []rune
	for i := 0; i < len(enc); i += 16 {
		block, err := strconv.ParseUint(enc[i:i+16], 16, 64)
		if err != nil {
			return "", fmt.Errorf("decode credentials block: %w", err)
		}
		for j := len(credentialKeys) - 1; j >= 0; j-- {
			block = decryptBlock(block, credentialKeys[j])
		}
		out = append(out, unpackBlock(block)...)
	}
	// Trailing NULs are block padding.
	for len(out) > 0 && out[len(out)-1] == 0 {
		out = out[:len(out)-1]
	}
	return string(out), nil
}
