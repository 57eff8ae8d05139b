package cryptoutils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	hexUpper     = "0123456789ABCDEF"

	// KeyBodyLength is the number of random characters after "sk_<env>_".
	KeyBodyLength = 24
)

// Key environments accepted in API keys.
var KeyEnvironments = []string{"live", "test", "dev"}

// GenerateRandomString generates a random hex string from length random bytes
func GenerateRandomString(length int) (string, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", randomBytes), nil
}

// GenerateRandomInt returns a cryptographically secure integer in [min, max).
func GenerateRandomInt(min, max int) (int, error) {
	if max <= min {
		return 0, fmt.Errorf("invalid range [%d, %d)", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		// The caller should format this with util.PrintErrorf
		return 0, err
	}

	return int(n.Int64()) + min, nil
}

func randomFrom(alphabet string, n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := GenerateRandomInt(0, len(alphabet))
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx])
	}
	return b.String(), nil
}

// GenerateAPIKey returns a new key of the form sk_<env>_<24 alphanumerics>.
func GenerateAPIKey(env string) (string, error) {
	if !validEnv(env) {
		return "", fmt.Errorf("unknown key environment %q", env)
	}
	body, err := randomFrom(alphanumeric, KeyBodyLength)
	if err != nil {
		return "", err
	}
	return "sk_" + env + "_" + body, nil
}

func validEnv(env string) bool {
	for _, e := range KeyEnvironments {
		if e == env {
			return true
		}
	}
	return false
}

// MockHWID returns 32 random upper case hex characters. The Loader page
// shows one as the "hardware id" of the visitor.
func MockHWID() (string, error) {
	return randomFrom(hexUpper, 32)
}

// FingerprintHWID derives an 8 character hardware id from client traits
// (user agent, platform, screen size, language, timezone offset).
// It is a 32-bit rolling hash, h = h*31 + c, not a cryptographic digest.
func FingerprintHWID(components ...string) string {
	combined := strings.Join(components, "|")

	var hash int32
	for _, unit := range utf16Units(combined) {
		hash = (hash << 5) - hash + int32(unit)
	}

	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%08X", abs)
}

// utf16Units splits s the way a browser string is indexed.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

// EncodeAPIKey "encrypts" a key for client side storage. It is base64 and
// nothing more.
func EncodeAPIKey(key string) string {
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecodeAPIKey reverses EncodeAPIKey.
func DecodeAPIKey(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode api key: %w", err)
	}
	return string(raw), nil
}

// KeyOwnerID derives a stable, non-secret owner id from an API key. Records
// owned by a bare key are stored under this id, never under the key itself.
func KeyOwnerID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key_" + hex.EncodeToString(sum[:8])
}
