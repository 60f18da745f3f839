package auth

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Keccak256 is the legacy (pre-NIST) Keccak used across the Ethereum stack.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address.
func ChecksumAddress(address string) (string, error) {
	addr := strings.ToLower(strings.TrimPrefix(address, "0x"))
	if len(addr) != 40 {
		return "", fmt.Errorf("address must be 40 hex chars, got %d", len(addr))
	}
	if _, err := hex.DecodeString(addr); err != nil {
		return "", fmt.Errorf("address is not hex: %w", err)
	}

	hash := hex.EncodeToString(Keccak256([]byte(addr)))
	out := make([]byte, 40)
	for i := 0; i < 40; i++ {
		c := addr[i]
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}

// ValidAddress accepts all-lowercase, all-uppercase, or exact EIP-55
// checksummed hex addresses.
func ValidAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	checksummed, err := ChecksumAddress(address)
	if err != nil {
		return false
	}
	hexPart := address[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return address == checksummed
}

// PersonalDigest hashes a message the way personal_sign does.
func PersonalDigest(message string) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message))
	return Keccak256([]byte(prefix), []byte(message))
}

// Verifier checks that a wallet signed the login message. The real
// implementation belongs to the wallet SDK; the server only needs this seam.
type Verifier interface {
	Verify(address, message, signature string) error
}

// MockVerifier stands in for secp256k1 recovery: the expected signature is
// the Keccak of the personal-sign digest concatenated with the lowercased
// address bytes. Sign produces it, so clients and tests can complete the
// login flow offline.
type MockVerifier struct{}

func (MockVerifier) expected(address, message string) string {
	addr := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return "0x" + hex.EncodeToString(Keccak256(PersonalDigest(message), []byte(addr)))
}

func (v MockVerifier) Sign(address, message string) string {
	return v.expected(address, message)
}

func (v MockVerifier) Verify(address, message, signature string) error {
	if !strings.EqualFold(strings.TrimSpace(signature), v.expected(address, message)) {
		return fmt.Errorf("signature does not match address %s", address)
	}
	return nil
}
