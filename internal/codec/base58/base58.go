// Package base58 implements Base58Check encoding using the XRPL alphabet.
//
// The XRPL alphabet reorders the digits relative to the Bitcoin alphabet
// used by most base58 libraries, so node public keys and account
// addresses are not valid Bitcoin base58 strings and vice versa.
package base58

import (
	"crypto/sha256"
	"errors"
	"math/big"
)

// Alphabet is the XRPL base58 alphabet (distinct from the Bitcoin alphabet).
const Alphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

const checksumLen = 4

var (
	// ErrInvalidChecksum is returned when a decoded payload's checksum does not match.
	ErrInvalidChecksum = errors.New("base58: invalid checksum")
	// ErrInvalidCharacter is returned when the input contains a character outside the alphabet.
	ErrInvalidCharacter = errors.New("base58: invalid character")
	// ErrTooShort is returned when a Base58Check payload is shorter than the checksum.
	ErrTooShort = errors.New("base58: payload shorter than checksum")
)

var (
	bigRadix  = big.NewInt(58)
	bigZero   = big.NewInt(0)
	decodeMap [256]int8
)

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i, c := range Alphabet {
		decodeMap[byte(c)] = int8(i)
	}
}

// Encode encodes data using the XRPL base58 alphabet, preserving leading
// zero bytes as leading alphabet[0] characters.
func Encode(data []byte) string {
	x := new(big.Int).SetBytes(data)

	answer := make([]byte, 0, len(data)*136/100+1)
	mod := new(big.Int)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		answer = append(answer, Alphabet[mod.Int64()])
	}

	for _, b := range data {
		if b != 0 {
			break
		}
		answer = append(answer, Alphabet[0])
	}

	reverse(answer)
	return string(answer)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Decode decodes an XRPL base58 string back into raw bytes. Returns
// ErrInvalidCharacter on encountering a character outside the alphabet.
func Decode(s string) ([]byte, error) {
	answer := big.NewInt(0)
	scratch := new(big.Int)
	for i := 0; i < len(s); i++ {
		idx := decodeMap[s[i]]
		if idx == -1 {
			return nil, ErrInvalidCharacter
		}
		scratch.SetInt64(int64(idx))
		answer.Mul(answer, bigRadix)
		answer.Add(answer, scratch)
	}

	decoded := answer.Bytes()

	numZeros := 0
	for numZeros < len(s) && s[numZeros] == Alphabet[0] {
		numZeros++
	}

	full := make([]byte, numZeros+len(decoded))
	copy(full[numZeros:], decoded)
	return full, nil
}

// doubleSHA256 computes SHA256(SHA256(data)), the XRPL checksum function.
func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// CheckEncode appends a 4-byte double-SHA256 checksum to payload and
// base58-encodes the result.
func CheckEncode(payload []byte) string {
	checksum := doubleSHA256(payload)[:checksumLen]
	full := make([]byte, 0, len(payload)+checksumLen)
	full = append(full, payload...)
	full = append(full, checksum...)
	return Encode(full)
}

// CheckDecode decodes a Base58Check string and verifies its checksum,
// returning the payload with the checksum stripped.
func CheckDecode(s string) ([]byte, error) {
	decoded, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(decoded) < checksumLen {
		return nil, ErrTooShort
	}

	payloadLen := len(decoded) - checksumLen
	payload := decoded[:payloadLen]
	checksum := decoded[payloadLen:]

	expected := doubleSHA256(payload)[:checksumLen]
	if !equal(checksum, expected) {
		return nil, ErrInvalidChecksum
	}
	return payload, nil
}

func equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
