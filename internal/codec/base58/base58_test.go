package base58

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0},
		{0, 0, 1},
		[]byte("hello xrpl"),
		{0x1C, 0x02, 0xAB, 0xCD, 0xEF},
	}

	for _, c := range cases {
		encoded := Encode(c)
		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestCheckEncodeDecodeRoundTrip(t *testing.T) {
	payload := append([]byte{0x1C}, []byte("some compressed public key bytes")...)

	encoded := CheckEncode(payload)
	decoded, err := CheckDecode(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestCheckDecodeRejectsCorruption(t *testing.T) {
	payload := []byte{0x1C, 1, 2, 3, 4}
	encoded := CheckEncode(payload)

	// Flip a character in the middle to simulate bit corruption surviving
	// re-encoding (still valid alphabet characters).
	runes := []byte(encoded)
	for i := range runes {
		if runes[i] != Alphabet[0] {
			orig := runes[i]
			for _, c := range Alphabet {
				if byte(c) != orig {
					runes[i] = byte(c)
					break
				}
			}
			break
		}
	}

	_, err := CheckDecode(string(runes))
	assert.Error(t, err)
}

func TestDecodeRejectsForeignAlphabet(t *testing.T) {
	// '0', 'O', 'I', 'l' are not in the XRPL alphabet either, but pick a
	// character absent from both Bitcoin and XRPL alphabets.
	_, err := Decode("not-base58!")
	assert.ErrorIs(t, err, ErrInvalidCharacter)
}

func TestAlphabetIsRippleNotBitcoin(t *testing.T) {
	const bitcoinAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	assert.NotEqual(t, bitcoinAlphabet, Alphabet)
	assert.Len(t, Alphabet, 58)
}
