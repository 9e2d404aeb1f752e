package sharedvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	local := []byte("local_finished_message_12345678")
	peer := []byte("peer_finished_message_12345678_")

	v1, err := Derive(local, peer)
	require.NoError(t, err)
	assert.Len(t, v1, Len)

	v2, err := Derive(local, peer)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestDeriveIsSymmetricAcrossSwappedInputs(t *testing.T) {
	a := []byte("side_a_finished_message_1234567")
	b := []byte("side_b_finished_message_1234567")

	fromA, err := Derive(a, b)
	require.NoError(t, err)

	fromB, err := Derive(b, a)
	require.NoError(t, err)

	assert.Equal(t, fromA, fromB, "both peers must derive the identical shared value")
}

func TestDeriveDiffersOnSingleBitPerturbation(t *testing.T) {
	local := []byte("local_finished_message_12345678")
	peer := []byte("peer_finished_message_12345678_")

	base, err := Derive(local, peer)
	require.NoError(t, err)

	perturbedPeer := append([]byte(nil), peer...)
	perturbedPeer[0] ^= 0x01
	perturbed, err := Derive(local, perturbedPeer)
	require.NoError(t, err)

	assert.NotEqual(t, base, perturbed)

	perturbedLocal := append([]byte(nil), local...)
	perturbedLocal[len(perturbedLocal)-1] ^= 0x80
	perturbed2, err := Derive(perturbedLocal, peer)
	require.NoError(t, err)

	assert.NotEqual(t, base, perturbed2)
}

func TestDeriveRejectsShortInputs(t *testing.T) {
	tests := []struct {
		name  string
		local []byte
		peer  []byte
	}{
		{"local too short", []byte("short"), []byte("a_valid_length_finished_message")},
		{"peer too short", []byte("a_valid_length_finished_message"), []byte("short")},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.local, tt.peer)
			assert.ErrorIs(t, err, ErrTooShort)
		})
	}
}

func TestDeriveRejectsIdenticalFinished(t *testing.T) {
	same := []byte("identical_on_both_sides_message!")
	_, err := Derive(same, same)
	assert.ErrorIs(t, err, ErrIdenticalFinished)
}
