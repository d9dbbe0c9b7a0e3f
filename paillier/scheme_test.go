package paillier_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthreshold/paillier/paillier"
)

func TestFixedPrimesEncryptDecrypt(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c, err := paillier.EncryptWithChosenRandomness(ek, big.NewInt(10), big.NewInt(2))
	require.NoError(t, err)
	assert.True(t, c.Sign() >= 0)
	assert.True(t, c.Cmp(ek.NN) < 0)

	m, err := paillier.Decrypt(dk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(10)))
}

func TestAddScalar(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c1, err := paillier.Encrypt(ek, big.NewInt(10))
	require.NoError(t, err)
	c2, err := paillier.Encrypt(ek, big.NewInt(20))
	require.NoError(t, err)

	c, err := paillier.Add(ek, c1, c2)
	require.NoError(t, err)

	m, err := paillier.Decrypt(dk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(30)))
}

func TestMulByPlaintext(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c1, err := paillier.Encrypt(ek, big.NewInt(10))
	require.NoError(t, err)

	c, err := paillier.Mul(ek, c1, big.NewInt(20))
	require.NoError(t, err)

	m, err := paillier.Decrypt(dk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(200)))
}

func TestOpenRoundTrip(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c, err := paillier.Encrypt(ek, big.NewInt(10))
	require.NoError(t, err)

	m, r, err := paillier.Open(dk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(10)))

	d, err := paillier.EncryptWithChosenRandomness(ek, m, r)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Cmp(d))
}

func TestRerandomizePreservesPlaintext(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c, err := paillier.Encrypt(ek, big.NewInt(42))
	require.NoError(t, err)

	c2, err := paillier.Rerandomize(ek, c)
	require.NoError(t, err)
	assert.NotEqual(t, 0, c.Cmp(c2))

	m, err := paillier.Decrypt(dk, c2)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(42)))
}

func TestVotingTally(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	tally, err := paillier.Encrypt(ek, big.NewInt(0))
	require.NoError(t, err)

	votes := []int64{1, 0, 1, 1, 0, 1, 0, 0, 1, 1}
	want := int64(0)
	for _, v := range votes {
		want += v
		vc, err := paillier.Encrypt(ek, big.NewInt(v))
		require.NoError(t, err)
		tally, err = paillier.Add(ek, tally, vc)
		require.NoError(t, err)
	}

	tally, err = paillier.Rerandomize(ek, tally)
	require.NoError(t, err)

	m, err := paillier.Decrypt(dk, tally)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(want)))
}

func TestEncryptRejectsOutOfRangePlaintext(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()

	_, err := paillier.Encrypt(ek, big.NewInt(-1))
	assert.Error(t, err)

	_, err = paillier.Encrypt(ek, ek.N)
	assert.Error(t, err)
}

func TestEncryptWithChosenRandomnessRejectsZero(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()

	_, err := paillier.EncryptWithChosenRandomness(ek, big.NewInt(10), big.NewInt(0))
	assert.Error(t, err)
}

func TestBoundaryPlaintexts(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	nMinus1 := new(big.Int).Sub(ek.N, big.NewInt(1))
	for _, m := range []*big.Int{big.NewInt(0), nMinus1} {
		c, err := paillier.Encrypt(ek, m)
		require.NoError(t, err)
		got, err := paillier.Decrypt(dk, c)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got))
	}
}
