package paillier_test

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthreshold/paillier/paillier"
)

const (
	fixedP = "148677972634832330983979593310074301486537017973460461278300587514468301043894574906886127642530475786889672304776052879927627556769456140664043088700743909632312483413393134504352834240399191134336344285483935856491230340093391784574980688823380828143810804684752914935441384845195613674104960646037368551517"
	fixedQ = "158741574437007245654463598139927898730476924736461654463975966787719309357536545869203069369466212089132653564188443272208127277664424448947476335413293018778018615899291704693105620242763173357203898195318179150836424196645745308205164116144020613415407736216097185962171301808761138424668335445923774195463"
)

func fixedKeypair(t *testing.T) *paillier.Keypair {
	t.Helper()
	p, ok := new(big.Int).SetString(fixedP, 10)
	require.True(t, ok)
	q, ok := new(big.Int).SetString(fixedQ, 10)
	require.True(t, ok)
	kp, err := paillier.NewKeypair(p, q)
	require.NoError(t, err)
	return kp
}

func TestDecryptionKeyInvariants(t *testing.T) {
	kp := fixedKeypair(t)
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	n := new(big.Int).Mul(dk.P, dk.Q)
	assert.Equal(t, 0, n.Cmp(dk.N))

	pinvP := new(big.Int).Mul(dk.Pinv, dk.P)
	pinvP.Mod(pinvP, dk.Q)
	assert.Equal(t, 0, pinvP.Cmp(big.NewInt(1)))
}

func TestNewKeypairRejectsEqualPrimes(t *testing.T) {
	p := big.NewInt(101)
	_, err := paillier.NewKeypair(p, p)
	assert.Error(t, err)
}

func TestGenerateKeyPairSmallModulus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kp, err := paillier.GenerateKeyPair(ctx, 128, 2)
	require.NoError(t, err)

	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c, err := paillier.Encrypt(ek, big.NewInt(7))
	require.NoError(t, err)
	m, err := paillier.Decrypt(dk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(7)))
}

func TestEncryptionKeyJSONRoundTrip(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()

	data, err := json.Marshal(ek)
	require.NoError(t, err)

	var decoded paillier.EncryptionKey
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, ek.N.Cmp(decoded.N))
	assert.Equal(t, 0, ek.NN.Cmp(decoded.NN))
}

func TestDecryptionKeyJSONRoundTrip(t *testing.T) {
	kp := fixedKeypair(t)
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	data, err := json.Marshal(dk)
	require.NoError(t, err)

	var decoded paillier.DecryptionKey
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, dk.Hp.Cmp(decoded.Hp))
	assert.Equal(t, 0, dk.Hq.Cmp(decoded.Hq))
	assert.Equal(t, 0, dk.Dp.Cmp(decoded.Dp))
}
