package correctkey_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthreshold/paillier/paillier"
	"github.com/openthreshold/paillier/zkp/correctkey"
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

func TestCorrectKeyRoundTrip(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	challenge, aid, err := correctkey.GenerateChallenge(ek)
	require.NoError(t, err)

	proof, err := correctkey.Prove(dk, challenge)
	require.NoError(t, err)

	assert.NoError(t, correctkey.Verify(proof, aid))
}

func TestCorrectKeyRejectsTamperedChallenge(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	challenge, _, err := correctkey.GenerateChallenge(ek)
	require.NoError(t, err)

	challenge.E = new(big.Int).Add(challenge.E, big.NewInt(1))
	_, err = correctkey.Prove(dk, challenge)
	assert.Error(t, err)
}

func TestCorrectKeyRejectsSmallPrimeFactor(t *testing.T) {
	n := big.NewInt(2 * 3 * 5 * 7 * 11)
	ek := &paillier.EncryptionKey{N: n, NN: new(big.Int).Mul(n, n)}

	_, _, err := correctkey.GenerateChallenge(ek)
	assert.Error(t, err)
}

func TestCorrectKeyRejectsTamperedAid(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	challenge, aid, err := correctkey.GenerateChallenge(ek)
	require.NoError(t, err)

	proof, err := correctkey.Prove(dk, challenge)
	require.NoError(t, err)

	aid.SDigest = new(big.Int).Add(aid.SDigest, big.NewInt(1))
	assert.Error(t, correctkey.Verify(proof, aid))
}
