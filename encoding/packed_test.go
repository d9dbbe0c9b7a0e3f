package encoding_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthreshold/paillier/encoding"
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

func TestPackUnpackRoundTrip(t *testing.T) {
	v := []uint64{1, 2, 3}
	packed, err := encoding.Pack(v, 64)
	require.NoError(t, err)

	unpacked, err := encoding.Unpack(packed, 64, len(v))
	require.NoError(t, err)
	assert.Equal(t, v, unpacked)
}

func TestPackRejectsBadLayout(t *testing.T) {
	_, err := encoding.Pack([]uint64{1}, 0)
	assert.Error(t, err)

	_, err = encoding.Pack([]uint64{1}, 65)
	assert.Error(t, err)
}

func TestPackedVectorAdd(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c1, err := encoding.EncryptVector(ek, []uint64{1, 2, 3}, 64)
	require.NoError(t, err)
	c2, err := encoding.EncryptVector(ek, []uint64{3, 2, 1}, 64)
	require.NoError(t, err)

	sum, err := encoding.Add(ek, c1, c2)
	require.NoError(t, err)

	got, err := encoding.DecryptVector(dk, sum)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 4, 4}, got)
}

func TestPackedVectorMul(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c1, err := encoding.EncryptVector(ek, []uint64{1, 2, 3}, 64)
	require.NoError(t, err)

	out, err := encoding.MulScalar(ek, c1, big.NewInt(11))
	require.NoError(t, err)

	got, err := encoding.DecryptVector(dk, out)
	require.NoError(t, err)
	assert.Equal(t, []uint64{11, 22, 33}, got)
}

func TestScalarEncodedRoundTrip(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()
	dk, err := kp.DecryptionKey()
	require.NoError(t, err)

	c, err := encoding.EncryptScalar(ek, big.NewInt(10))
	require.NoError(t, err)

	m, err := encoding.DecryptScalar(dk, c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(big.NewInt(10)))
}

func TestAddRejectsMismatchedLayout(t *testing.T) {
	kp := fixedKeypair(t)
	ek := kp.EncryptionKey()

	scalar, err := encoding.EncryptScalar(ek, big.NewInt(1))
	require.NoError(t, err)
	vector, err := encoding.EncryptVector(ek, []uint64{1, 2}, 64)
	require.NoError(t, err)

	_, err = encoding.Add(ek, scalar, vector)
	assert.Error(t, err)
}
