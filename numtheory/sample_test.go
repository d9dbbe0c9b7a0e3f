package numtheory_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openthreshold/paillier/numtheory"
)

func TestSampleBitsLength(t *testing.T) {
	n, err := numtheory.SampleBits(256)
	assert.NoError(t, err)
	assert.True(t, n.BitLen() <= 256)
}

func TestSampleBitsRejectsOutOfRange(t *testing.T) {
	_, err := numtheory.SampleBits(0)
	assert.Error(t, err)

	_, err = numtheory.SampleBits(100000)
	assert.Error(t, err)
}

func TestSampleBelowRange(t *testing.T) {
	bound := big.NewInt(1000)
	for i := 0; i < 50; i++ {
		n, err := numtheory.SampleBelow(bound)
		assert.NoError(t, err)
		assert.True(t, n.Sign() >= 0)
		assert.True(t, n.Cmp(bound) < 0)
	}
}

func TestSampleBelowRejectsNonPositive(t *testing.T) {
	_, err := numtheory.SampleBelow(big.NewInt(0))
	assert.Error(t, err)
}

func TestSampleInterval(t *testing.T) {
	lo, hi := big.NewInt(50), big.NewInt(60)
	for i := 0; i < 50; i++ {
		n, err := numtheory.SampleInterval(lo, hi)
		assert.NoError(t, err)
		assert.True(t, n.Cmp(lo) >= 0)
		assert.True(t, n.Cmp(hi) < 0)
	}
}

func TestSampleIntervalRejectsEmptyRange(t *testing.T) {
	_, err := numtheory.SampleInterval(big.NewInt(10), big.NewInt(10))
	assert.Error(t, err)
}

func TestSamplePositiveCoprimeTo(t *testing.T) {
	n := big.NewInt(35) // 5 * 7
	for i := 0; i < 50; i++ {
		x, err := numtheory.SamplePositiveCoprimeTo(n)
		assert.NoError(t, err)
		assert.True(t, numtheory.IsCoprime(x, n))
	}
}

func TestIsCoprime(t *testing.T) {
	assert.True(t, numtheory.IsCoprime(big.NewInt(9), big.NewInt(28)))
	assert.False(t, numtheory.IsCoprime(big.NewInt(9), big.NewInt(6)))
}
