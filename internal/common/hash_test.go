package common_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openthreshold/paillier/internal/common"
)

func TestSHA256iDeterministic(t *testing.T) {
	a := common.SHA256i(big.NewInt(1), big.NewInt(2))
	b := common.SHA256i(big.NewInt(1), big.NewInt(2))
	assert.Equal(t, 0, a.Cmp(b))
}

func TestSHA256iDomainSeparation(t *testing.T) {
	// H(1, 23) must differ from H(12, 3): naive concatenation would collide.
	a := common.SHA256i(big.NewInt(1), big.NewInt(23))
	b := common.SHA256i(big.NewInt(12), big.NewInt(3))
	assert.NotEqual(t, 0, a.Cmp(b))
}

func TestSHA256iEmpty(t *testing.T) {
	assert.Nil(t, common.SHA256i())
}
