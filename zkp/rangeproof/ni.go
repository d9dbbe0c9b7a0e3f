package rangeproof

import (
	"math/big"

	"github.com/openthreshold/paillier/internal/common"
	"github.com/openthreshold/paillier/paillier"
)

// NIProof bundles the Fiat-Shamir transcript produced by Prove: the
// published pairs, the derived challenge, and the prover's responses.
type NIProof struct {
	Pairs     *EncryptedPairs
	Challenge *Challenge
	Proof     *Proof
}

// deriveChallenge computes the Fiat-Shamir challenge for the
// non-interactive variant as e = H(c1 || c2) over the whole pair vectors,
// not merely their first elements: hashing every round's ciphertexts binds
// the challenge to the full transcript instead of leaving kappa-1 rounds'
// worth of freedom open to a cheating prover.
func deriveChallenge(pairs *EncryptedPairs) *Challenge {
	xs := make([]*big.Int, 0, 2*len(pairs.C1))
	xs = append(xs, pairs.C1...)
	xs = append(xs, pairs.C2...)
	digest := common.SHA256i(xs...)

	bits := make([]byte, (Kappa+7)/8)
	digestBytes := digest.Bytes()
	copy(bits[max(0, len(bits)-len(digestBytes)):], digestBytes)
	return &Challenge{Bits: bits}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Prove runs the complete non-interactive protocol: it generates the
// encrypted pairs, derives the Fiat-Shamir challenge from them, and answers
// it, proving that cipherX = Enc(secretX, secretR) encrypts a value in
// [0, rangeBound/3).
func Prove(ek *paillier.EncryptionKey, rangeBound, secretX, secretR *big.Int) (*NIProof, error) {
	pairs, data, err := GenerateEncryptedPairs(ek, rangeBound)
	if err != nil {
		return nil, err
	}
	e := deriveChallenge(pairs)
	proof := GenerateProof(ek, secretX, secretR, e, rangeBound, data)
	return &NIProof{Pairs: pairs, Challenge: e, Proof: proof}, nil
}

// Verify checks a non-interactive proof produced by Prove against the
// ciphertext cipherX under test, re-deriving the Fiat-Shamir challenge
// rather than trusting the one embedded in niProof.
func Verify(ek *paillier.EncryptionKey, rangeBound *big.Int, cipherX *big.Int, niProof *NIProof) error {
	e := deriveChallenge(niProof.Pairs)
	return VerifierOutput(ek, e, niProof.Pairs, niProof.Proof, rangeBound, cipherX)
}
