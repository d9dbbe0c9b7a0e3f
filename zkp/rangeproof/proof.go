// Package rangeproof implements the interactive and non-interactive range
// proof that a Paillier-encrypted value x lies in [0, q/3) for a public
// bound q, following Lindell'17 appendix A / Boudot'00.
package rangeproof

import (
	"crypto/rand"
	"io"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
	"github.com/openthreshold/paillier/numtheory"
	"github.com/openthreshold/paillier/paillier"
)

// Kappa is the statistical error factor: soundness error 2^-Kappa.
const Kappa = 40

// RangeBits is the bit length of the commitment randomness rho and of the
// range q itself in the scenarios this proof is designed for (elliptic
// curve order bit lengths).
const RangeBits = 256

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// EncryptedPairs holds, for each of the Kappa rounds, the two ciphertexts
// c1_i = Enc(w1_i, r1_i) and c2_i = Enc(w2_i, r2_i).
type EncryptedPairs struct {
	C1, C2 []*big.Int
}

// DataRandomnessPairs is the prover's private record of the plaintexts and
// randomness underlying EncryptedPairs.
type DataRandomnessPairs struct {
	W1, W2, R1, R2 []*big.Int
}

// Commitment is the verifier's hiding commitment to its challenge bits,
// published before the prover commits to any ciphertext.
type Commitment struct {
	Com *big.Int
}

// ChallengeRandomness is the opening randomness for a Commitment.
type ChallengeRandomness struct {
	Rho *big.Int
}

// Challenge is a Kappa-bit vector, one bit per round, stored as a
// big-endian byte slice of ceil(Kappa/8) bytes.
type Challenge struct {
	Bits []byte
}

func (c *Challenge) bit(i int) bool {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	return (c.Bits[byteIdx]>>bitIdx)&1 == 1
}

// ResponseKind distinguishes the two shapes a round's response can take.
type ResponseKind int

const (
	// ResponseOpen corresponds to a challenge bit of 0: both pairs of the
	// round are revealed in full.
	ResponseOpen ResponseKind = iota
	// ResponseMask corresponds to a challenge bit of 1: only a masked
	// combination of x with one member of the pair is revealed.
	ResponseMask
)

// Response is one round's entry in a Proof.
type Response struct {
	Kind ResponseKind

	// Populated when Kind == ResponseOpen.
	W1, R1, W2, R2 *big.Int

	// Populated when Kind == ResponseMask. J is 1 or 2, selecting which
	// member of the round's pair was combined with the secret.
	J               int
	MaskedX, MaskedR *big.Int
}

// Proof is the prover's final message: one Response per round.
type Proof struct {
	Responses []Response
}

// commitmentDigest hashes the challenge bits, the hiding commitment step of
// VerifierCommit.
func commitmentDigest(e *Challenge) *big.Int {
	return common.SHA256i(new(big.Int).SetBytes(e.Bits))
}

// hashCommitment computes H(m || r), the commitment scheme used to bind the
// verifier to its challenge before the prover reveals any ciphertext.
func hashCommitment(m, r *big.Int) *big.Int {
	return common.SHA256i(m, r)
}

// VerifierCommit samples a Kappa-bit challenge e and commits to it as
// H(H(e) || rho) for fresh rho, without yet revealing e to the prover.
func VerifierCommit() (*Commitment, *ChallengeRandomness, *Challenge, error) {
	eBytes := make([]byte, (Kappa+7)/8)
	if _, err := io.ReadFull(rand.Reader, eBytes); err != nil {
		return nil, nil, nil, errors.Wrap(err, "rangeproof: sampling challenge")
	}
	e := &Challenge{Bits: eBytes}

	rho, err := numtheory.SampleBits(RangeBits)
	if err != nil {
		return nil, nil, nil, err
	}

	m := commitmentDigest(e)
	com := hashCommitment(m, rho)
	return &Commitment{Com: com}, &ChallengeRandomness{Rho: rho}, e, nil
}

// VerifyCommit lets the prover check that a decommitted (e, rho) matches a
// previously published Commitment.
func VerifyCommit(com *Commitment, cr *ChallengeRandomness, e *Challenge) error {
	m := commitmentDigest(e)
	tag := hashCommitment(m, cr.Rho)
	if com.Com.Cmp(tag) != 0 {
		return errors.Wrap(common.ErrProofFailed, "commitment does not match decommitted challenge")
	}
	return nil
}

// GenerateEncryptedPairs draws, for each of the Kappa rounds, a pair
// (w1_i, w2_i) with exactly one of the pair in [0, range/3) and the other
// in [range/3, 2*range/3), randomly swapped to hide which is which, and
// encrypts both under fresh randomness.
func GenerateEncryptedPairs(ek *paillier.EncryptionKey, rangeBound *big.Int) (*EncryptedPairs, *DataRandomnessPairs, error) {
	third := new(big.Int).Div(rangeBound, three)
	twoThirds := new(big.Int).Mul(two, third)

	w1 := make([]*big.Int, Kappa)
	w2 := make([]*big.Int, Kappa)
	for i := 0; i < Kappa; i++ {
		w, err := numtheory.SampleInterval(third, twoThirds)
		if err != nil {
			return nil, nil, err
		}
		w1[i] = w
		w2[i] = new(big.Int).Sub(w, third)

		swap, err := numtheory.SampleBelow(two)
		if err != nil {
			return nil, nil, err
		}
		if swap.Sign() != 0 {
			w1[i], w2[i] = w2[i], w1[i]
		}
	}

	r1, err := sampleBelowN(ek.N, Kappa)
	if err != nil {
		return nil, nil, err
	}
	r2, err := sampleBelowN(ek.N, Kappa)
	if err != nil {
		return nil, nil, err
	}

	c1 := make([]*big.Int, Kappa)
	c2 := make([]*big.Int, Kappa)
	var wg sync.WaitGroup
	errs := make([]error, Kappa*2)
	for i := 0; i < Kappa; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c1[i], errs[2*i] = paillier.EncryptWithChosenRandomness(ek, w1[i], r1[i])
		}(i)
		go func(i int) {
			defer wg.Done()
			c2[i], errs[2*i+1] = paillier.EncryptWithChosenRandomness(ek, w2[i], r2[i])
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	return &EncryptedPairs{C1: c1, C2: c2}, &DataRandomnessPairs{W1: w1, W2: w2, R1: r1, R2: r2}, nil
}

// GenerateProof answers a Challenge given the secret plaintext/randomness
// and the pairs generated by GenerateEncryptedPairs: for each round with
// challenge bit 0 both pairs are opened, for a round with bit 1 the prover
// reveals a masked combination of the secret and one pair member.
func GenerateProof(ek *paillier.EncryptionKey, secretX, secretR *big.Int, e *Challenge, rangeBound *big.Int, data *DataRandomnessPairs) *Proof {
	third := new(big.Int).Div(rangeBound, three)
	twoThirds := new(big.Int).Mul(two, third)

	inMiddleThird := func(v *big.Int) bool {
		return v.Cmp(third) >= 0 && v.Cmp(twoThirds) < 0
	}

	responses := make([]Response, Kappa)
	for i := 0; i < Kappa; i++ {
		if !e.bit(i) {
			responses[i] = Response{
				Kind: ResponseOpen,
				W1:   data.W1[i], R1: data.R1[i],
				W2: data.W2[i], R2: data.R2[i],
			}
			continue
		}

		sum1 := new(big.Int).Add(secretX, data.W1[i])
		if inMiddleThird(sum1) {
			maskedR := common.ModInt(ek.N).Mul(secretR, data.R1[i])
			responses[i] = Response{Kind: ResponseMask, J: 1, MaskedX: sum1, MaskedR: maskedR}
		} else {
			sum2 := new(big.Int).Add(secretX, data.W2[i])
			maskedR := common.ModInt(ek.N).Mul(secretR, data.R2[i])
			responses[i] = Response{Kind: ResponseMask, J: 2, MaskedX: sum2, MaskedR: maskedR}
		}
	}
	return &Proof{Responses: responses}
}

// VerifierOutput checks every round of a Proof against the committed
// challenge, the published EncryptedPairs, and the ciphertext under test.
// It returns common.ErrProofFailed with no sub-discriminant on any failure,
// so a verifier can never leak which round or which challenge bit broke the
// proof.
func VerifierOutput(ek *paillier.EncryptionKey, e *Challenge, pairs *EncryptedPairs, proof *Proof, rangeBound *big.Int, cipherX *big.Int) error {
	if len(proof.Responses) != Kappa {
		return errors.Wrap(common.ErrProofFailed, "malformed proof length")
	}
	third := new(big.Int).Div(rangeBound, three)
	twoThirds := new(big.Int).Mul(two, third)

	ok := true
	for i, resp := range proof.Responses {
		switch {
		case !e.bit(i) && resp.Kind == ResponseOpen:
			if !checkOpenRound(ek, pairs, i, resp, third, twoThirds) {
				ok = false
			}
		case e.bit(i) && resp.Kind == ResponseMask:
			if !checkMaskRound(ek, pairs, i, resp, third, twoThirds, cipherX) {
				ok = false
			}
		default:
			ok = false
		}
	}

	if !ok {
		return errors.Wrap(common.ErrProofFailed, "range proof verification failed")
	}
	return nil
}

func checkOpenRound(ek *paillier.EncryptionKey, pairs *EncryptedPairs, i int, resp Response, third, twoThirds *big.Int) bool {
	c1, err := paillier.EncryptWithChosenRandomness(ek, resp.W1, resp.R1)
	if err != nil || c1.Cmp(pairs.C1[i]) != 0 {
		return false
	}
	c2, err := paillier.EncryptWithChosenRandomness(ek, resp.W2, resp.R2)
	if err != nil || c2.Cmp(pairs.C2[i]) != 0 {
		return false
	}

	w1InLower := resp.W1.Cmp(third) < 0
	w2InLower := resp.W2.Cmp(third) < 0
	w1InMiddle := resp.W1.Cmp(third) >= 0 && resp.W1.Cmp(twoThirds) < 0
	w2InMiddle := resp.W2.Cmp(third) >= 0 && resp.W2.Cmp(twoThirds) < 0

	return (w1InLower && w2InMiddle) || (w2InLower && w1InMiddle)
}

func checkMaskRound(ek *paillier.EncryptionKey, pairs *EncryptedPairs, i int, resp Response, third, twoThirds *big.Int, cipherX *big.Int) bool {
	encZi, err := paillier.EncryptWithChosenRandomness(ek, resp.MaskedX, resp.MaskedR)
	if err != nil {
		return false
	}

	var cj *big.Int
	switch resp.J {
	case 1:
		cj = pairs.C1[i]
	case 2:
		cj = pairs.C2[i]
	default:
		return false
	}
	c := common.ModInt(ek.NN).Mul(cj, cipherX)
	if c.Cmp(encZi) != 0 {
		return false
	}

	return resp.MaskedX.Cmp(third) >= 0 && resp.MaskedX.Cmp(twoThirds) < 0
}

func sampleBelowN(n *big.Int, count int) ([]*big.Int, error) {
	out := make([]*big.Int, count)
	errs := make([]error, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], errs[i] = numtheory.SampleBelow(n)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, errors.Wrap(err, "rangeproof: sampling randomness")
		}
	}
	return out, nil
}
