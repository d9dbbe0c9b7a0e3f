// Package correctkey implements a non-interactive zero-knowledge proof
// that a Paillier encryption modulus n is coprime with its Euler totient
// φ(n), i.e. that n-th roots modulo n are unique and the prover holding the
// decryption key can compute them. The protocol follows Gennaro-Micciancio-
// Rabin, made non-interactive via Fiat-Shamir.
package correctkey

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
	"github.com/openthreshold/paillier/numtheory"
	"github.com/openthreshold/paillier/paillier"
)

// Kappa is the statistical error factor: the soundness error of the
// protocol is 2^-Kappa.
const Kappa = 40

// Challenge is the verifier's first (and only) message: a vector of
// n-powers sn, the Fiat-Shamir challenge e derived from them, and the
// masked responses z.
type Challenge struct {
	Sn []*big.Int
	E  *big.Int
	Z  []*big.Int
}

// VerificationAid is the verifier's private record, never sent to the
// prover, used to check the returned proof.
type VerificationAid struct {
	SDigest *big.Int
}

// Proof is the prover's single message: a hash of the recovered n-th roots.
type Proof struct {
	SDigest *big.Int
}

// GenerateChallenge samples the verifier's challenge for ek. It returns the
// Challenge sent to the prover and the VerificationAid kept secret by the
// verifier.
func GenerateChallenge(ek *paillier.EncryptionKey) (*Challenge, *VerificationAid, error) {
	if hasSmallPrimeFactor(ek.N) {
		return nil, nil, errors.Wrap(common.ErrBadKey, "modulus has a small prime factor")
	}

	s, err := sampleBelowN(ek.N)
	if err != nil {
		return nil, nil, err
	}
	sn := modPowAll(s, ek.N, ek.NN)

	r, err := sampleBelowN(ek.N)
	if err != nil {
		return nil, nil, err
	}
	rn := modPowAll(r, ek.N, ek.NN)

	e := digestConcat(append([]*big.Int{ek.N}, append(append([]*big.Int{}, sn...), rn...)...))

	z := make([]*big.Int, Kappa)
	for i := 0; i < Kappa; i++ {
		siToE := numtheory.ModPow(s[i], e, ek.NN)
		z[i] = common.ModInt(ek.NN).Mul(r[i], siToE)
	}

	aid := &VerificationAid{SDigest: digestConcat(s)}
	return &Challenge{Sn: sn, E: e, Z: z}, aid, nil
}

// Prove consumes a Challenge under dk and returns the Proof, or
// common.ErrProofFailed if any of the challenge's internal consistency
// checks fail. No sub-discriminant is returned: which check failed must not
// be observable.
func Prove(dk *paillier.DecryptionKey, ch *Challenge) (*Proof, error) {
	if len(ch.Sn) != Kappa || len(ch.Z) != Kappa {
		return nil, errors.Wrap(common.ErrProofFailed, "malformed challenge length")
	}

	ok := true
	for _, sni := range ch.Sn {
		if !numtheory.IsCoprime(sni, dk.N) {
			ok = false
		}
	}
	for _, zi := range ch.Z {
		if !numtheory.IsCoprime(zi, dk.N) {
			ok = false
		}
	}

	phiMine := new(big.Int).Mod(ch.E, dk.Phi)
	phiMine.Sub(dk.Phi, phiMine)

	rn := make([]*big.Int, Kappa)
	for i := 0; i < Kappa; i++ {
		zn := numtheory.ModPow(ch.Z[i], dk.N, dk.NN)
		snPhi := numtheory.ModPow(ch.Sn[i], phiMine, dk.NN)
		rn[i] = common.ModInt(dk.NN).Mul(zn, snPhi)
	}
	for _, rni := range rn {
		if !numtheory.IsCoprime(rni, dk.N) {
			ok = false
		}
	}

	e := digestConcat(append([]*big.Int{dk.N}, append(append([]*big.Int{}, ch.Sn...), rn...)...))
	if e.Cmp(ch.E) != 0 {
		ok = false
	}

	if !ok {
		return nil, errors.Wrap(common.ErrProofFailed, "challenge failed internal consistency check")
	}

	s := make([]*big.Int, Kappa)
	for i, sni := range ch.Sn {
		s[i] = paillier.ExtractNroot(dk, sni)
	}
	return &Proof{SDigest: digestConcat(s)}, nil
}

// Verify checks a Proof against the VerificationAid produced alongside its
// Challenge.
func Verify(proof *Proof, aid *VerificationAid) error {
	if proof.SDigest.Cmp(aid.SDigest) != 0 {
		return errors.Wrap(common.ErrProofFailed, "proof digest does not match verification aid")
	}
	return nil
}

func sampleBelowN(n *big.Int) ([]*big.Int, error) {
	out := make([]*big.Int, Kappa)
	errs := make([]error, Kappa)
	var wg sync.WaitGroup
	for i := 0; i < Kappa; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], errs[i] = numtheory.SampleBelow(n)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, errors.Wrap(err, "correctkey: sampling challenge values")
		}
	}
	return out, nil
}

func modPowAll(xs []*big.Int, e, m *big.Int) []*big.Int {
	out := make([]*big.Int, len(xs))
	var wg sync.WaitGroup
	for i, x := range xs {
		wg.Add(1)
		go func(i int, x *big.Int) {
			defer wg.Done()
			out[i] = numtheory.ModPow(x, e, m)
		}(i, x)
	}
	wg.Wait()
	return out
}

// digestConcat hashes the domain-separated concatenation of xs with
// common.SHA256i, the Fiat-Shamir challenge used throughout this protocol.
func digestConcat(xs []*big.Int) *big.Int {
	return common.SHA256i(xs...)
}
