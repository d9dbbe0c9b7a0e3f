package paillier

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
	"github.com/openthreshold/paillier/numtheory"
)

// PrecomputedRandomness is an opaque r^n mod n^2 value, computed once and
// reusable across many encryptions under the same key — the batch-encrypt
// fast path callers rely on.
type PrecomputedRandomness struct {
	rn *big.Int
}

// PrecomputeRandomness raises r to the n-th power mod n^2 once so repeated
// encryptions with the same randomness skip the exponentiation.
func PrecomputeRandomness(ek *EncryptionKey, r *big.Int) (*PrecomputedRandomness, error) {
	if r == nil || r.Sign() == 0 {
		return nil, errors.Wrap(common.ErrInvalidParameter, "r must be non-zero")
	}
	return &PrecomputedRandomness{rn: numtheory.ModPow(r, ek.N, ek.NN)}, nil
}

func validatePlaintext(ek *EncryptionKey, m *big.Int) error {
	if m == nil || !common.IsInInterval(m, ek.N) {
		return errors.Wrapf(common.ErrInvalidPlaintext, "m must be in [0, n)")
	}
	return nil
}

func validateCiphertext(ek *EncryptionKey, c *big.Int) error {
	if c == nil || !common.IsInInterval(c, ek.NN) {
		return errors.Wrapf(common.ErrInvalidCiphertext, "c must be in [0, n^2)")
	}
	return nil
}

// Encrypt samples r uniformly from [1, n) and returns
// c = (1 + m*n) * r^n mod n^2.
func Encrypt(ek *EncryptionKey, m *big.Int) (*big.Int, error) {
	r, err := numtheory.SampleInterval(one, ek.N)
	if err != nil {
		return nil, errors.Wrap(err, "paillier: sampling randomness")
	}
	return EncryptWithChosenRandomness(ek, m, r)
}

// EncryptWithChosenRandomness encrypts m using caller-supplied randomness
// r. r = 0 is rejected: it would break the hiding property.
func EncryptWithChosenRandomness(ek *EncryptionKey, m, r *big.Int) (*big.Int, error) {
	if err := validatePlaintext(ek, m); err != nil {
		return nil, err
	}
	if r == nil || r.Sign() == 0 {
		return nil, errors.Wrap(common.ErrInvalidParameter, "r must be non-zero")
	}
	pr, err := PrecomputeRandomness(ek, r)
	if err != nil {
		return nil, err
	}
	return EncryptWithPrecomputedRandomness(ek, m, pr)
}

// EncryptWithPrecomputedRandomness encrypts m reusing a previously computed
// r^n mod n^2, the fast path for batch encryption under one key.
func EncryptWithPrecomputedRandomness(ek *EncryptionKey, m *big.Int, pr *PrecomputedRandomness) (*big.Int, error) {
	if err := validatePlaintext(ek, m); err != nil {
		return nil, err
	}
	// 1 + m*n, reduced mod n^2; linear because (1+n)^m == 1+m*n (mod n^2).
	gm := new(big.Int).Mul(m, ek.N)
	gm.Add(gm, one)
	gm.Mod(gm, ek.NN)
	return common.ModInt(ek.NN).Mul(gm, pr.rn), nil
}

// Decrypt recovers the plaintext underlying c using the CRT-accelerated
// L-function inversion: c is reduced independently mod p^2 and mod q^2,
// decrypted in each half, then recombined via CRT.
func Decrypt(dk *DecryptionKey, c *big.Int) (*big.Int, error) {
	ek := &EncryptionKey{N: dk.N, NN: dk.NN}
	if err := validateCiphertext(ek, c); err != nil {
		return nil, err
	}

	cp, cq := numtheory.CRTDecompose(c, dk.PP, dk.QQ)

	up := numtheory.ModPow(cp, dk.PMinusOne, dk.PP)
	lp := numtheory.L(up, dk.P)
	mp := common.ModInt(dk.P).Mul(lp, dk.Hp)

	uq := numtheory.ModPow(cq, dk.QMinusOne, dk.QQ)
	lq := numtheory.L(uq, dk.Q)
	mq := common.ModInt(dk.Q).Mul(lq, dk.Hq)

	return numtheory.CRTRecombine(mp, mq, dk.P, dk.Q, dk.Pinv), nil
}

// extractNroot recovers r from z = r^n mod n^2 using the cached dp, dq
// exponents, a building block shared between Open and the correct-key
// proof.
func extractNroot(dk *DecryptionKey, z *big.Int) *big.Int {
	zp, zq := numtheory.CRTDecompose(z, dk.P, dk.Q)
	rp := numtheory.ModPow(zp, dk.Dp, dk.P)
	rq := numtheory.ModPow(zq, dk.Dq, dk.Q)
	return numtheory.CRTRecombine(rp, rq, dk.P, dk.Q, dk.Pinv)
}

// ExtractNroot is the exported form of extractNroot, reused by the
// correct-key proof to recover s_i = nroot_n(sn_i).
func ExtractNroot(dk *DecryptionKey, z *big.Int) *big.Int {
	return extractNroot(dk, z)
}

// Open decrypts c and also recovers the randomness r used to produce it,
// so that EncryptWithChosenRandomness(ek, m, r) reproduces c exactly.
func Open(dk *DecryptionKey, c *big.Int) (m, r *big.Int, err error) {
	m, err = Decrypt(dk, c)
	if err != nil {
		return nil, nil, err
	}
	// gmInv = (1 + m*n)^-1 mod n^2, computed directly as (1 - m*n) mod n^2
	// since (1+m*n) * (1-m*n) = 1 - m^2*n^2 == 1 (mod n^2).
	gmInv := new(big.Int).Mul(m, dk.N)
	gmInv.Sub(one, gmInv)
	gmInv.Mod(gmInv, dk.NN)

	rn := common.ModInt(dk.NN).Mul(c, gmInv)
	r = extractNroot(dk, rn)
	return m, r, nil
}

// Rerandomize samples fresh randomness r' and returns c * r'^n mod n^2, a
// ciphertext encrypting the same plaintext as c.
func Rerandomize(ek *EncryptionKey, c *big.Int) (*big.Int, error) {
	if err := validateCiphertext(ek, c); err != nil {
		return nil, err
	}
	r, err := numtheory.SampleInterval(one, ek.N)
	if err != nil {
		return nil, errors.Wrap(err, "paillier: sampling randomness")
	}
	rn := numtheory.ModPow(r, ek.N, ek.NN)
	return common.ModInt(ek.NN).Mul(c, rn), nil
}

// Add returns c1*c2 mod n^2, the ciphertext encrypting m1+m2 mod n.
func Add(ek *EncryptionKey, c1, c2 *big.Int) (*big.Int, error) {
	if err := validateCiphertext(ek, c1); err != nil {
		return nil, err
	}
	if err := validateCiphertext(ek, c2); err != nil {
		return nil, err
	}
	return common.ModInt(ek.NN).Mul(c1, c2), nil
}

// AddPlaintext returns the ciphertext encrypting m+m2 where m2 is a known
// plaintext, using the cheaper c * (1 + m2*n) form rather than a full
// encryption of m2. Callers that expose the result to an adversary who saw
// the inputs should rerandomize afterward.
func AddPlaintext(ek *EncryptionKey, c, m2 *big.Int) (*big.Int, error) {
	if err := validateCiphertext(ek, c); err != nil {
		return nil, err
	}
	if err := validatePlaintext(ek, m2); err != nil {
		return nil, err
	}
	gm := new(big.Int).Mul(m2, ek.N)
	gm.Add(gm, one)
	gm.Mod(gm, ek.NN)
	return common.ModInt(ek.NN).Mul(c, gm), nil
}

// Mul returns c^m mod n^2, the ciphertext encrypting m_c*m mod n.
func Mul(ek *EncryptionKey, c, m *big.Int) (*big.Int, error) {
	if err := validateCiphertext(ek, c); err != nil {
		return nil, err
	}
	if err := validatePlaintext(ek, m); err != nil {
		return nil, err
	}
	return common.ModInt(ek.NN).Exp(c, m), nil
}
