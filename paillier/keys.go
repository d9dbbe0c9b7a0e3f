package paillier

import (
	"context"
	"encoding/json"
	"math/big"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
	"github.com/openthreshold/paillier/numtheory"
)

// pQBitLenDifference is how many bits shorter than a prime |p-q| may be:
// GenerateKeyPair retries until |p-q| has at least bitLen/2 -
// pQBitLenDifference bits, a textbook defense against Fermat-style
// square-root factoring attacks.
const pQBitLenDifference = 3

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// Keypair is a pair of distinct large primes of equal bit length, the raw
// material from which an EncryptionKey and DecryptionKey are derived.
type Keypair struct {
	P, Q *big.Int
}

// EncryptionKey is the public half of a Keypair: n = p*q and its square.
type EncryptionKey struct {
	N, NN *big.Int
}

// DecryptionKey is the private half of a Keypair. Every field beyond P and
// Q is a pure function of (P, Q), cached once at construction so decrypt
// and open never recompute them.
type DecryptionKey struct {
	P, Q           *big.Int
	N, NN          *big.Int
	PP, QQ         *big.Int
	PMinusOne      *big.Int
	QMinusOne      *big.Int
	Phi            *big.Int
	Dp, Dq         *big.Int // n^-1 mod (p-1), n^-1 mod (q-1) — n-th root extraction
	Pinv           *big.Int // p^-1 mod q — CRT recombination
	Hp, Hq         *big.Int // L_p(g^(p-1) mod p^2)^-1 mod p, and mod q
}

// GenerateKeyPair samples two safe primes of bitLen/2 bits each concurrently
// and returns the Keypair they form. optionalConcurrency overrides the
// worker count used for the safe-prime search; it defaults to
// runtime.NumCPU().
func GenerateKeyPair(ctx context.Context, bitLen int, optionalConcurrency ...int) (*Keypair, error) {
	if bitLen < 16 || bitLen%2 != 0 {
		return nil, errors.Wrapf(common.ErrInvalidParameter, "modulus bit length must be even and >= 16, got %d", bitLen)
	}
	concurrency := runtime.NumCPU()
	if len(optionalConcurrency) > 0 {
		if len(optionalConcurrency) > 1 {
			panic(errors.New("GenerateKeyPair: expected 0 or 1 item in optionalConcurrency"))
		}
		concurrency = optionalConcurrency[0]
	}

	start := time.Now()
	var p, q *big.Int
	diff := new(big.Int)
	for {
		sps, err := numtheory.GenerateSafePrimesConcurrent(ctx, bitLen/2, 2, concurrency)
		if err != nil {
			return nil, err
		}
		p, q = sps[0].SafePrime(), sps[1].SafePrime()
		if diff.Sub(p, q).BitLen() >= (bitLen/2)-pQBitLenDifference {
			break
		}
		common.Logger.Debugf("paillier keygen: rejected a (p, q) pair too close in bit length, retrying")
	}
	common.Logger.Debugf("paillier keygen: %d-bit modulus, took %s", bitLen, time.Since(start))
	return NewKeypair(p, q)
}

// NewKeypair validates and wraps a pre-existing (p, q) pair, rejecting
// p == q outright.
func NewKeypair(p, q *big.Int) (*Keypair, error) {
	if p == nil || q == nil || p.Cmp(q) == 0 {
		return nil, errors.Wrap(common.ErrBadKey, "p and q must be distinct non-nil primes")
	}
	return &Keypair{P: p, Q: q}, nil
}

// EncryptionKey derives the public key from a Keypair.
func (kp *Keypair) EncryptionKey() *EncryptionKey {
	n := new(big.Int).Mul(kp.P, kp.Q)
	nn := new(big.Int).Mul(n, n)
	return &EncryptionKey{N: n, NN: nn}
}

// DecryptionKey derives the private key and every CRT field it caches from
// a Keypair.
func (kp *Keypair) DecryptionKey() (*DecryptionKey, error) {
	p, q := kp.P, kp.Q
	n := new(big.Int).Mul(p, q)
	nn := new(big.Int).Mul(n, n)
	pp := new(big.Int).Mul(p, p)
	qq := new(big.Int).Mul(q, q)
	pMinusOne := new(big.Int).Sub(p, one)
	qMinusOne := new(big.Int).Sub(q, one)
	phi := new(big.Int).Mul(pMinusOne, qMinusOne)

	dp, err := numtheory.ModInverse(n, pMinusOne)
	if err != nil {
		return nil, errors.Wrap(common.ErrBadKey, err.Error())
	}
	dq, err := numtheory.ModInverse(n, qMinusOne)
	if err != nil {
		return nil, errors.Wrap(common.ErrBadKey, err.Error())
	}
	pinv, err := numtheory.ModInverse(p, q)
	if err != nil {
		return nil, errors.Wrap(common.ErrBadKey, err.Error())
	}

	hp := numtheory.H(p, pp, n)
	hq := numtheory.H(q, qq, n)

	return &DecryptionKey{
		P: p, Q: q,
		N: n, NN: nn,
		PP: pp, QQ: qq,
		PMinusOne: pMinusOne, QMinusOne: qMinusOne,
		Phi: phi,
		Dp:  dp, Dq: dq,
		Pinv: pinv,
		Hp:   hp, Hq: hq,
	}, nil
}

// ----- JSON wire format: only the minimal key material crosses the wire,
// everything else is re-derived on load so a tampered cache can never be
// trusted.

type encryptionKeyJSON struct {
	N string `json:"n"`
}

// MarshalJSON encodes only N; NN is re-derived on load.
func (ek *EncryptionKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(encryptionKeyJSON{N: ek.N.String()})
}

// UnmarshalJSON decodes N and recomputes NN.
func (ek *EncryptionKey) UnmarshalJSON(data []byte) error {
	var wire encryptionKeyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "paillier: decoding encryption key")
	}
	n, ok := new(big.Int).SetString(wire.N, 10)
	if !ok {
		return errors.Wrap(common.ErrBadKey, "n is not a base-10 integer")
	}
	ek.N = n
	ek.NN = new(big.Int).Mul(n, n)
	return nil
}

type decryptionKeyJSON struct {
	P string `json:"p"`
	Q string `json:"q"`
}

// MarshalJSON encodes only (P, Q); every cached CRT field is re-derived on
// load.
func (dk *DecryptionKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(decryptionKeyJSON{P: dk.P.String(), Q: dk.Q.String()})
}

// UnmarshalJSON decodes (P, Q) and rebuilds the full DecryptionKey through
// the same construction path key generation uses.
func (dk *DecryptionKey) UnmarshalJSON(data []byte) error {
	var wire decryptionKeyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "paillier: decoding decryption key")
	}
	p, ok := new(big.Int).SetString(wire.P, 10)
	if !ok {
		return errors.Wrap(common.ErrBadKey, "p is not a base-10 integer")
	}
	q, ok := new(big.Int).SetString(wire.Q, 10)
	if !ok {
		return errors.Wrap(common.ErrBadKey, "q is not a base-10 integer")
	}
	kp, err := NewKeypair(p, q)
	if err != nil {
		return err
	}
	rebuilt, err := kp.DecryptionKey()
	if err != nil {
		return err
	}
	*dk = *rebuilt
	return nil
}
