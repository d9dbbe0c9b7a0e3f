// Package numtheory collects the arbitrary-precision arithmetic the rest of
// the library is built on: modular exponentiation, modular inverse, the
// extended Euclidean algorithm, CRT decomposition/recombination, uniform
// sampling, and prime generation. All of it works on math/big's *big.Int,
// which the other packages also use directly.
package numtheory

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
)

const maxSampleBits = 8192

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// SampleBits draws a uniformly random non-negative integer of at most
// `bits` bits, i.e. in [0, 2^bits).
func SampleBits(bits int) (*big.Int, error) {
	if bits <= 0 || maxSampleBits < bits {
		return nil, errors.Wrapf(common.ErrInvalidParameter, "bits must be in (0, %d], got %d", maxSampleBits, bits)
	}
	max := new(big.Int).Lsh(one, uint(bits))
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, errors.Wrap(err, "numtheory: reading randomness")
	}
	return n, nil
}

// SampleBelow draws a uniformly random integer in [0, bound).
func SampleBelow(bound *big.Int) (*big.Int, error) {
	if bound == nil || bound.Cmp(zero) <= 0 {
		return nil, errors.Wrapf(common.ErrInvalidParameter, "bound must be positive")
	}
	return rand.Int(rand.Reader, bound)
}

// SampleInterval draws a uniformly random integer in [lo, hi).
func SampleInterval(lo, hi *big.Int) (*big.Int, error) {
	if lo == nil || hi == nil || lo.Cmp(hi) >= 0 {
		return nil, errors.Wrapf(common.ErrInvalidParameter, "need lo < hi")
	}
	span := new(big.Int).Sub(hi, lo)
	r, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, errors.Wrap(err, "numtheory: reading randomness")
	}
	return r.Add(r, lo), nil
}

// SamplePositiveCoprimeTo draws a uniformly random element of the
// multiplicative group of integers modulo n, i.e. an x in [1, n) with
// gcd(x, n) = 1.
func SamplePositiveCoprimeTo(n *big.Int) (*big.Int, error) {
	if n == nil || n.Cmp(zero) <= 0 {
		return nil, errors.Wrapf(common.ErrInvalidParameter, "n must be positive")
	}
	gcd := new(big.Int)
	for {
		x, err := SampleBelow(n)
		if err != nil {
			return nil, err
		}
		if x.Cmp(one) < 0 {
			continue
		}
		if gcd.GCD(nil, nil, x, n).Cmp(one) == 0 {
			return x, nil
		}
	}
}

// IsCoprime reports whether gcd(a, b) == 1.
func IsCoprime(a, b *big.Int) bool {
	return new(big.Int).GCD(nil, nil, a, b).Cmp(one) == 0
}
