package numtheory

import (
	"math/big"

	"github.com/pkg/errors"
)

// L computes the Paillier L-function L(u) = (u-1)/n, the discrete logarithm
// of u = 1+n*k taken base (1+n), truncated to an integer division. u is
// assumed to already be reduced so that u-1 is an exact multiple of n.
func L(u, n *big.Int) *big.Int {
	num := new(big.Int).Sub(u, one)
	return num.Div(num, n)
}

// H computes the CRT decryption helper h_p = L_p((1+n)^(p-1) mod p^2)^-1
// mod p, cached on a DecryptionKey so decryption never recomputes it.
// p is one of the two prime factors, pp = p^2, and n = p*q.
func H(p, pp, n *big.Int) *big.Int {
	gp := new(big.Int).Sub(one, n)
	gp.Mod(gp, pp)
	lp := L(gp, p)
	return new(big.Int).ModInverse(lp, p)
}

// CRTDecompose reduces x modulo each of m1 and m2, the first step of
// working on a value mod n^2 = p^2*q^2 independently mod p^2 and mod q^2.
func CRTDecompose(x, m1, m2 *big.Int) (*big.Int, *big.Int) {
	x1 := new(big.Int).Mod(x, m1)
	x2 := new(big.Int).Mod(x, m2)
	return x1, x2
}

// CRTRecombine reassembles a value mod m1*m2 from its residues x1 (mod m1)
// and x2 (mod m2), given m1inv = m1^-1 mod m2. This is Garner's formula.
func CRTRecombine(x1, x2, m1, m2, m1inv *big.Int) *big.Int {
	diff := new(big.Int).Sub(x2, x1)
	diff.Mod(diff, m2)
	u := new(big.Int).Mul(diff, m1inv)
	u.Mod(u, m2)
	x := new(big.Int).Mul(u, m1)
	x.Add(x, x1)
	return x
}

// ModPow is new(big.Int).Exp(x, e, m), kept as a named entry point so
// callers reading decryption/proof code see the mathematical operation
// rather than a bare stdlib call.
func ModPow(x, e, m *big.Int) *big.Int {
	return new(big.Int).Exp(x, e, m)
}

// ModInverse returns x^-1 mod m, or an error if x shares a factor with m.
func ModInverse(x, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(x, m)
	if inv == nil {
		return nil, errors.Errorf("numtheory: %s has no inverse mod %s", x, m)
	}
	return inv, nil
}

// ExtGCD returns (d, s, t) such that d = gcd(a, b) = s*a + t*b, via the
// extended Euclidean algorithm.
func ExtGCD(a, b *big.Int) (d, s, t *big.Int) {
	d, s, t = new(big.Int), new(big.Int), new(big.Int)
	d.GCD(s, t, a, b)
	return d, s, t
}
