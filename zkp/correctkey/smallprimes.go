package correctkey

import (
	"math/big"

	"github.com/otiai10/primes"
)

// smallPrimeTrialBound mirrors the teacher's verifyPrimesUntil: a genuine
// Paillier modulus n = p*q with p, q large primes is never divisible by a
// prime this small, so trial division here is a cheap way to reject an
// obviously malformed n before running the full challenge-response
// exchange.
const smallPrimeTrialBound = 1000

func init() {
	// Warm the package's prime cache once, as the teacher's own
	// crypto/paillier package does in its init().
	_ = primes.Globally.Until(smallPrimeTrialBound)
}

// hasSmallPrimeFactor reports whether n is divisible by any prime below
// smallPrimeTrialBound.
func hasSmallPrimeFactor(n *big.Int) bool {
	for _, prm := range primes.Until(smallPrimeTrialBound).List() {
		if new(big.Int).Mod(n, big.NewInt(prm)).Sign() == 0 {
			return true
		}
	}
	return false
}
