package numtheory

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
)

const primeTestN = 30

// SafePrime is a pair (q, p) with p = 2q+1 and both prime. Paillier key
// generation draws two of these and multiplies their p values together to
// get n = p*q. Keypairs built with paillier.NewKeypair from other primes
// are accepted as well.
type SafePrime struct {
	q, p *big.Int
}

// Prime returns q, the Sophie Germain prime.
func (sp *SafePrime) Prime() *big.Int { return sp.q }

// SafePrime returns p = 2q+1.
func (sp *SafePrime) SafePrime() *big.Int { return sp.p }

// Validate re-checks both primality conditions; used after a SafePrime
// crosses a trust boundary (deserialization, a channel from untrusted code).
func (sp *SafePrime) Validate() bool {
	return probablyPrime(sp.q) &&
		getSafePrime(sp.q).Cmp(sp.p) == 0 &&
		probablyPrime(sp.p)
}

func getSafePrime(q *big.Int) *big.Int {
	i := new(big.Int)
	i.Mul(q, two)
	i.Add(i, one)
	return i
}

func probablyPrime(prime *big.Int) bool {
	return prime != nil && prime.ProbablyPrime(primeTestN)
}

// The search routine below is a modified copy of:
// https://github.com/didiercrunch/paillier/blob/753322e/safe_prime_generator.go
// implementing "Safe Prime Generation with a Combined Sieve"
// (https://eprint.iacr.org/2003/186.pdf), itself derived from the Go
// standard library's rand.Prime.
//
// Before running an expensive Miller-Rabin/Baillie-PSW test on a candidate
// q, the search rejects q = 1 (mod 3) (which always makes p = 2q+1 a
// multiple of 3) and any q or p divisible by a short list of small primes.
// Once q passes, p's primality follows from Pocklington's criterion applied
// to q, far cheaper than a full primality test on p.

var smallPrimes = []uint8{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
}

var smallPrimesProduct = new(big.Int).SetUint64(16294579238595022365)

// ErrGeneratorCancelled is returned from GenerateSafePrimesConcurrent when
// the context was cancelled before enough safe primes were found.
var ErrGeneratorCancelled = fmt.Errorf("numtheory: safe prime search cancelled")

// GenerateSafePrimesConcurrent searches for numPrimes safe primes of the
// requested bit length, running concurrency independent search goroutines
// and keeping whichever results land first. Concurrency should scale with
// bitLen: 1 is plenty at 512 bits, 1024 bits wants at least 2, 2048 bits
// wants at least 4 to land in a reasonable time.
//
// The two most significant bits of p are always set, so p is never
// accidentally short of the requested length.
func GenerateSafePrimesConcurrent(ctx context.Context, bitLen, numPrimes, concurrency int) ([]*SafePrime, error) {
	if bitLen < 6 {
		return nil, errors.Wrap(common.ErrInvalidParameter, "safe prime size must be at least 6 bits")
	}
	if numPrimes < 1 {
		return nil, errors.Wrap(common.ErrInvalidParameter, "numPrimes must be > 0")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	primeCh := make(chan *SafePrime, concurrency*numPrimes)
	errCh := make(chan error, concurrency)
	primes := make([]*SafePrime, 0, numPrimes)

	wg := &sync.WaitGroup{}
	defer close(primeCh)
	defer close(errCh)
	defer wg.Wait()

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		runGenPrimeRoutine(genCtx, primeCh, errCh, wg, rand.Reader, bitLen)
	}

	needed := int32(numPrimes)
	var errs *multierror.Error
	for {
		select {
		case result := <-primeCh:
			primes = append(primes, result)
			if atomic.AddInt32(&needed, -1) <= 0 {
				return primes[:numPrimes], nil
			}
		case err := <-errCh:
			errs = multierror.Append(errs, err)
			return nil, errs.ErrorOrNil()
		case <-ctx.Done():
			return nil, ErrGeneratorCancelled
		}
	}
}

func runGenPrimeRoutine(
	ctx context.Context,
	primeCh chan<- *SafePrime,
	errCh chan<- error,
	wg *sync.WaitGroup,
	rnd io.Reader,
	pBitLen int,
) {
	qBitLen := pBitLen - 1
	b := uint(qBitLen % 8)
	if b == 0 {
		b = 8
	}

	bytes := make([]byte, (qBitLen+7)/8)
	p := new(big.Int)
	q := new(big.Int)
	bigMod := new(big.Int)

	go func() {
		defer wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			default:
				if _, err := io.ReadFull(rnd, bytes); err != nil {
					errCh <- errors.Wrap(err, "numtheory: reading safe prime candidate")
					return
				}

				// Clear bits above the requested length, then force the top
				// two bits and the low bit so q is always full-length and
				// odd.
				bytes[0] &= uint8(int(1<<b) - 1)
				if b >= 2 {
					bytes[0] |= 3 << (b - 2)
				} else {
					bytes[0] |= 1
					if len(bytes) > 1 {
						bytes[1] |= 0x80
					}
				}
				bytes[len(bytes)-1] |= 1

				q.SetBytes(bytes)

				bigMod.Mod(q, smallPrimesProduct)
				mod := bigMod.Uint64()

			NextDelta:
				for delta := uint64(0); delta < 1<<20; delta += 2 {
					m := mod + delta
					for _, prime := range smallPrimes {
						if m%uint64(prime) == 0 && (qBitLen > 6 || m != uint64(prime)) {
							continue NextDelta
						}
					}

					if delta > 0 {
						bigMod.SetUint64(delta)
						q.Add(q, bigMod)
					}

					// q = 1 (mod 3) implies p = 2q+1 is a multiple of 3.
					qMod3 := new(big.Int).Mod(q, big.NewInt(3))
					if qMod3.Cmp(big.NewInt(1)) == 0 {
						continue NextDelta
					}

					p.Mul(q, two)
					p.Add(p, one)
					if !isPrimeCandidate(p) {
						continue NextDelta
					}

					break
				}

				if q.ProbablyPrime(20) &&
					isPocklingtonCriterionSatisfied(p) &&
					q.BitLen() == qBitLen {
					if sp := (&SafePrime{p: p, q: q}); sp.Validate() {
						primeCh <- &SafePrime{p: p, q: q}
					}
					p, q = new(big.Int), new(big.Int)
				}
			}
		}
	}()
}

// isPocklingtonCriterionSatisfied checks 2^(p-1) = 1 (mod p), which proves
// p = 2q+1 is prime once q is known to be prime.
func isPocklingtonCriterionSatisfied(p *big.Int) bool {
	return new(big.Int).Exp(two, new(big.Int).Sub(p, one), p).Cmp(one) == 0
}

func isPrimeCandidate(number *big.Int) bool {
	m := new(big.Int).Mod(number, smallPrimesProduct).Uint64()
	for _, prime := range smallPrimes {
		if m%uint64(prime) == 0 && m != uint64(prime) {
			return false
		}
	}
	return true
}
