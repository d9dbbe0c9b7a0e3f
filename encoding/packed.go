// Package encoding packs several fixed-width integer components into one
// Paillier plaintext so that a single ciphertext can carry a short vector,
// and lifts encrypt/decrypt/add/mul/rerandomize to operate on the packed
// representation.
package encoding

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
	"github.com/openthreshold/paillier/paillier"
)

const maxComponentBits = 64

// Kind distinguishes a scalar-encoded ciphertext from a packed-vector one;
// the two never silently interoperate.
type Kind int

const (
	Scalar Kind = iota
	Vector
)

// EncodedCiphertext is a ciphertext tagged with its component layout:
// Scalar ciphertexts carry exactly one component, Vector ciphertexts carry
// ComponentCount components each ComponentBits wide.
type EncodedCiphertext struct {
	C              *big.Int
	Kind           Kind
	ComponentCount int
	ComponentBits  int
}

func validateLayout(componentBits, componentCount int) error {
	if componentBits <= 0 || componentBits > maxComponentBits {
		return errors.Wrapf(common.ErrInvalidParameter, "component bit size must be in (0, %d], got %d", maxComponentBits, componentBits)
	}
	if componentCount <= 0 {
		return errors.Wrap(common.ErrInvalidParameter, "component count must be positive")
	}
	return nil
}

// Pack concatenates components into one BigInt of componentBits*len(v)
// bits, the first element occupying the most significant slot:
//
//	pack([x0, x1, ..., xk-1], b) = x0*2^((k-1)b) + x1*2^((k-2)b) + ... + xk-1
//
// It does not check that each component fits in componentBits; exceeding
// that width silently corrupts the neighboring slot, a documented trust
// boundary the caller must enforce.
func Pack(v []uint64, componentBits int) (*big.Int, error) {
	if err := validateLayout(componentBits, len(v)); err != nil {
		return nil, err
	}
	packed := new(big.Int).SetUint64(v[0])
	for _, x := range v[1:] {
		packed.Lsh(packed, uint(componentBits))
		packed.Add(packed, new(big.Int).SetUint64(x))
	}
	return packed, nil
}

// Unpack is the inverse of Pack: it repeatedly strips the low componentBits
// bits off p, recovering components in reverse order, then reverses the
// result. Unpack(Pack(v, b), b, len(v)) == v whenever every component of v
// fits in b bits.
func Unpack(p *big.Int, componentBits, componentCount int) ([]uint64, error) {
	if err := validateLayout(componentBits, componentCount); err != nil {
		return nil, err
	}
	mask := new(big.Int).Lsh(big.NewInt(1), uint(componentBits))
	rest := new(big.Int).Set(p)
	result := make([]uint64, componentCount)
	for i := 0; i < componentCount; i++ {
		slot := new(big.Int).Mod(rest, mask)
		rest.Rsh(rest, uint(componentBits))
		result[componentCount-1-i] = slot.Uint64()
	}
	return result, nil
}

// EncryptScalar packs a single plaintext as a one-component EncodedCiphertext.
func EncryptScalar(ek *paillier.EncryptionKey, m *big.Int) (*EncodedCiphertext, error) {
	c, err := paillier.Encrypt(ek, m)
	if err != nil {
		return nil, err
	}
	return &EncodedCiphertext{C: c, Kind: Scalar, ComponentCount: 1, ComponentBits: 0}, nil
}

// EncryptVector packs v at componentBits width and encrypts the packed
// plaintext as a single ciphertext.
func EncryptVector(ek *paillier.EncryptionKey, v []uint64, componentBits int) (*EncodedCiphertext, error) {
	packed, err := Pack(v, componentBits)
	if err != nil {
		return nil, err
	}
	c, err := paillier.Encrypt(ek, packed)
	if err != nil {
		return nil, err
	}
	return &EncodedCiphertext{
		C: c, Kind: Vector,
		ComponentCount: len(v), ComponentBits: componentBits,
	}, nil
}

// DecryptVector decrypts and unpacks an EncodedCiphertext of Kind Vector.
func DecryptVector(dk *paillier.DecryptionKey, ec *EncodedCiphertext) ([]uint64, error) {
	if ec.Kind != Vector {
		return nil, errors.Wrap(common.ErrInvalidParameter, "ciphertext is not vector-encoded")
	}
	packed, err := paillier.Decrypt(dk, ec.C)
	if err != nil {
		return nil, err
	}
	return Unpack(packed, ec.ComponentBits, ec.ComponentCount)
}

// DecryptScalar decrypts an EncodedCiphertext of Kind Scalar back to a
// plain BigInt.
func DecryptScalar(dk *paillier.DecryptionKey, ec *EncodedCiphertext) (*big.Int, error) {
	if ec.Kind != Scalar {
		return nil, errors.Wrap(common.ErrInvalidParameter, "ciphertext is not scalar-encoded")
	}
	return paillier.Decrypt(dk, ec.C)
}

func sameLayout(a, b *EncodedCiphertext) error {
	if a.Kind != b.Kind || a.ComponentCount != b.ComponentCount || a.ComponentBits != b.ComponentBits {
		return errors.Wrap(common.ErrInvalidParameter, "encoded ciphertexts have mismatched layouts")
	}
	return nil
}

// Add lifts ciphertext addition to EncodedCiphertext. For Vector operands
// correctness requires the sum of every corresponding pair of components to
// stay below 2^componentBits — exceeding it silently corrupts the next
// slot, a caller-enforced contract, not a runtime check.
func Add(ek *paillier.EncryptionKey, c1, c2 *EncodedCiphertext) (*EncodedCiphertext, error) {
	if err := sameLayout(c1, c2); err != nil {
		return nil, err
	}
	c, err := paillier.Add(ek, c1.C, c2.C)
	if err != nil {
		return nil, err
	}
	return &EncodedCiphertext{C: c, Kind: c1.Kind, ComponentCount: c1.ComponentCount, ComponentBits: c1.ComponentBits}, nil
}

// MulScalar lifts ciphertext*plaintext multiplication to EncodedCiphertext.
// For Vector operands correctness requires a * max(component) to stay below
// 2^componentBits, again a caller-enforced contract.
func MulScalar(ek *paillier.EncryptionKey, c *EncodedCiphertext, a *big.Int) (*EncodedCiphertext, error) {
	out, err := paillier.Mul(ek, c.C, a)
	if err != nil {
		return nil, err
	}
	return &EncodedCiphertext{C: out, Kind: c.Kind, ComponentCount: c.ComponentCount, ComponentBits: c.ComponentBits}, nil
}

// Rerandomize lifts ciphertext re-randomization to EncodedCiphertext.
func Rerandomize(ek *paillier.EncryptionKey, c *EncodedCiphertext) (*EncodedCiphertext, error) {
	out, err := paillier.Rerandomize(ek, c.C)
	if err != nil {
		return nil, err
	}
	return &EncodedCiphertext{C: out, Kind: c.Kind, ComponentCount: c.ComponentCount, ComponentBits: c.ComponentBits}, nil
}
