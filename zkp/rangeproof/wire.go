package rangeproof

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openthreshold/paillier/internal/common"
)

// Bytes serializes a complete non-interactive proof into a flat list of
// length-tagged parts for wire transport, the same Bytes()/FromBytes()
// convention crypto/mta.RangeProofAlice uses for its own proof object.
func (p *NIProof) Bytes() [][]byte {
	parts := make([][]byte, 0, 2*Kappa+1+5*Kappa)
	parts = append(parts, common.BigIntsToBytes(p.Pairs.C1)...)
	parts = append(parts, common.BigIntsToBytes(p.Pairs.C2)...)
	parts = append(parts, p.Challenge.Bits)

	for _, r := range p.Proof.Responses {
		parts = append(parts, []byte{byte(r.Kind)})
		switch r.Kind {
		case ResponseOpen:
			parts = append(parts, common.BigIntsToBytes([]*big.Int{r.W1, r.R1, r.W2, r.R2})...)
		case ResponseMask:
			parts = append(parts, []byte{byte(r.J)})
			parts = append(parts, common.BigIntsToBytes([]*big.Int{r.MaskedX, r.MaskedR})...)
		}
	}
	return parts
}

// NIProofFromBytes reconstructs a proof from the wire parts Bytes produced.
func NIProofFromBytes(bzs [][]byte) (*NIProof, error) {
	if !common.NonEmptyMultiBytes(bzs) {
		return nil, errors.Wrap(common.ErrInvalidParameter, "empty wire parts")
	}
	if len(bzs) < 2*Kappa+1 {
		return nil, errors.Wrap(common.ErrInvalidParameter, "too few wire parts")
	}

	c1 := common.MultiBytesToBigInts(bzs[0:Kappa])
	c2 := common.MultiBytesToBigInts(bzs[Kappa : 2*Kappa])
	challengeBits := bzs[2*Kappa]

	responses := make([]Response, Kappa)
	cursor := 2*Kappa + 1
	for i := 0; i < Kappa; i++ {
		if cursor >= len(bzs) || !common.NonEmptyBytes(bzs[cursor]) {
			return nil, errors.Wrap(common.ErrInvalidParameter, "truncated response")
		}
		kind := ResponseKind(bzs[cursor][0])
		cursor++

		switch kind {
		case ResponseOpen:
			if cursor+4 > len(bzs) {
				return nil, errors.Wrap(common.ErrInvalidParameter, "truncated open response")
			}
			vals := common.MultiBytesToBigInts(bzs[cursor : cursor+4])
			responses[i] = Response{Kind: ResponseOpen, W1: vals[0], R1: vals[1], W2: vals[2], R2: vals[3]}
			cursor += 4
		case ResponseMask:
			if cursor+3 > len(bzs) || !common.NonEmptyBytes(bzs[cursor]) {
				return nil, errors.Wrap(common.ErrInvalidParameter, "truncated mask response")
			}
			j := int(bzs[cursor][0])
			cursor++
			vals := common.MultiBytesToBigInts(bzs[cursor : cursor+2])
			responses[i] = Response{Kind: ResponseMask, J: j, MaskedX: vals[0], MaskedR: vals[1]}
			cursor += 2
		default:
			return nil, errors.Wrap(common.ErrInvalidParameter, "unknown response kind")
		}
	}

	proof := &NIProof{
		Pairs:     &EncryptedPairs{C1: c1, C2: c2},
		Challenge: &Challenge{Bits: challengeBits},
		Proof:     &Proof{Responses: responses},
	}
	if !proof.ValidateBasic() {
		return nil, errors.Wrap(common.ErrInvalidParameter, "decoded proof failed validation")
	}
	return proof, nil
}

// ValidateBasic reports whether every field of p is present and
// well-formed, the same structural sanity check
// crypto/mta.RangeProofAlice.ValidateBasic runs before any cryptographic
// verification is attempted.
func (p *NIProof) ValidateBasic() bool {
	if p == nil || p.Pairs == nil || p.Challenge == nil || p.Proof == nil {
		return false
	}
	if len(p.Pairs.C1) != Kappa || len(p.Pairs.C2) != Kappa || len(p.Proof.Responses) != Kappa {
		return false
	}
	if !common.NonEmptyBytes(p.Challenge.Bits) {
		return false
	}
	for _, c := range p.Pairs.C1 {
		if c == nil {
			return false
		}
	}
	for _, c := range p.Pairs.C2 {
		if c == nil {
			return false
		}
	}
	return true
}
