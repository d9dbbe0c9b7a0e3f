package common

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

const hashInputDelimiter = byte('$')

// SHA256 hashes the concatenation of in, prefixed with a count and with each
// part delimited and length-tagged so that e.g. H(a, bc) and H(ab, c) never
// collide.
func SHA256(in ...[]byte) []byte {
	data := domainSeparate(in)
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return sum[:]
}

// SHA256i is SHA256 over the big-endian byte encodings of a list of BigInts,
// interpreted back as a BigInt. Used throughout the correct-key and range
// proofs for their challenges, commitments and digests.
func SHA256i(in ...*big.Int) *big.Int {
	bzs := make([][]byte, len(in))
	for i, n := range in {
		bzs[i] = n.Bytes()
	}
	data := domainSeparate(bzs)
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return new(big.Int).SetBytes(sum[:])
}

func domainSeparate(in [][]byte) []byte {
	inLen := len(in)
	if inLen == 0 {
		return nil
	}
	bzSize := 0
	for _, bz := range in {
		bzSize += len(bz)
	}
	countBz := make([]byte, 8)
	binary.LittleEndian.PutUint64(countBz, uint64(inLen))
	data := make([]byte, 0, len(countBz)+bzSize+inLen*9)
	data = append(data, countBz...)
	for _, bz := range in {
		data = append(data, bz...)
		data = append(data, hashInputDelimiter)
		lenBz := make([]byte, 8)
		binary.LittleEndian.PutUint64(lenBz, uint64(len(bz)))
		data = append(data, lenBz...)
	}
	return data
}
