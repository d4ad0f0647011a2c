// Package digest fingerprints rendered reports with the SHA-2 family.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

// Size is the output size of a digest in bits
type Size int

const (
	Bits256 Size = 256
	Bits384 Size = 384
	Bits512 Size = 512

	Default = Bits256
)

// ParseSize parses a bit count such as "256" into a Size
func ParseSize(s string) (Size, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, types.NewInvalidArgumentError("size", fmt.Sprintf("%q is not a number", s))
	}
	size := Size(n)
	if !size.IsValid() {
		return 0, types.NewInvalidArgumentError("size", fmt.Sprintf("unsupported digest size %d", n))
	}
	return size, nil
}

// IsValid reports whether s is a supported digest size
func (s Size) IsValid() bool {
	switch s {
	case Bits256, Bits384, Bits512:
		return true
	}
	return false
}

// Bytes returns the digest length in bytes
func (s Size) Bytes() int {
	return int(s) / 8
}

func (s Size) String() string {
	return fmt.Sprintf("sha%d", int(s))
}

func (s Size) newHash() (hash.Hash, error) {
	switch s {
	case Bits256:
		return sha256.New(), nil
	case Bits384:
		return sha512.New384(), nil
	case Bits512:
		return sha512.New(), nil
	}
	return nil, types.NewInvalidArgumentError("size", fmt.Sprintf("unsupported digest size %d", int(s)))
}

// Compute returns the digest of data using the requested output size.
// Empty input is rejected since an empty report has nothing to fingerprint.
func Compute(data []byte, size Size) ([]byte, error) {
	if len(data) == 0 {
		return nil, types.NewInvalidArgumentError("data", "input is empty")
	}
	h, err := size.newHash()
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// ComputeHex is Compute followed by Hex
func ComputeHex(data []byte, size Size) (string, error) {
	sum, err := Compute(data, size)
	if err != nil {
		return "", err
	}
	return Hex(sum), nil
}

// Hex encodes a digest as lower-case hexadecimal
func Hex(sum []byte) string {
	return hex.EncodeToString(sum)
}

// Equal compares two digests in constant time. Digests of different
// lengths were produced by different sizes and cannot be compared.
func Equal(a, b []byte) (bool, error) {
	if len(a) != len(b) {
		return false, types.NewInvalidOperationError("compare",
			fmt.Sprintf("digest lengths differ (%d != %d)", len(a), len(b)))
	}
	return subtle.ConstantTimeCompare(a, b) == 1, nil
}

// EqualHex decodes and compares two hex digests
func EqualHex(a, b string) (bool, error) {
	ab, err := hex.DecodeString(a)
	if err != nil {
		return false, types.NewInvalidArgumentError("a", "not a hex digest")
	}
	bb, err := hex.DecodeString(b)
	if err != nil {
		return false, types.NewInvalidArgumentError("b", "not a hex digest")
	}
	return Equal(ab, bb)
}
