// Package eth defines the validated domain model for chain accounts:
// addresses, account state, and deployed-contract metadata.
package eth

import (
	"fmt"
	"strings"
)

const (
	addressPrefix = "0x"
	addressLength = 42 // "0x" plus 40 hex characters
)

// Address is a validated chain account identifier. The only way to obtain
// one is NewAddress, so holding an Address means validation already passed.
// The zero value is not a valid address.
type Address struct {
	hex string
}

// NewAddress validates s as a chain address. Checks run in order and the
// first failure wins: the 0x prefix, then the total length. The remaining 40
// characters are not required to be hexadecimal.
func NewAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, addressPrefix) {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressNotPrefixed, s)
	}
	if len(s) != addressLength {
		return Address{}, fmt.Errorf("%w: %q is %d characters, want %d",
			ErrAddressIncorrectLength, s, len(s), addressLength)
	}
	return Address{hex: s}, nil
}

// String returns the address exactly as it was supplied to NewAddress.
func (a Address) String() string {
	return a.hex
}
