package eth

import "errors"

// Validation failures returned by the domain constructors. Callers match
// them with errors.Is; the wrapping message carries the offending value.
var (
	ErrAddressNotPrefixed     = errors.New("address not prefixed with 0x")
	ErrAddressIncorrectLength = errors.New("address has incorrect length")
	ErrNotAContract           = errors.New("not a contract")
)
