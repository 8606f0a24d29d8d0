package eth

import "fmt"

// weiPerDisplayETH is the fixed divisor for the balance shown by String.
// It is a display constant, not derived from chain decimals.
const weiPerDisplayETH = 100_000_000

// Account is the state of a chain account at some point in time. It is
// immutable after construction.
type Account struct {
	address Address
	nonce   uint64
	balance uint64
	code    []byte
}

// NewAccount builds an account from caller-supplied state. Nonce, balance,
// and code are accepted as given; no validation is performed.
func NewAccount(address Address, nonce, balance uint64, code []byte) Account {
	return Account{
		address: address,
		nonce:   nonce,
		balance: balance,
		code:    code,
	}
}

// Address returns the account's address.
func (a Account) Address() Address {
	return a.address
}

// Nonce returns the account's transaction sequence counter.
func (a Account) Nonce() uint64 {
	return a.nonce
}

// Balance returns the account's balance in the smallest unit.
func (a Account) Balance() uint64 {
	return a.balance
}

// Code returns the account's deployed code. Empty for an EOA.
func (a Account) Code() []byte {
	return a.code
}

// IsEOA reports whether the account is externally owned, i.e. has no code.
func (a Account) IsEOA() bool {
	return len(a.code) == 0
}

func (a Account) String() string {
	kind := "Contract"
	if a.IsEOA() {
		kind = "EOA"
	}
	return fmt.Sprintf("%s @ %s (%d ETH)", kind, a.address, a.balance/weiPerDisplayETH)
}
