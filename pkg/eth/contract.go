package eth

import "fmt"

// Contract is the metadata of a deployed contract. It owns the underlying
// Account; name, ABI, and source are optional and absent unless set through
// an option.
type Contract struct {
	account  Account
	bytecode string
	name     *string
	abi      *string
	source   *string
}

// ContractOption sets optional metadata on a Contract.
type ContractOption func(*Contract)

// WithName sets the contract's human-readable name.
func WithName(name string) ContractOption {
	return func(c *Contract) { c.name = &name }
}

// WithABI sets the contract's interface description.
func WithABI(abi string) ContractOption {
	return func(c *Contract) { c.abi = &abi }
}

// WithSource sets the contract's source text.
func WithSource(source string) ContractOption {
	return func(c *Contract) { c.source = &source }
}

// NewContract wraps an account as a deployed contract. bytecode must be
// non-empty; the account's own code field is deliberately not consulted, so
// callers that want the two to agree must check IsEOA themselves.
func NewContract(account Account, bytecode string, opts ...ContractOption) (*Contract, error) {
	if bytecode == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotAContract, account)
	}

	c := &Contract{
		account:  account,
		bytecode: bytecode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Account returns the wrapped account.
func (c *Contract) Account() Account {
	return c.account
}

// Bytecode returns the contract's creation bytecode.
func (c *Contract) Bytecode() string {
	return c.bytecode
}

// Name returns the contract's name and whether one was set.
func (c *Contract) Name() (string, bool) {
	if c.name == nil {
		return "", false
	}
	return *c.name, true
}

// ABI returns the contract's interface description and whether one was set.
func (c *Contract) ABI() (string, bool) {
	if c.abi == nil {
		return "", false
	}
	return *c.abi, true
}

// Source returns the contract's source text and whether one was set.
func (c *Contract) Source() (string, bool) {
	if c.source == nil {
		return "", false
	}
	return *c.source, true
}
