package etherscan

// Response is the envelope common to the explorer's list-shaped replies;
// the calls differ only in the element type of Result. The explorer encodes
// success as status "1", but the mapping from status/message to an
// application-level failure is left to the caller; IsOK covers the common
// convention.
type Response[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []T    `json:"result"`
}

// IsOK reports whether the explorer flagged the reply as successful.
func (r *Response[T]) IsOK() bool {
	return r.Status == "1"
}

// SourceCode is one result element of a getsourcecode reply. Field names
// follow the explorer's JSON, which capitalizes them.
type SourceCode struct {
	Source          string `json:"SourceCode"`
	ConstructorArgs string `json:"ConstructorArguments"`
	ContractName    string `json:"ContractName"`
}

// ABI is the opaque JSON interface description of a verified contract.
type ABI string

func (a ABI) String() string {
	return string(a)
}
