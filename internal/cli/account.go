package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pendergraft/evmscan/pkg/eth"
)

func createAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account <address>",
		Short: "Show on-chain account state",
		Long: `Read the balance, nonce, and code of an address through the explorer's
proxy module and show the assembled account.

EXAMPLES:
  evmscan account 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccount(args[0])
		},
	}

	return cmd
}

func runAccount(rawAddr string) error {
	addr, err := eth.NewAddress(rawAddr)
	if err != nil {
		return err
	}

	c, err := newExplorerClient()
	if err != nil {
		return err
	}

	account, err := c.GetAccount(context.Background(), addr)
	if err != nil {
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	fmt.Println(account)
	fmt.Printf("  nonce:   %d\n", account.Nonce())
	fmt.Printf("  balance: %d wei\n", account.Balance())
	fmt.Printf("  code:    %d bytes\n", len(account.Code()))

	return nil
}

func createContractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract <address>",
		Short: "Show deployed-contract metadata",
		Long: `Assemble the full picture of a deployed contract: on-chain state plus
whatever verified source and ABI the explorer has. Fails if the address has
no deployed code.

EXAMPLES:
  evmscan contract 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContract(args[0])
		},
	}

	return cmd
}

func runContract(rawAddr string) error {
	addr, err := eth.NewAddress(rawAddr)
	if err != nil {
		return err
	}

	c, err := newExplorerClient()
	if err != nil {
		return err
	}

	contract, err := c.GetContract(context.Background(), addr)
	if err != nil {
		return fmt.Errorf("failed to fetch contract: %w", err)
	}

	fmt.Println(contract.Account())
	if name, ok := contract.Name(); ok {
		fmt.Printf("  name:     %s\n", name)
	} else {
		fmt.Println("  name:     (not verified)")
	}
	fmt.Printf("  bytecode: %d characters\n", len(contract.Bytecode()))
	if source, ok := contract.Source(); ok {
		fmt.Printf("  source:   %d characters\n", len(source))
	}
	if abi, ok := contract.ABI(); ok {
		fmt.Printf("  abi:      %d characters\n", len(abi))
	}

	return nil
}
