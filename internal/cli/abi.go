package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pendergraft/evmscan/pkg/eth"
)

func createABICmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "abi <address>",
		Short: "Fetch the ABI of a verified contract",
		Long: `Fetch the ABI JSON of a verified contract from the explorer.

EXAMPLES:
  # Print the ABI
  evmscan abi 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48

  # Write the ABI to a file
  evmscan abi 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 --output abi.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runABI(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the ABI to a file instead of stdout")

	return cmd
}

func runABI(rawAddr, output string) error {
	addr, err := eth.NewAddress(rawAddr)
	if err != nil {
		return err
	}

	c, err := newExplorerClient()
	if err != nil {
		return err
	}

	abi, err := c.GetABI(context.Background(), addr)
	if err != nil {
		return fmt.Errorf("failed to fetch ABI: %w", err)
	}

	if output == "" {
		fmt.Println(abi)
		return nil
	}

	if err := os.WriteFile(output, []byte(abi.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write ABI: %w", err)
	}
	fmt.Printf("  ✓ %s\n", output)

	return nil
}
