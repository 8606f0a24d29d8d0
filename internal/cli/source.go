package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pendergraft/evmscan/pkg/eth"
)

func createSourceCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "source <address>",
		Short: "Fetch verified contract source code",
		Long: `Fetch the verified source code of a contract from the explorer.

By default the source is printed to stdout. With --output, the source and
the encoded constructor arguments are written to files in a directory named
after the contract.

EXAMPLES:
  # Print the source of USDC
  evmscan source 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48

  # Write the source to ./artifacts/<ContractName>/
  evmscan source 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 --output ./artifacts
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write source files to a directory instead of stdout")

	return cmd
}

func runSource(rawAddr, output string) error {
	addr, err := eth.NewAddress(rawAddr)
	if err != nil {
		return err
	}

	c, err := newExplorerClient()
	if err != nil {
		return err
	}

	resp, err := c.GetSourceCode(context.Background(), addr)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}
	if !resp.IsOK() {
		return fmt.Errorf("explorer rejected the request: %s", resp.Message)
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("no source entries for %s", addr)
	}

	entry := resp.Result[0]
	if entry.Source == "" {
		return fmt.Errorf("contract at %s is not verified", addr)
	}

	if output == "" {
		fmt.Println(entry.Source)
		return nil
	}

	name := entry.ContractName
	if name == "" {
		name = addr.String()
	}
	outDir := filepath.Join(output, name)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sourcePath := filepath.Join(outDir, name+".sol")
	if err := os.WriteFile(sourcePath, []byte(entry.Source), 0644); err != nil {
		return fmt.Errorf("failed to write source: %w", err)
	}
	fmt.Printf("  ✓ %s\n", sourcePath)

	if entry.ConstructorArgs != "" {
		argsPath := filepath.Join(outDir, "constructor-args.txt")
		if err := os.WriteFile(argsPath, []byte(entry.ConstructorArgs), 0644); err != nil {
			return fmt.Errorf("failed to write constructor args: %w", err)
		}
		fmt.Printf("  ✓ %s\n", argsPath)
	}

	return nil
}
