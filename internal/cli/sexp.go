package cli

import (
	"fmt"
	"os"

	"github.com/chewxy/sexp"
	"github.com/spf13/cobra"
)

var sexpCmd = &cobra.Command{
	Use:   "sexp <board_file>",
	Short: "Inspect the s-expression structure of a board file",
	Long: `Parses a KiCad file with a generic s-expression reader and prints a
structural summary. Useful when a board fails to load and the question
is whether the file itself is malformed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSexp,
}

func init() {
	rootCmd.AddCommand(sexpCmd)
}

func runSexp(cmd *cobra.Command, args []string) error {
	filename := args[0]
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	fmt.Printf("File: %s (%d bytes)\n", filename, info.Size())

	sexps, err := sexp.Parse(file)
	if err != nil {
		return fmt.Errorf("not a well-formed s-expression file: %w", err)
	}
	fmt.Printf("Top-level expressions: %d\n", len(sexps))
	for i, s := range sexps {
		if s.IsLeaf() {
			fmt.Printf("  #%d: leaf\n", i+1)
			continue
		}
		fmt.Printf("  #%d: tree with %d leaves\n", i+1, s.LeafCount())
	}
	return nil
}
