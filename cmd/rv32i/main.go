// Command rv32i loads and runs RV32I ELF images through pkg/riscv.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-rv32/rv32i/pkg/riscv"
	"github.com/go-rv32/rv32i/pkg/rvlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rv32i",
		Short: "RV32I instruction-set simulator",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var trace bool
	var memSize uint32

	cmd := &cobra.Command{
		Use:   "run <elf-or-glob>",
		Short: "Load and run one or more ELF images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := filepath.Glob(args[0])
			if err != nil {
				return fmt.Errorf("rv32i: bad pattern %q: %w", args[0], err)
			}
			if len(paths) == 0 {
				paths = []string{args[0]}
			}

			log := rvlog.Default()
			if trace {
				log = rvlog.New(os.Stderr, slog.LevelDebug)
			}
			failed := 0
			for _, path := range paths {
				if err := runOne(cmd.Context(), path, trace, memSize, log); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					failed++
					continue
				}
			}
			if failed > 0 {
				return fmt.Errorf("rv32i: %d of %d run(s) failed", failed, len(paths))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "log one line per retired instruction")
	cmd.Flags().Uint32Var(&memSize, "mem-size", riscv.DefaultMemSize, "machine memory size in bytes")
	return cmd
}

func runOne(ctx context.Context, path string, trace bool, memSize uint32, log *rvlog.Logger) error {
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()

	cfg := riscv.NewConfig(riscv.WithMemSize(memSize), riscv.WithTrace(trace))
	machine := riscv.NewMachine(cfg, log.Module(path))
	if err := machine.LoadELF(fp); err != nil {
		return err
	}

	result := machine.Run(ctx)
	switch result.Reason {
	case riscv.ReasonSuccess:
		fmt.Printf("PASS %s (retired=%d pc=%#08x)\n", path, result.Retired, result.FinalPC)
		return nil
	case riscv.ReasonCancelled:
		return fmt.Errorf("cancelled after %d instructions: %w", result.Retired, result.Err)
	default:
		return fmt.Errorf("after %d instructions at pc=%#08x: %w", result.Retired, result.FinalPC, result.Err)
	}
}
