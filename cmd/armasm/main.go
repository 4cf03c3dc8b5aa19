// Command armasm assembles ARMv7-A A32 source into raw instruction words.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-rv32/rv32i/pkg/armasm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "armasm <file>",
		Short: "Assemble ARMv7-A A32 source into instruction words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fp.Close()

			words, err := armasm.Assemble(fp)
			if err != nil {
				return fmt.Errorf("armasm: %w", err)
			}

			if output == "" {
				w := bufio.NewWriter(cmd.OutOrStdout())
				defer w.Flush()
				for _, word := range words {
					fmt.Fprintf(w, "%#08x\n", word)
				}
				return nil
			}

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			defer out.Close()
			buf := make([]byte, 4)
			for _, word := range words {
				binary.LittleEndian.PutUint32(buf, word)
				if _, err := out.Write(buf); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write a binary file of little-endian words instead of stdout hex")
	return cmd
}
