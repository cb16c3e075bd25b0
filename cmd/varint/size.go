package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/varint/internal/errors"
)

func sizeCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "size values...",
		Short: "Print the encoded size of values",
		Long: `Print the number of bytes each value occupies when encoded, and
the maximum size for the type.

Examples:
  varint size --type u32 300
  varint size --type i64 -1 -9223372036854775808`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindFlag(typ)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				n, err := kind.RequiredSpaceText(arg)
				if err != nil {
					return errors.FromDecode(err, kind).WithDetail(fmt.Sprintf("%q is not a decimal %s.", arg, kind))
				}
				fmt.Fprintf(out, "%s\t%d\n", arg, n)
			}
			fmt.Fprintf(out, "max\t%d\n", kind.MaxSize())
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "u64", "Integer type (u8..u64, i8..i64)")

	return cmd
}
