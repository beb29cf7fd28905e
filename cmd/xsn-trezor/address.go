package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

func addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage device addresses",
	}
	cmd.AddCommand(addressNewCmd(), addressListCmd(), addressVerifyCmd())
	return cmd
}

func addressNewCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Derive the next address of a type on the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := types.ParseAddressType(typ)
			if err != nil {
				return err
			}
			svc, err := env.service(true)
			if err != nil {
				return err
			}
			d, err := svc.NewAddress(cmd.Context(), t)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("%s  %s", d.Address, d.SerializedPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "segwit", "Address type: legacy, p2sh-segwit or segwit")
	return cmd
}

func addressListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the addresses of the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := env.book.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				pterm.Info.Println("No addresses. Run `xsn-trezor address new`.")
				return nil
			}
			rows := [][]string{{"Address", "Type", "Path"}}
			for _, e := range entries {
				t, _ := e.Type()
				rows = append(rows, []string{e.Address, t.String(), e.SerializedPath})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func addressVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <address>",
		Short: "Show an address on the device and check it against the book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := env.service(true)
			if err != nil {
				return err
			}
			d, err := svc.VerifyAddress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			pterm.Success.Printfln("%s matches %s", d.Address, d.SerializedPath)
			return nil
		},
	}
}
