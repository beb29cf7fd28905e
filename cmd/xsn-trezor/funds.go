package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

func utxosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "utxos",
		Short: "List unspent outputs of the device addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := env.service(false)
			if err != nil {
				return err
			}
			funds, err := svc.Funds(cmd.Context())
			if err != nil {
				return err
			}
			if len(funds.UTXOs) == 0 {
				pterm.Info.Println("No unspent outputs.")
				return nil
			}

			rows := [][]string{{"Outpoint", "Address", "Amount", "TPoS"}}
			for _, u := range funds.UTXOs {
				note := ""
				if c, ok := funds.Contract(u.Outpoint()); ok {
					note = fmt.Sprintf("collateral (%s)", c.State)
				}
				rows = append(rows, []string{u.Outpoint().String(), u.Address, u.Satoshis.String(), note})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			if active, closed := funds.ContractStates(); active+closed > 0 {
				pterm.Printfln("TPoS contracts: %d active, %d closed", active, closed)
			}
			pterm.Printfln("Spendable: %s XSN, locked: %s XSN",
				types.SumSatoshis(funds.Spendable()), types.SumSatoshis(funds.Locked()))
			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the balance of the device addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := env.service(false)
			if err != nil {
				return err
			}
			bals, total, err := svc.Balances(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{{"Address", "Available", "Received", "Spent"}}
			for _, b := range bals {
				rows = append(rows, []string{
					b.Address,
					b.Balance.Available.String(),
					b.Balance.Received.String(),
					b.Balance.Spent.String(),
				})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			pterm.Println(fmt.Sprintf("Total available: %s XSN", total))
			return nil
		},
	}
}
