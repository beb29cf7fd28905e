package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	var (
		to, amount, fee string
		dryRun, yes     bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Pay an address from the device's funds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" || amount == "" {
				return errors.New("--to and --amount are required")
			}
			svc, err := env.service(true)
			if err != nil {
				return err
			}

			draft, err := svc.Prepare(cmd.Context(), to, amount, fee)
			if err != nil {
				return err
			}
			p := draft.Payment
			rows := [][]string{{"Output", "Address", "Amount"}}
			rows = append(rows, []string{"payment", to, p.Amount.String()})
			if p.Change > 0 {
				rows = append(rows, []string{"change", p.ChangeAddress, p.Change.String()})
			}
			rows = append(rows, []string{"fee", "", p.Fee.String()})
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			pterm.Printfln("Spending %d inputs worth %s XSN", len(p.Inputs), p.Selection.Total)

			res, err := svc.Sign(cmd.Context(), draft)
			if err != nil {
				return err
			}
			if dryRun {
				pterm.Info.Println("Dry run, not broadcast.")
				fmt.Fprintln(cmd.OutOrStdout(), res.Serialized)
				return nil
			}
			if !yes && !confirm("Broadcast this transaction?") {
				return nil
			}
			txid, err := svc.Broadcast(cmd.Context(), res)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Sent: %s", txid)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination address")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in XSN")
	cmd.Flags().StringVar(&fee, "fee", "0.0001", "Fee in XSN")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Sign but print the transaction instead of broadcasting it")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Broadcast without asking")
	return cmd
}
