// xsn-trezor manages a hardware-wallet style XSN wallet against the XSN
// block explorer: it derives addresses on the signing device, lists funds,
// builds and signs payments and broadcasts them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xsnexplorer/xsn-trezor/config"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
)

// Exit codes.
const (
	exitError             = 1
	exitInsufficientFunds = 2
)

var (
	flags config.Flags
	env   *appEnv
)

var rootCmd = &cobra.Command{
	Use:           "xsn-trezor",
	Short:         "XSN wallet backed by a signing device",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags.Parsed(cmd.Flags())
		var err error
		env, err = newAppEnv(&flags)
		return err
	},
}

func init() {
	flags.Register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(deviceCmd())
	rootCmd.AddCommand(addressCmd())
	rootCmd.AddCommand(utxosCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(signMessageCmd())
	rootCmd.AddCommand(verifyMessageCmd())
	rootCmd.AddCommand(resetCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// execute runs the command line args and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if env != nil {
		if cerr := env.Close(); cerr != nil && err == nil {
			err = cerr
		}
		env = nil
	}
	if err != nil {
		return report(err)
	}
	return 0
}

// report prints err and returns the process exit code. Running out of
// funds is a user situation, not a failure of the tool, and is reported
// on its own.
func report(err error) int {
	if errors.Is(err, wallet.ErrInsufficientFunds) {
		pterm.Warning.Println("Not enough funds: " + err.Error())
		return exitInsufficientFunds
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitError
}
