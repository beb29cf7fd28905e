package main

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xsnexplorer/xsn-trezor/internal/signer"
)

func signMessageCmd() *cobra.Command {
	var address, message string
	cmd := &cobra.Command{
		Use:   "sign-message",
		Short: "Sign a message with the key of a device address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				return errors.New("--address is required")
			}
			svc, err := env.service(true)
			if err != nil {
				return err
			}
			sig, err := svc.SignMessage(cmd.Context(), address, message)
			if err != nil {
				return err
			}
			pterm.Println(sig.Signature)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Device address")
	cmd.Flags().StringVar(&message, "message", "", "Message text")
	return cmd
}

func verifyMessageCmd() *cobra.Command {
	var address, message, signature string
	cmd := &cobra.Command{
		Use:   "verify-message",
		Short: "Verify a signed message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := signer.VerifyMessage(address, signature, message, env.params); err != nil {
				return err
			}
			pterm.Success.Println("Signature is valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Signing address")
	cmd.Flags().StringVar(&message, "message", "", "Message text")
	cmd.Flags().StringVar(&signature, "signature", "", "Base64 signature")
	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every address of the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("Forget all addresses of device " + env.cfg.Device + "?") {
				return nil
			}
			svc, err := env.service(false)
			if err != nil {
				return err
			}
			if err := svc.Reset(); err != nil {
				return err
			}
			pterm.Success.Println("Address book cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
