package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xsnexplorer/xsn-trezor/internal/signer"
)

func deviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage software signing devices",
	}
	cmd.AddCommand(deviceInitCmd(), deviceImportCmd(), deviceListCmd(), deviceDeleteCmd())
	return cmd
}

func deviceInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a device with a new mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic, err := signer.GenerateMnemonic()
			if err != nil {
				return err
			}
			pterm.DefaultBox.WithTitle("Mnemonic (write this down!)").Println(mnemonic)
			return createDevice(mnemonic)
		},
	}
}

func deviceImportCmd() *cobra.Command {
	var mnemonic string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a device from an existing mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mnemonic == "" {
				fmt.Fprint(os.Stderr, "Mnemonic: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read mnemonic: %w", err)
				}
				mnemonic = strings.Join(strings.Fields(line), " ")
			}
			if !signer.ValidateMnemonic(mnemonic) {
				return errors.New("invalid mnemonic")
			}
			return createDevice(mnemonic)
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "BIP-39 mnemonic (prompted when empty)")
	return cmd
}

func createDevice(mnemonic string) error {
	name := env.cfg.Device
	if env.keystore.Exists(name) {
		return fmt.Errorf("device %q already exists", name)
	}
	password, err := devicePassword(fmt.Sprintf("New password for device %q: ", name), true)
	if err != nil {
		return err
	}
	seed, err := signer.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return err
	}
	defer wipe(seed)

	if err := env.keystore.Create(name, string(env.cfg.Network), seed, password, signer.DefaultKDFParams()); err != nil {
		return err
	}
	pterm.Success.Printf("Device %q created for %s\n", name, env.cfg.Network)
	return nil
}

func deviceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := env.keystore.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				pterm.Info.Println("No devices. Run `xsn-trezor device init`.")
				return nil
			}
			items := make([]pterm.BulletListItem, len(names))
			for i, n := range names {
				text := n
				if n == env.cfg.Device {
					text += " (selected)"
				}
				items[i] = pterm.BulletListItem{Text: text}
			}
			return pterm.DefaultBulletList.WithItems(items).Render()
		},
	}
}

func deviceDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the selected device and its address book",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := env.cfg.Device
			if !yes && !confirm(fmt.Sprintf("Delete device %q? The mnemonic is the only way back.", name)) {
				return nil
			}
			if err := env.keystore.Delete(name); err != nil {
				return err
			}
			if err := env.book.Clear(); err != nil {
				return err
			}
			pterm.Success.Printf("Device %q deleted\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func confirm(question string) bool {
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(question)
	return err == nil && ok
}
