package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcfw/nostrkeys/internal/keyring"
	"github.com/tcfw/nostrkeys/pkg/ncrypt"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "list stored identities",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	createCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "generate a new identity",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	}

	importCmd = &cobra.Command{
		Use:   "import <name> <nsec>",
		Short: "encrypt and store an existing secret key",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport,
	}

	addCmd = &cobra.Command{
		Use:   "add <name> <ncryptsec>",
		Short: "store an already encrypted secret key",
		Args:  cobra.ExactArgs(2),
		RunE:  runAdd,
	}

	forgetCmd = &cobra.Command{
		Use:   "forget <name>",
		Short: "remove an identity",
		Args:  cobra.ExactArgs(1),
		RunE:  runForget,
	}

	pubkeyCmd = &cobra.Command{
		Use:   "pubkey <name>",
		Short: "unlock an identity and print its public key",
		Args:  cobra.ExactArgs(1),
		RunE:  runPubkey,
	}
)

func runList(cmd *cobra.Command, args []string) error {
	return withKeyring(cmd, func(k *keyring.Keyring) error {
		for _, e := range k.List() {
			p, err := ncrypt.Inspect(e.Ncrypt)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(unreadable)\n", e.Name)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tlog_n=%d\tkey_security=%d\n", e.Name, p.LogN, p.KeySecurity)
		}
		return nil
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	pass, err := passphrase(true)
	if err != nil {
		return err
	}

	return withKeyring(cmd, func(k *keyring.Keyring) error {
		pk, err := k.Create(args[0], pass)
		if err != nil {
			return err
		}

		return printPubkey(cmd, pk)
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	pass, err := passphrase(true)
	if err != nil {
		return err
	}

	return withKeyring(cmd, func(k *keyring.Keyring) error {
		return k.Import(args[0], args[1], pass)
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withKeyring(cmd, func(k *keyring.Keyring) error {
		return k.Add(args[0], args[1])
	})
}

func runForget(cmd *cobra.Command, args []string) error {
	return withKeyring(cmd, func(k *keyring.Keyring) error {
		return k.Forget(args[0])
	})
}

func runPubkey(cmd *cobra.Command, args []string) error {
	return withActive(cmd, args[0], func(ctx context.Context, k *keyring.Keyring) error {
		pk, err := k.Signer().PublicKey(ctx)
		if err != nil {
			return err
		}

		return printPubkey(cmd, pk)
	})
}

// withActive unlocks and activates name before calling fn.
func withActive(cmd *cobra.Command, name string, fn func(context.Context, *keyring.Keyring) error) error {
	pass, err := passphrase(false)
	if err != nil {
		return err
	}

	return withKeyring(cmd, func(k *keyring.Keyring) error {
		sk, err := k.Unlock(name, pass)
		if err != nil {
			return err
		}
		for i := range sk {
			sk[i] = 0
		}

		if err := k.Activate(name); err != nil {
			return err
		}

		return fn(cmd.Context(), k)
	})
}

func printPubkey(cmd *cobra.Command, pk string) error {
	npub, err := ncrypt.EncodePublic(pk)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", pk, npub)

	return nil
}
