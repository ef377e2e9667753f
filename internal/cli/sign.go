package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/nostrkeys/internal/keyring"
	"github.com/tcfw/nostrkeys/pkg/signer"
)

var (
	signCmd = &cobra.Command{
		Use:   "sign <name>",
		Short: "sign an event as an identity",
		Long:  "Unlocks and activates the identity, then signs an event template read from --file ('-' for stdin) or built from --kind and --content. The signed event is printed as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSign,
	}
)

func init() {
	signCmd.Flags().StringP("file", "f", "", "event template JSON to sign. Use '-' for stdin")
	signCmd.Flags().IntP("kind", "k", 1, "event kind when no template file is given")
	signCmd.Flags().StringP("content", "c", "", "event content when no template file is given")
}

func runSign(cmd *cobra.Command, args []string) error {
	tmpl, err := readTemplate(cmd)
	if err != nil {
		return err
	}

	return withActive(cmd, args[0], func(ctx context.Context, k *keyring.Keyring) error {
		evt, err := k.Signer().SignEvent(ctx, tmpl)
		if err != nil {
			return err
		}

		d, err := json.Marshal(evt)
		if err != nil {
			return errors.Wrap(err, "marshalling event")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", d)

		return nil
	})
}

func readTemplate(cmd *cobra.Command) (signer.EventTemplate, error) {
	var tmpl signer.EventTemplate

	f, _ := cmd.Flags().GetString("file")
	if f == "" {
		tmpl.Kind, _ = cmd.Flags().GetInt("kind")
		tmpl.Content, _ = cmd.Flags().GetString("content")
		return tmpl, nil
	}

	var (
		d   []byte
		err error
	)
	if f == "-" {
		d, err = io.ReadAll(cmd.InOrStdin())
	} else {
		d, err = os.ReadFile(f)
	}
	if err != nil {
		return tmpl, errors.Wrap(err, "reading template")
	}

	if err := json.Unmarshal(d, &tmpl); err != nil {
		return tmpl, errors.Wrap(err, "parsing template")
	}

	return tmpl, nil
}
