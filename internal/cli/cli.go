package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/tcfw/nostrkeys/internal/config"
	"github.com/tcfw/nostrkeys/internal/keyring"
	"github.com/tcfw/nostrkeys/internal/utils/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:           "nostrkeys",
		Short:         "Manage passphrase protected nostr identities",
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: loadConfig,
	}

	cfg *config.Config
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	rootCmd.PersistentFlags().String("config", "", "config file (default nostrkeys.yaml in /etc/nostrkeys, $HOME/.nostrkeys or .)")
	rootCmd.PersistentFlags().StringP("passphrase", "p", "", "passphrase, prompted for when empty")
	rootCmd.PersistentFlags().Bool("metrics", false, "print counters to stderr when done")
	viper.BindPFlag(config.Cfg_verbose, rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag(config.Cfg_passphrase, rootCmd.PersistentFlags().Lookup("passphrase"))

	regCommands()

	err := rootCmd.Execute()
	if err != nil {
		logging.WithError(err).Error("command failed")
	}

	return err
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if f, _ := cmd.Flags().GetString("config"); f != "" {
		viper.SetConfigFile(f)
	}

	var err error
	cfg, err = config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	return nil
}

// withKeyring opens the configured keyring for the duration of fn.
func withKeyring(cmd *cobra.Command, fn func(k *keyring.Keyring) error) error {
	k, err := keyring.New(cfg)
	if err != nil {
		return err
	}

	err = fn(k)

	if m, _ := cmd.Flags().GetBool("metrics"); m {
		printMetrics(k)
	}

	if cerr := k.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "closing keyring")
	}

	return err
}

// passphrase returns the configured passphrase or reads one from the
// terminal. With confirm set the user has to type it twice.
func passphrase(confirm bool) (string, error) {
	if p := cfg.Passphrase(); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no passphrase given and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	p, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "reading passphrase")
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Repeat passphrase: ")
		again, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", errors.Wrap(err, "reading passphrase")
		}
		if string(again) != string(p) {
			return "", errors.New("passphrases do not match")
		}
	}

	return string(p), nil
}

func printMetrics(k *keyring.Keyring) {
	mfs, err := k.Metrics().Gather()
	if err != nil {
		logging.WithError(err).Warn("gathering metrics")
		return
	}

	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, l := range m.GetLabel() {
				labels += fmt.Sprintf("%s=%q ", l.GetName(), l.GetValue())
			}
			fmt.Fprintf(os.Stderr, "%s %s%v\n", mf.GetName(), labels, m.GetCounter().GetValue())
		}
	}
}
