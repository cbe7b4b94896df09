// Command formcraft is a terminal client for a FormCraft server. It keeps
// the signed-in user's forms in a local cache and can render embeds
// headlessly.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shubham-ralli/form-b/internal/log"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "formcraft",
		Short:        "Manage FormCraft forms from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
	}
	cobra.OnInitialize(initConfig)

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.formcraft.yaml)")
	flags.String("api-url", "http://localhost:8080", "FormCraft server URL")
	flags.String("state", "", "local state file (default $HOME/.formcraft/state.json)")
	flags.Bool("debug", false, "verbose logging")
	viper.BindPFlag("api_url", flags.Lookup("api-url"))
	viper.BindPFlag("state", flags.Lookup("state"))
	viper.BindPFlag("debug", flags.Lookup("debug"))

	root.AddCommand(newLoginCmd(), newLogoutCmd(), newFormsCmd(), newEmbedCmd())
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".formcraft")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("FORMCRAFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "formcraft: read config: %v\n", err)
		}
	}
}

func statePath() string {
	if p := viper.GetString("state"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "formcraft-state.json")
	}
	return filepath.Join(home, ".formcraft", "state.json")
}
