package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/raksha-app/raksha/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	config *viper.Viper

	isDevEnv bool

	yellow       = color.New(color.FgYellow).SprintFunc()
	warningLabel = yellow("Warning:")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "raksha",
		Short: `raksha is a personal-safety server: users register with
emergency contacts and can trigger an SOS that alerts each of them over
WhatsApp, with their live location attached when available.`,
	}

	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}
