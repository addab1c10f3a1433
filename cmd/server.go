package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	devconfig "github.com/raksha-app/raksha/dev/config"
	"github.com/raksha-app/raksha/server"
	"github.com/raksha-app/raksha/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a raksha server",
	Long:  `The raksha server houses the SOS dispatch workflow & unsafe-location reporting`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	config = viper.New()

	if serverConfigFile == "" && !isDevEnv {
		fmt.Println(warningLabel, "no --sconfig provided, falling back to dev config")
	}

	if serverConfigFile == "" {
		serverConfigFile = devConfigFilePath()
	}

	config.SetConfigFile(serverConfigFile)
	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return config
}

// devConfigFilePath returns the dev config location, writing the embedded
// default there on first run.
func devConfigFilePath() string {
	workingDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	configDir := filepath.Join(workingDir, "dev", "config")
	if err := utils.CreateDirIfNotExist(filepath.Join(workingDir, "dev")); err != nil {
		log.Panic(err)
	}
	if err := utils.CreateDirIfNotExist(configDir); err != nil {
		log.Panic(err)
	}

	configFilePath := filepath.Join(configDir, "server.yml")
	if !utils.FileExist(configFilePath) {
		if err := os.WriteFile(configFilePath, []byte(devconfig.SERVER_YML), 0600); err != nil {
			log.Panic(err)
		}
	}

	return configFilePath
}
