package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     = defaultCLIConfig()
	logger  = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "uid2-cli",
	Short: "Operator tool for the UID2 token/data codec",
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.uid2-cli.yaml)")
	rootCmd.PersistentFlags().String("scope", cfg.Scope, "identity scope: uid2 or euid")
	rootCmd.PersistentFlags().String("keysfile", cfg.KeysFile, "path to a JSON key bundle")
	rootCmd.PersistentFlags().String("loglevel", cfg.LogLevel, "log level: debug|info|warn|error")

	_ = viper.BindPFlag("scope", rootCmd.PersistentFlags().Lookup("scope"))
	_ = viper.BindPFlag("keysfile", rootCmd.PersistentFlags().Lookup("keysfile"))
	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".uid2-cli")
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix("uid2")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "uid2-cli: config: %v\n", err)
		os.Exit(1)
	}
}

func initLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
