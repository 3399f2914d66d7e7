package main

// cliConfig holds the values populated by viper from cobra flags,
// environment variables (UID2_*), or a config file — the same
// flags-then-env-then-file layering go-i2p/newsgo's cmd/root.go sets up
// for its own CLI.
type cliConfig struct {
	Scope    string `mapstructure:"scope"`
	KeysFile string `mapstructure:"keysfile"`
	LogLevel string `mapstructure:"loglevel"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Scope:    "uid2",
		LogLevel: "info",
	}
}
