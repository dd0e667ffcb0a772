package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads ./data/config.yaml (if present) and enables env overrides.
func ReadConfig(paths ...string) error {
	viper.SetConfigName("config")
	if len(paths) == 0 {
		paths = []string{"./data/"}
	}
	for _, p := range paths {
		viper.AddConfigPath(p)
	}
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
