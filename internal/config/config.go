// Package config binds the solver drivers' flags to environment variables
// via viper, the way bluebear94-odnocam (macondo) layers viper over its
// own command surface for tool-level defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "C4"

// Bind wires cmd's already-defined flags to C4_-prefixed environment
// variables of the same name (e.g. --log-level / C4_LOG_LEVEL), so a
// deployment can override defaults without touching the invocation. Flag
// values explicitly passed on the command line still take precedence.
func Bind(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}
