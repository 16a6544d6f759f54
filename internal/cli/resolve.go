package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/internal/duration"
	"github.com/jmylchreest/splash/internal/options"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		opts      optionsValue
		valueType string
		asMillis  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <keyPath>",
		Short: "Resolve a configuration value",
		Long: `Resolve a key path the way a call would: call options first, then the exact
key in configuration, then its platform-specific spellings.

Examples:
  splash resolve spinnerStyle -c capacitor.config.json -p android
  splash resolve showDuration --ms -o showDuration=1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.tree(nil)
			if err != nil {
				return err
			}
			r, err := a.resolver(tree)
			if err != nil {
				return err
			}

			value, found := typedValue(r, args[0], opts.Options(), valueType)
			if !found {
				return fmt.Errorf("%s not found for platform %s", args[0], r.Platform())
			}

			if asMillis {
				n, ok := config.AsNumber(value)
				if !ok {
					return fmt.Errorf("%s is not a number: %v", args[0], value)
				}
				threshold := duration.DefaultThreshold
				if t, ok := r.Number(options.KeyDurationThreshold, opts.Options()); ok {
					threshold = t
				}
				value = duration.Normalizer{Threshold: threshold}.ToMilliseconds(n)
			}

			out, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("failed to encode value: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	addOptionsFlag(cmd.Flags(), &opts)
	cmd.Flags().StringVarP(&valueType, "type", "t", "", "require a type (string, int, float, number, bool, object)")
	cmd.Flags().BoolVar(&asMillis, "ms", false, "normalize a duration value to milliseconds")
	return cmd
}

func typedValue(r *config.Resolver, keyPath string, opts config.Options, valueType string) (any, bool) {
	switch valueType {
	case "string":
		return r.String(keyPath, opts)
	case "int":
		return r.Int(keyPath, opts)
	case "float":
		return r.Float(keyPath, opts)
	case "number":
		return r.Number(keyPath, opts)
	case "bool":
		return r.Bool(keyPath, opts)
	case "object":
		return r.Object(keyPath, opts)
	default:
		return r.Value(keyPath, opts)
	}
}
