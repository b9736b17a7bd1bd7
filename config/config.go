// Package config holds the node-side configuration of one inherent
// channel: which identifier it uses, how envelopes are shaped, and how
// the local provider behaves.
package config

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/provider"
	"github.com/blockberries/inherents/types"
)

const (
	// All constant strings are used for CLI flag names and corresponding keys for config values.
	flagIdentifier    = "inherent-identifier"
	flagShape         = "inherent-shape"
	flagFixedSize     = "inherent-fixed-size"
	flagMaxEncodedLen = "inherent-max-encoded-len"
	flagPolicy        = "inherent-policy"
	flagVariant       = "inherent-variant"
	flagInitial       = "inherent-initial"
)

// Envelope shapes.
const (
	ShapeBytes = "bytes"
	ShapeFixed = "fixed"
)

// Provider variants.
const (
	VariantStatic  = "static"
	VariantCounter = "counter"
)

// Config describes one inherent channel.
type Config struct {
	Identifier    string `mapstructure:"inherent-identifier"`
	Shape         string `mapstructure:"inherent-shape"`
	FixedSize     int    `mapstructure:"inherent-fixed-size"`
	MaxEncodedLen int    `mapstructure:"inherent-max-encoded-len"`
	Policy        string `mapstructure:"inherent-policy"`
	Variant       string `mapstructure:"inherent-variant"`
	// Initial is the provider's starting value. Empty means the
	// provider starts without data.
	Initial string `mapstructure:"inherent-initial"`
}

// DefaultConfig returns the configuration of the default channel.
func DefaultConfig() Config {
	return Config{
		Identifier:    "ext_data",
		Shape:         ShapeBytes,
		FixedSize:     codec.DefaultFixedSize,
		MaxEncodedLen: 64,
		Policy:        provider.Optional.String(),
		Variant:       VariantCounter,
	}
}

// AllFlagNames lists every flag registered by InitFlags.
func AllFlagNames() []string {
	return []string{
		flagIdentifier, flagShape, flagFixedSize, flagMaxEncodedLen, flagPolicy, flagVariant, flagInitial,
	}
}

// InitFlags registers the channel flags on fs, using def for defaults.
func InitFlags(fs *pflag.FlagSet, def Config) {
	fs.String(flagIdentifier, def.Identifier, "8-byte identifier of the inherent channel")
	fs.String(flagShape, def.Shape, "envelope shape: bytes or fixed")
	fs.Int(flagFixedSize, def.FixedSize, "envelope width in bytes when the shape is fixed")
	fs.Int(flagMaxEncodedLen, def.MaxEncodedLen, "maximum encoded value length in bytes")
	fs.String(flagPolicy, def.Policy, "provider policy when it holds no data: optional or strict")
	fs.String(flagVariant, def.Variant, "provider variant: static or counter")
	fs.String(flagInitial, def.Initial, "initial provider value; empty starts without data")
}

// Load reads the configuration from v. Flags bound on v take
// precedence over INHERENT_* environment variables and the config file.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	for _, name := range AllFlagNames() {
		// Register every key so AutomaticEnv applies without flags.
		v.SetDefault(name, defaultValue(cfg, name))
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultValue(c Config, name string) any {
	switch name {
	case flagIdentifier:
		return c.Identifier
	case flagShape:
		return c.Shape
	case flagFixedSize:
		return c.FixedSize
	case flagMaxEncodedLen:
		return c.MaxEncodedLen
	case flagPolicy:
		return c.Policy
	case flagVariant:
		return c.Variant
	default:
		return c.Initial
	}
}

// Validate checks the configuration is coherent.
func (c Config) Validate() error {
	if _, err := types.NewIdentifier(c.Identifier); err != nil {
		return fmt.Errorf("config: %s: %w", flagIdentifier, err)
	}
	for i := 0; i < len(c.Identifier); i++ {
		if c.Identifier[i] < 0x20 || c.Identifier[i] > 0x7e {
			return fmt.Errorf("config: %s %q must be printable ASCII", flagIdentifier, c.Identifier)
		}
	}
	if c.MaxEncodedLen <= 0 {
		return fmt.Errorf("config: %s must be positive, got %d", flagMaxEncodedLen, c.MaxEncodedLen)
	}
	switch c.Shape {
	case ShapeBytes:
	case ShapeFixed:
		if c.FixedSize <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", flagFixedSize, c.FixedSize)
		}
		need := len(binary.AppendUvarint(nil, uint64(c.MaxEncodedLen))) + c.MaxEncodedLen
		if need > c.FixedSize {
			return fmt.Errorf("config: %s %d cannot hold %d-byte values (needs %d)",
				flagFixedSize, c.FixedSize, c.MaxEncodedLen, need)
		}
	default:
		return fmt.Errorf("config: unknown %s %q", flagShape, c.Shape)
	}
	if _, err := provider.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config: %s: %w", flagPolicy, err)
	}
	switch c.Variant {
	case VariantStatic, VariantCounter:
	default:
		return fmt.Errorf("config: unknown %s %q", flagVariant, c.Variant)
	}
	if _, err := c.InitialValue(); err != nil {
		return err
	}
	return nil
}

// ChannelIdentifier returns the configured identifier.
func (c Config) ChannelIdentifier() (types.Identifier, error) {
	return types.NewIdentifier(c.Identifier)
}

// EnvelopeShape returns the configured envelope shape.
func (c Config) EnvelopeShape() codec.Shape {
	if c.Shape == ShapeFixed {
		return codec.FixedBytes{Size: c.FixedSize}
	}
	return codec.VarBytes{}
}

// ProviderPolicy returns the configured provider policy.
func (c Config) ProviderPolicy() provider.Policy {
	p, _ := provider.ParsePolicy(c.Policy)
	return p
}

// InitialValue parses the initial provider value. A nil result means
// the provider starts without data.
func (c Config) InitialValue() (*uint64, error) {
	if c.Initial == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(c.Initial, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", flagInitial, err)
	}
	return &v, nil
}
