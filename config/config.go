package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/holiman/uint256"

	"shellchain/core/runtime"
	"shellchain/crypto"
	"shellchain/native/incubation"
	"shellchain/native/world"
	"shellchain/observability/logging"
	telemetry "shellchain/observability/otel"
)

// KeystoreParams is the scrypt cost used for generated Overlord keys.
var KeystoreParams = crypto.StandardKeystore

type Config struct {
	Node       Node       `toml:"Node"`
	World      World      `toml:"World"`
	Incubation Incubation `toml:"Incubation"`
	Inventory  Inventory  `toml:"Inventory"`
	Indexer    Indexer    `toml:"Indexer"`
	Telemetry  Telemetry  `toml:"Telemetry"`
	Logging    Logging    `toml:"Logging"`
}

// Default returns the production configuration.
func Default() *Config {
	params := world.DefaultParams()
	inc := incubation.DefaultParams()
	inv := world.DefaultInventory()
	return &Config{
		Node: Node{
			DataDir:       "./shell-data",
			ListenAddress: ":8080",
			TickInterval:  6 * time.Second,
			Environment:   "local",
		},
		World: World{
			SecondsPerEra:           params.SecondsPerEra,
			MinBalanceToClaimSpirit: params.MinBalanceToClaimSpirit.Dec(),
			LegendaryPrice:          params.LegendaryPrice.Dec(),
			MagicPrice:              params.MagicPrice.Dec(),
			HeroPrice:               params.HeroPrice.Dec(),
			MaxMetadataLen:          params.MaxMetadataLen,
			ExistentialDeposit:      "1",
		},
		Incubation: Incubation{
			FoodPerEra:            inc.FoodPerEra,
			MaxFoodFeedSelf:       inc.MaxFoodFeedSelf,
			MaxFoodFedPerEra:      inc.MaxFoodFedPerEra,
			IncubationDurationSec: inc.IncubationDurationSec,
		},
		Inventory: Inventory{
			Legendary: fromAllocation(inv[world.TierLegendary]),
			Magic:     fromAllocation(inv[world.TierMagic]),
			Hero:      fromAllocation(inv[world.TierHero]),
		},
		Indexer: Indexer{Driver: "sqlite", DSN: "events.db"},
		Logging: Logging{Level: "info", MaxSizeMB: 100, MaxBackups: 5},
	}
}

// Load loads the configuration from the given path. A missing file is
// replaced by the defaults, with a fresh Overlord keystore next to it.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := ensureKeystore(path, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Node.Environment) == "" {
		cfg.Node.Environment = "local"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ensureKeystore(configPath string, cfg *Config) error {
	keystorePath := cfg.Node.OverlordKeystorePath
	if keystorePath == "" {
		keystorePath = defaultKeystorePath(configPath)
	}

	if _, err := os.Stat(keystorePath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := crypto.SaveToKeystore(keystorePath, key, "", KeystoreParams); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if cfg.Node.OverlordKeystorePath != keystorePath {
		cfg.Node.OverlordKeystorePath = keystorePath
		return persist(configPath, cfg)
	}

	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, key, "", KeystoreParams); err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Node.OverlordKeystorePath = keystorePath
	cfg.World.Overlord = key.PubKey().Address().String()

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." || dir == "" {
		dir = ""
	}
	return filepath.Join(dir, "overlord.keystore")
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil configuration")
	}
	if c.Node.TickInterval <= 0 {
		return fmt.Errorf("node: TickInterval must be positive, got %s", c.Node.TickInterval)
	}
	if strings.TrimSpace(c.Node.DataDir) == "" {
		return errors.New("node: DataDir must be set")
	}
	rc, err := c.RuntimeConfig()
	if err != nil {
		return err
	}
	if err := rc.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if _, err := c.Genesis(); err != nil {
		return err
	}
	switch c.Indexer.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("indexer: unsupported driver %q", c.Indexer.Driver)
	}
	if c.Indexer.Driver == "postgres" && strings.TrimSpace(c.Indexer.DSN) == "" {
		return errors.New("indexer: postgres requires a DSN")
	}
	if (c.Telemetry.Traces || c.Telemetry.Metrics) && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return errors.New("telemetry: Endpoint is required when exporters are enabled")
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return errors.New("logging: rotation limits must not be negative")
	}
	return nil
}

// RuntimeConfig converts the parsed settings into runtime parameters.
func (c *Config) RuntimeConfig() (runtime.Config, error) {
	var out runtime.Config
	amounts := []struct {
		name string
		raw  string
		dst  **uint256.Int
	}{
		{"MinBalanceToClaimSpirit", c.World.MinBalanceToClaimSpirit, &out.World.MinBalanceToClaimSpirit},
		{"LegendaryPrice", c.World.LegendaryPrice, &out.World.LegendaryPrice},
		{"MagicPrice", c.World.MagicPrice, &out.World.MagicPrice},
		{"HeroPrice", c.World.HeroPrice, &out.World.HeroPrice},
		{"ExistentialDeposit", c.World.ExistentialDeposit, &out.ExistentialDeposit},
	}
	for _, amount := range amounts {
		value, err := parseAmount(amount.raw)
		if err != nil {
			return runtime.Config{}, fmt.Errorf("world: invalid %s: %w", amount.name, err)
		}
		*amount.dst = value
	}
	out.World.SecondsPerEra = c.World.SecondsPerEra
	out.World.MaxMetadataLen = c.World.MaxMetadataLen
	out.Incubation = incubation.Params{
		FoodPerEra:            c.Incubation.FoodPerEra,
		MaxFoodFeedSelf:       c.Incubation.MaxFoodFeedSelf,
		MaxFoodFedPerEra:      c.Incubation.MaxFoodFedPerEra,
		IncubationDurationSec: c.Incubation.IncubationDurationSec,
	}
	return out, nil
}

// Genesis converts the inventory section and the optional Overlord address.
func (c *Config) Genesis() (world.Genesis, error) {
	g := world.Genesis{Inventory: map[world.Tier]world.Allocation{
		world.TierLegendary: c.Inventory.Legendary.toAllocation(),
		world.TierMagic:     c.Inventory.Magic.toAllocation(),
		world.TierHero:      c.Inventory.Hero.toAllocation(),
	}}
	if raw := strings.TrimSpace(c.World.Overlord); raw != "" {
		acct, err := crypto.ParseAccount(raw)
		if err != nil {
			return world.Genesis{}, fmt.Errorf("world: invalid Overlord: %w", err)
		}
		g.Overlord = &acct
	}
	return g, nil
}

// LoggingOptions maps the logging section onto the logger setup.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      logging.ParseLevel(c.Logging.Level),
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}

// TelemetryConfig maps the telemetry section onto the exporter setup.
func (c *Config) TelemetryConfig(service string) telemetry.Config {
	return telemetry.Config{
		ServiceName: service,
		Environment: c.Node.Environment,
		Endpoint:    c.Telemetry.Endpoint,
		Insecure:    c.Telemetry.Insecure,
		Traces:      c.Telemetry.Traces,
		Metrics:     c.Telemetry.Metrics,
	}
}

func parseAmount(raw string) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("amount must be set")
	}
	return uint256.FromDecimal(trimmed)
}

func fromAllocation(a world.Allocation) Allocation {
	return Allocation{ForSale: a.ForSale, Giveaway: a.Giveaway, Reserved: a.Reserved}
}

func (a Allocation) toAllocation() world.Allocation {
	return world.Allocation{ForSale: a.ForSale, Giveaway: a.Giveaway, Reserved: a.Reserved}
}
