package config

import "time"

// Node holds process level settings of the daemon.
type Node struct {
	DataDir              string        `toml:"DataDir"`
	ListenAddress        string        `toml:"ListenAddress"`
	TickInterval         time.Duration `toml:"TickInterval"`
	Environment          string        `toml:"Environment"`
	OverlordKeystorePath string        `toml:"OverlordKeystorePath"`
}

// World captures the sale parameters. Amounts are decimal strings in base
// units so that values beyond 64 bits survive the round trip.
type World struct {
	SecondsPerEra           uint64 `toml:"SecondsPerEra"`
	MinBalanceToClaimSpirit string `toml:"MinBalanceToClaimSpirit"`
	LegendaryPrice          string `toml:"LegendaryPrice"`
	MagicPrice              string `toml:"MagicPrice"`
	HeroPrice               string `toml:"HeroPrice"`
	MaxMetadataLen          int    `toml:"MaxMetadataLen"`
	ExistentialDeposit      string `toml:"ExistentialDeposit"`
	Overlord                string `toml:"Overlord,omitempty"`
}

// Incubation captures the feeding and hatching parameters.
type Incubation struct {
	FoodPerEra            uint32 `toml:"FoodPerEra"`
	MaxFoodFeedSelf       uint32 `toml:"MaxFoodFeedSelf"`
	MaxFoodFedPerEra      uint32 `toml:"MaxFoodFedPerEra"`
	IncubationDurationSec uint64 `toml:"IncubationDurationSec"`
}

// Allocation is the per race genesis supply of one tier.
type Allocation struct {
	ForSale  uint32 `toml:"ForSale"`
	Giveaway uint32 `toml:"Giveaway"`
	Reserved uint32 `toml:"Reserved"`
}

// Inventory lists the genesis allocation of every tier.
type Inventory struct {
	Legendary Allocation `toml:"Legendary"`
	Magic     Allocation `toml:"Magic"`
	Hero      Allocation `toml:"Hero"`
}

// Indexer selects the event archive backend.
type Indexer struct {
	Driver string `toml:"Driver"`
	DSN    string `toml:"DSN"`
}

type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Traces   bool   `toml:"Traces"`
	Metrics  bool   `toml:"Metrics"`
}

type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
}
