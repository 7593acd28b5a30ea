package world

import (
	"fmt"
	"strings"
)

// Tier is the rarity class of an Origin of Shell. Hero is the whitelist and
// preorder tier.
type Tier uint8

const (
	TierHero Tier = iota
	TierMagic
	TierLegendary
)

// Tiers lists every tier in genesis order.
var Tiers = []Tier{TierLegendary, TierMagic, TierHero}

func (t Tier) String() string {
	switch t {
	case TierHero:
		return "hero"
	case TierMagic:
		return "magic"
	case TierLegendary:
		return "legendary"
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t <= TierLegendary }

// ParseTier decodes a tier name as produced by String.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("world: unknown tier %q", s)
}

// Race is the closed set of races. The numeric values are the single
// canonical encoding used for attributes and storage.
type Race uint8

const (
	RaceCyborg Race = iota
	RaceAISpectre
	RaceXGene
	RacePandroid
)

// Races lists every race.
var Races = []Race{RaceCyborg, RaceAISpectre, RaceXGene, RacePandroid}

func (r Race) String() string {
	switch r {
	case RaceCyborg:
		return "cyborg"
	case RaceAISpectre:
		return "ai_spectre"
	case RaceXGene:
		return "xgene"
	case RacePandroid:
		return "pandroid"
	}
	return fmt.Sprintf("race(%d)", uint8(r))
}

// Valid reports whether r is a known race.
func (r Race) Valid() bool { return r <= RacePandroid }

// ParseRace decodes a race name as produced by String.
func ParseRace(s string) (Race, error) {
	for _, r := range Races {
		if strings.EqualFold(strings.TrimSpace(s), r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRace, s)
}

// Career is the closed set of careers.
type Career uint8

const (
	CareerHackerWizard Career = iota
	CareerHardwareDruid
	CareerRoboWarrior
	CareerTradeNegotiator
	CareerWeb3Monk
)

// Careers lists every career.
var Careers = []Career{CareerHackerWizard, CareerHardwareDruid, CareerRoboWarrior, CareerTradeNegotiator, CareerWeb3Monk}

func (c Career) String() string {
	switch c {
	case CareerHackerWizard:
		return "hacker_wizard"
	case CareerHardwareDruid:
		return "hardware_druid"
	case CareerRoboWarrior:
		return "robo_warrior"
	case CareerTradeNegotiator:
		return "trade_negotiator"
	case CareerWeb3Monk:
		return "web3_monk"
	}
	return fmt.Sprintf("career(%d)", uint8(c))
}

// Valid reports whether c is a known career.
func (c Career) Valid() bool { return c <= CareerWeb3Monk }

// ParseCareer decodes a career name as produced by String.
func ParseCareer(s string) (Career, error) {
	for _, c := range Careers {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCareer, s)
}

// Phase identifies one of the independently toggled sale phases.
type Phase uint8

const (
	PhaseClaimSpirits Phase = iota
	PhasePurchaseRare
	PhasePurchaseHero
	PhasePreorder
	PhaseLastDayOfSale
)

// Phases lists every sale phase.
var Phases = []Phase{PhaseClaimSpirits, PhasePurchaseRare, PhasePurchaseHero, PhasePreorder, PhaseLastDayOfSale}

func (p Phase) String() string {
	switch p {
	case PhaseClaimSpirits:
		return "claim_spirits"
	case PhasePurchaseRare:
		return "purchase_rare"
	case PhasePurchaseHero:
		return "purchase_hero"
	case PhasePreorder:
		return "preorder"
	case PhaseLastDayOfSale:
		return "last_day_of_sale"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool { return p <= PhaseLastDayOfSale }

// ParsePhase decodes a phase name as produced by String.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if strings.EqualFold(strings.TrimSpace(s), p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("world: unknown phase %q", s)
}

// PreorderStatus tracks the lottery outcome of a preorder.
type PreorderStatus uint8

const (
	PreorderPending PreorderStatus = iota
	PreorderChosen
	PreorderNotChosen
)

func (s PreorderStatus) String() string {
	switch s {
	case PreorderPending:
		return "pending"
	case PreorderChosen:
		return "chosen"
	case PreorderNotChosen:
		return "not_chosen"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// ParsePreorderStatus decodes a status name as produced by String.
func ParsePreorderStatus(s string) (PreorderStatus, error) {
	for _, st := range []PreorderStatus{PreorderPending, PreorderChosen, PreorderNotChosen} {
		if strings.EqualFold(strings.TrimSpace(s), st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("world: unknown preorder status %q", s)
}

// SaleInfo holds the scarcity counters of one (tier, race) pair.
type SaleInfo struct {
	RaceCount    uint32
	RaceForSale  uint32
	RaceGiveaway uint32
	RaceReserved uint32
}

// OriginOfShell is the record kept for every minted Origin of Shell.
type OriginOfShell struct {
	Tier               Tier
	Race               Race
	Career             Career
	StartIncubation    uint64
	IncubationDuration uint64
}

// Preorder is a reserved-funds request for a Hero Origin of Shell.
type Preorder struct {
	ID       uint32
	Owner    [20]byte
	Race     Race
	Career   Career
	Metadata string
	Status   PreorderStatus
}

// Purpose distinguishes the messages the Overlord signs.
type Purpose uint8

const (
	PurposeRedeemSpirit Purpose = iota
	PurposeBuyHeroOriginOfShell
)

// OverlordMessage is the payload signed by the Overlord to authorise an
// account for a purpose.
type OverlordMessage struct {
	Account [20]byte
	Purpose Purpose
}

// WhitelistClaim binds an account to the metadata of its Hero purchase.
type WhitelistClaim struct {
	Account  [20]byte
	Metadata string
}

// Attribute keys written on Origin of Shell and Shell tokens.
const (
	AttributeRace   = "race"
	AttributeCareer = "career"
	AttributeTier   = "origin_of_shell_type"
)
