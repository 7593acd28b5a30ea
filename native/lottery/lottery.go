// Package lottery draws the preorder results the Overlord submits. The draw is
// a pure function of the plan and the pending set, so anyone holding the seed
// can reproduce it.
package lottery

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"shellchain/native/world"
)

var (
	ErrEmptySeed   = errors.New("lottery: seed required")
	ErrUnknownRace = errors.New("lottery: unknown race in quotas")
	ErrDuplicateID = errors.New("lottery: duplicate preorder id")
	ErrNotPending  = errors.New("lottery: preorder already resolved")
)

// Plan fixes the seed and the number of winners per race.
type Plan struct {
	Seed   []byte
	Quotas map[world.Race]uint32
}

// planFile mirrors the YAML representation of a plan.
type planFile struct {
	Seed   string            `yaml:"seed"`
	Quotas map[string]uint32 `yaml:"quotas"`
}

// Decision is the drawn result of one preorder.
type Decision struct {
	ID     uint32
	Status world.PreorderStatus
}

// LoadPlan reads a plan from the YAML file on disk.
func LoadPlan(path string) (Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return Plan{}, fmt.Errorf("open plan: %w", err)
	}
	defer file.Close()
	return DecodePlan(file)
}

// DecodePlan parses a YAML plan. Races missing from quotas get no winners.
func DecodePlan(r io.Reader) (Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var raw planFile
	if err := dec.Decode(&raw); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	seed := strings.TrimSpace(raw.Seed)
	if seed == "" {
		return Plan{}, ErrEmptySeed
	}
	plan := Plan{Seed: []byte(seed), Quotas: make(map[world.Race]uint32, len(raw.Quotas))}
	for name, quota := range raw.Quotas {
		race, err := world.ParseRace(name)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %s", ErrUnknownRace, name)
		}
		plan.Quotas[race] = quota
	}
	return plan, nil
}

// Ticket is the draw position of id under seed. Lower tickets win.
func Ticket(seed []byte, id uint32) [32]byte {
	buf := make([]byte, 0, len(seed)+4)
	buf = append(buf, seed...)
	buf = binary.BigEndian.AppendUint32(buf, id)
	return blake3.Sum256(buf)
}

// Draw ranks the pending preorders of each race by ticket and marks the first
// quota entries Chosen, the rest NotChosen. The output is ordered by id.
func Draw(plan Plan, pending []world.Preorder) ([]Decision, error) {
	if len(plan.Seed) == 0 {
		return nil, ErrEmptySeed
	}
	type entry struct {
		id     uint32
		ticket [32]byte
	}
	byRace := make(map[world.Race][]entry)
	seen := make(map[uint32]struct{}, len(pending))
	for _, p := range pending {
		if p.Status != world.PreorderPending {
			return nil, fmt.Errorf("%w: %d", ErrNotPending, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
		byRace[p.Race] = append(byRace[p.Race], entry{id: p.ID, ticket: Ticket(plan.Seed, p.ID)})
	}

	decisions := make([]Decision, 0, len(pending))
	for race, entries := range byRace {
		sort.Slice(entries, func(i, j int) bool {
			if c := bytes.Compare(entries[i].ticket[:], entries[j].ticket[:]); c != 0 {
				return c < 0
			}
			return entries[i].id < entries[j].id
		})
		quota := int(plan.Quotas[race])
		for i, e := range entries {
			status := world.PreorderNotChosen
			if i < quota {
				status = world.PreorderChosen
			}
			decisions = append(decisions, Decision{ID: e.id, Status: status})
		}
	}
	sort.Slice(decisions, func(i, j int) bool { return decisions[i].ID < decisions[j].ID })
	return decisions, nil
}

// Winners counts the chosen decisions.
func Winners(decisions []Decision) int {
	n := 0
	for _, d := range decisions {
		if d.Status == world.PreorderChosen {
			n++
		}
	}
	return n
}
