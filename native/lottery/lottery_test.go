package lottery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"shellchain/native/world"
)

func pendingSet() []world.Preorder {
	var out []world.Preorder
	for id := uint32(0); id < 12; id++ {
		race := world.RaceCyborg
		if id%3 == 0 {
			race = world.RaceXGene
		}
		out = append(out, world.Preorder{ID: id, Race: race, Status: world.PreorderPending})
	}
	return out
}

func TestDecodePlan(t *testing.T) {
	plan, err := DecodePlan(strings.NewReader("seed: block-1024\nquotas:\n  cyborg: 3\n  XGene: 1\n"))
	require.NoError(t, err)
	require.Equal(t, []byte("block-1024"), plan.Seed)
	require.Equal(t, map[world.Race]uint32{world.RaceCyborg: 3, world.RaceXGene: 1}, plan.Quotas)

	_, err = DecodePlan(strings.NewReader("quotas:\n  cyborg: 3\n"))
	require.ErrorIs(t, err, ErrEmptySeed)

	_, err = DecodePlan(strings.NewReader("seed: x\nquotas:\n  elf: 3\n"))
	require.ErrorIs(t, err, ErrUnknownRace)

	_, err = DecodePlan(strings.NewReader("seed: x\nwinners: 3\n"))
	require.Error(t, err)
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: s\nquotas:\n  pandroid: 2\n"), 0o644))
	plan, err := LoadPlan(path)
	require.NoError(t, err)
	require.Equal(t, uint32(2), plan.Quotas[world.RacePandroid])

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDrawHonoursQuotas(t *testing.T) {
	plan := Plan{Seed: []byte("seed"), Quotas: map[world.Race]uint32{world.RaceCyborg: 3, world.RaceXGene: 10}}
	decisions, err := Draw(plan, pendingSet())
	require.NoError(t, err)
	require.Len(t, decisions, 12)

	chosen := map[world.Race]int{}
	for i, d := range decisions {
		require.Equal(t, uint32(i), d.ID)
		if d.Status == world.PreorderChosen {
			race := world.RaceCyborg
			if d.ID%3 == 0 {
				race = world.RaceXGene
			}
			chosen[race]++
		}
	}
	require.Equal(t, 3, chosen[world.RaceCyborg])
	require.Equal(t, 4, chosen[world.RaceXGene])
	require.Equal(t, 7, Winners(decisions))
}

func TestDrawIsDeterministic(t *testing.T) {
	plan := Plan{Seed: []byte("seed"), Quotas: map[world.Race]uint32{world.RaceCyborg: 4}}
	first, err := Draw(plan, pendingSet())
	require.NoError(t, err)

	reversed := pendingSet()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	second, err := Draw(plan, reversed)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NotEqual(t, Ticket([]byte("seed"), 1), Ticket([]byte("other"), 1))
}

func TestDrawRejectsInvalidInput(t *testing.T) {
	plan := Plan{Seed: []byte("seed")}

	_, err := Draw(Plan{}, pendingSet())
	require.ErrorIs(t, err, ErrEmptySeed)

	resolved := pendingSet()
	resolved[2].Status = world.PreorderChosen
	_, err = Draw(plan, resolved)
	require.ErrorIs(t, err, ErrNotPending)

	dup := append(pendingSet(), world.Preorder{ID: 0, Status: world.PreorderPending})
	_, err = Draw(plan, dup)
	require.ErrorIs(t, err, ErrDuplicateID)

	decisions, err := Draw(plan, nil)
	require.NoError(t, err)
	require.Empty(t, decisions)
}
