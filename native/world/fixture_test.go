package world

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"shellchain/core/events"
	"shellchain/core/state"
	"shellchain/core/types"
	"shellchain/crypto"
	"shellchain/native/bank"
	"shellchain/native/nft"
	"shellchain/storage"
)

type recorder struct {
	got []*types.Event
}

func (r *recorder) Emit(evt events.Event) { r.got = append(r.got, events.Payload(evt)) }

func (r *recorder) types() []string {
	out := make([]string, 0, len(r.got))
	for _, evt := range r.got {
		out = append(out, evt.Type)
	}
	return out
}

func (r *recorder) last() *types.Event {
	if len(r.got) == 0 {
		return nil
	}
	return r.got[len(r.got)-1]
}

func (r *recorder) reset() { r.got = nil }

type fixture struct {
	t           *testing.T
	mgr         *state.Manager
	engine      *Engine
	registry    *nft.Registry
	ledger      *bank.Ledger
	events      *recorder
	overlordKey *crypto.PrivateKey
	overlord    [20]byte
	spirits     uint32
	origins     uint32
	now         int64
}

func testParams() Params {
	return Params{
		SecondsPerEra:           5,
		MinBalanceToClaimSpirit: uint256.NewInt(10),
		LegendaryPrice:          uint256.NewInt(1000),
		MagicPrice:              uint256.NewInt(500),
		HeroPrice:               uint256.NewInt(100),
		MaxMetadataLen:          64,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)

	f := &fixture{
		t:           t,
		mgr:         state.NewManager(storage.NewMemDB()),
		events:      &recorder{},
		overlordKey: key,
		overlord:    key.PubKey().Address().Account(),
		now:         1_700_000_000,
	}
	f.registry = nft.NewRegistry(f.mgr)
	f.ledger = bank.NewLedger(f.mgr, uint256.NewInt(1))
	f.engine = NewEngine(testParams())
	f.engine.SetState(f.mgr)
	f.engine.SetRegistry(f.registry)
	f.engine.SetLedger(f.ledger)
	f.engine.SetSigner(crypto.Verifier{})
	f.engine.SetEmitter(f.events)
	f.engine.SetNowFunc(func() int64 { return f.now })

	require.NoError(t, f.engine.InitGenesis(Genesis{Overlord: &f.overlord}))
	f.spirits, err = f.registry.CreateCollection(f.overlord, 0, "SPIRIT", "spirits")
	require.NoError(t, err)
	f.origins, err = f.registry.CreateCollection(f.overlord, 0, "OOS", "origin of shells")
	require.NoError(t, err)
	require.NoError(t, f.engine.SetSpiritCollectionID(f.admin(), f.spirits))
	require.NoError(t, f.engine.SetOriginOfShellCollectionID(f.admin(), f.origins))
	f.events.reset()
	return f
}

func (f *fixture) admin() types.Origin { return types.SignedOrigin(f.overlord) }

func (f *fixture) open(phases ...Phase) {
	f.t.Helper()
	for _, p := range phases {
		require.NoError(f.t, f.engine.SetPhase(f.admin(), p, true))
	}
}

func (f *fixture) close(phases ...Phase) {
	f.t.Helper()
	for _, p := range phases {
		require.NoError(f.t, f.engine.SetPhase(f.admin(), p, false))
	}
}

func (f *fixture) fund(account [20]byte, amount uint64) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.Credit(account, uint256.NewInt(amount)))
}

func (f *fixture) free(account [20]byte) uint64 {
	f.t.Helper()
	bal, err := f.ledger.FreeBalance(account)
	require.NoError(f.t, err)
	return bal.Uint64()
}

func (f *fixture) reserved(account [20]byte) uint64 {
	f.t.Helper()
	bal, err := f.ledger.ReservedBalance(account)
	require.NoError(f.t, err)
	return bal.Uint64()
}

// withSpirit funds account and claims its spirit during a temporarily opened
// claim phase.
func (f *fixture) withSpirit(account [20]byte, funds uint64) {
	f.t.Helper()
	f.fund(account, funds)
	open, err := f.engine.PhaseOpen(PhaseClaimSpirits)
	require.NoError(f.t, err)
	if !open {
		f.open(PhaseClaimSpirits)
		defer f.close(PhaseClaimSpirits)
	}
	require.NoError(f.t, f.engine.ClaimSpirit(types.SignedOrigin(account), ""))
}

func (f *fixture) inventory(tier Tier, race Race) SaleInfo {
	f.t.Helper()
	info, ok, err := f.engine.Inventory(tier, race)
	require.NoError(f.t, err)
	require.True(f.t, ok)
	return info
}

func (f *fixture) sign(msg []byte) []byte {
	f.t.Helper()
	sig, err := crypto.Sign(f.overlordKey, msg)
	require.NoError(f.t, err)
	return sig
}

func account(b byte) [20]byte { return [20]byte{b} }
