package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"shellchain/core/events"
	"shellchain/core/runtime"
	"shellchain/crypto"
	"shellchain/indexer"
	"shellchain/native/incubation"
	"shellchain/native/world"
)

type fakeBackend struct {
	info      runtime.WorldInfo
	inventory []runtime.InventoryEntry
	preorders map[uint32]world.Preorder
	results   map[[20]byte][]world.Preorder
	free      *uint256.Int
	reserved  *uint256.Int
	owned     uint32
	tokens    map[[2]uint32]runtime.IncubationStatus
	food      incubation.FoodInfo
	err       error
}

func (f *fakeBackend) World() (runtime.WorldInfo, error) { return f.info, f.err }

func (f *fakeBackend) Inventory() ([]runtime.InventoryEntry, error) { return f.inventory, f.err }

func (f *fakeBackend) Preorder(id uint32) (world.Preorder, bool, error) {
	p, ok := f.preorders[id]
	return p, ok, f.err
}

func (f *fakeBackend) PendingPreordersFrom(start uint32, limit int) ([]world.Preorder, uint32, error) {
	ids := make([]uint32, 0, len(f.preorders))
	for id, p := range f.preorders {
		if id >= start && p.Status == world.PreorderPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []world.Preorder
	next := start
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		out = append(out, f.preorders[id])
		next = id + 1
	}
	return out, next, f.err
}

func (f *fakeBackend) PendingPreorderCount() (uint32, error) {
	var n uint32
	for _, p := range f.preorders {
		if p.Status == world.PreorderPending {
			n++
		}
	}
	return n, f.err
}

func (f *fakeBackend) PreorderResults(account [20]byte) ([]world.Preorder, error) {
	return f.results[account], f.err
}

func (f *fakeBackend) Balance([20]byte) (*uint256.Int, *uint256.Int, error) {
	return f.free, f.reserved, f.err
}

func (f *fakeBackend) Owned(uint32, [20]byte) (uint32, error) { return f.owned, f.err }

func (f *fakeBackend) Incubation(collection, nft uint32) (runtime.IncubationStatus, error) {
	st, ok := f.tokens[[2]uint32{collection, nft}]
	if !ok {
		return runtime.IncubationStatus{Collection: collection, Nft: nft}, f.err
	}
	return st, f.err
}

func (f *fakeBackend) FoodInfo([20]byte) (incubation.FoodInfo, error) { return f.food, f.err }

type streamEvent string

func (e streamEvent) EventType() string { return string(e) }

var (
	alice = [20]byte{0xA1}
	bob   = [20]byte{0xB0}
)

func newFakeBackend() *fakeBackend {
	overlord := [20]byte{0x01}
	zero := uint64(1000)
	origins := uint32(1)
	return &fakeBackend{
		info: runtime.WorldInfo{
			Overlord:         &overlord,
			ZeroDay:          &zero,
			Era:              4,
			Phases:           map[world.Phase]bool{world.PhaseClaimSpirits: true},
			OriginCollection: &origins,
			PreorderIndex:    2,
		},
		inventory: []runtime.InventoryEntry{
			{Tier: world.TierLegendary, Race: world.RaceAISpectre, SaleInfo: world.SaleInfo{RaceCount: 1, RaceForSale: 0, RaceReserved: 1}},
		},
		preorders: map[uint32]world.Preorder{
			0: {ID: 0, Owner: alice, Race: world.RaceCyborg, Career: world.CareerWeb3Monk, Status: world.PreorderPending},
		},
		results: map[[20]byte][]world.Preorder{
			bob: {{ID: 1, Owner: bob, Race: world.RaceXGene, Status: world.PreorderChosen}},
		},
		free:     uint256.NewInt(900),
		reserved: uint256.NewInt(100),
		owned:    3,
		tokens: map[[2]uint32]runtime.IncubationStatus{
			{1, 7}: {
				Collection: 1, Nft: 7, Owner: alice, Exists: true,
				Origin:    &world.OriginOfShell{Tier: world.TierHero, Race: world.RacePandroid, Career: world.CareerRoboWarrior, StartIncubation: 10, IncubationDuration: 60},
				HatchTime: 70, FedThisEra: 2,
			},
		},
		food: incubation.FoodInfo{Era: 4, Fed: []incubation.TokenKey{{Collection: 1, Nft: 7}}},
	}
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNewServerRequiresBackend(t *testing.T) {
	_, err := NewServer(Config{})
	require.Error(t, err)
}

func TestWorldAndInventory(t *testing.T) {
	ts := newTestServer(t, Config{Backend: newFakeBackend()})

	var info WorldResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/world", &info))
	require.Equal(t, uint64(4), info.Era)
	require.Equal(t, crypto.FormatAccount([20]byte{0x01}), info.Overlord)
	require.True(t, info.Phases["claim_spirits"])
	require.Nil(t, info.SpiritCollection)
	require.Equal(t, uint32(1), *info.OriginCollection)

	var inv []InventoryEntry
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/inventory", &inv))
	require.Equal(t, []InventoryEntry{{Tier: "legendary", Race: "ai_spectre", Count: 1, Reserved: 1}}, inv)
}

func TestPreorderRoutes(t *testing.T) {
	ts := newTestServer(t, Config{Backend: newFakeBackend()})

	var p PreorderResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/preorders/0", &p))
	require.Equal(t, "pending", p.Status)
	require.Equal(t, crypto.FormatAccount(alice), p.Owner)
	require.Equal(t, "web3_monk", p.Career)

	var pending PreordersResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/preorders", &pending))
	require.Len(t, pending.Preorders, 1)
	require.Equal(t, uint32(1), pending.Pending)
	require.Empty(t, pending.Next)

	var e errorResponse
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/preorders/9", &e))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/preorders/abc", &e))

	var results []PreorderResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/accounts/"+crypto.FormatAccount(bob)+"/preorders", &results))
	require.Len(t, results, 1)
	require.Equal(t, "chosen", results[0].Status)

	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/accounts/nope/preorders", &e))
}

func TestPendingPreordersPaging(t *testing.T) {
	backend := newFakeBackend()
	for id := uint32(1); id <= 4; id++ {
		backend.preorders[id] = world.Preorder{ID: id, Owner: alice, Race: world.RaceXGene, Career: world.CareerWeb3Monk, Status: world.PreorderPending}
	}
	ts := newTestServer(t, Config{Backend: backend})

	var page PreordersResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/preorders?limit=2", &page))
	require.Len(t, page.Preorders, 2)
	require.Equal(t, uint32(5), page.Pending)
	require.Equal(t, "2", page.Next)

	page = PreordersResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/preorders?from=4&limit=2", &page))
	require.Len(t, page.Preorders, 1)
	require.Equal(t, uint32(4), page.Preorders[0].ID)
	require.Empty(t, page.Next)

	var e errorResponse
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/preorders?from=x", &e))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/preorders?limit=0", &e))
}

func TestAccountRoute(t *testing.T) {
	ts := newTestServer(t, Config{Backend: newFakeBackend()})

	var acct AccountResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/accounts/"+crypto.FormatAccount(alice)+"?collection=1", &acct))
	require.Equal(t, "900", acct.Free)
	require.Equal(t, "100", acct.Reserved)
	require.NotNil(t, acct.Owned)
	require.Equal(t, uint32(3), *acct.Owned)
	require.Equal(t, []TokenRef{{Collection: 1, Nft: 7}}, acct.Fed)

	var plain AccountResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/accounts/"+crypto.FormatAccount(alice), &plain))
	require.Nil(t, plain.Owned)
}

func TestIncubationRoute(t *testing.T) {
	ts := newTestServer(t, Config{Backend: newFakeBackend()})

	var st IncubationResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/incubation/1/7", &st))
	require.True(t, st.Exists)
	require.Equal(t, uint64(70), st.HatchTime)
	require.Equal(t, uint32(2), st.FedThisEra)
	require.Equal(t, "pandroid", st.Origin.Race)

	var e errorResponse
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/incubation/1/8", &e))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/incubation/x/8", &e))
}

func TestBackendFailureIsInternalError(t *testing.T) {
	backend := newFakeBackend()
	backend.err = errors.New("disk gone")
	ts := newTestServer(t, Config{Backend: backend})

	var e errorResponse
	require.Equal(t, http.StatusInternalServerError, getJSON(t, ts.URL+"/v1/world", &e))
	require.Equal(t, "disk gone", e.Error)
}

func TestEventsRoute(t *testing.T) {
	var e errorResponse
	disabled := newTestServer(t, Config{Backend: newFakeBackend()})
	require.Equal(t, http.StatusServiceUnavailable, getJSON(t, disabled.URL+"/v1/events", &e))

	store, err := indexer.Open(indexer.DriverSQLite, "file:rpc_events?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Unix()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(events.Record{
			Sequence:   uint64(i + 1),
			Call:       "claim_spirit",
			Type:       "world.spirit.claimed",
			Attributes: map[string]string{"nft": fmt.Sprint(i)},
			Timestamp:  base + int64(i),
		}))
	}
	ts := newTestServer(t, Config{Backend: newFakeBackend(), Archive: store})

	var resp EventsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/events?type=world.spirit.claimed&limit=2", &resp))
	require.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Events, 2)
	require.Equal(t, "0", resp.Events[0].Attributes["nft"])

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/events?since=2024-05-01T00:00:02Z", &resp))
	require.Len(t, resp.Events, 1)

	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/events?since=yesterday", &e))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/events?limit=-1", &e))
}

func TestEventStream(t *testing.T) {
	hub := events.NewHub()
	hub.Publish("set_overlord", streamEvent("world.overlord.changed"))
	ts := newTestServer(t, Config{Backend: newFakeBackend(), Stream: hub})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/events/stream?type=world.era"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish("on_finalize", streamEvent("world.era.new"))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var rec events.Record
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, "world.era.new", rec.Type)
	require.Equal(t, uint64(2), rec.Sequence)
	require.Equal(t, "on_finalize", rec.Call)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{Backend: newFakeBackend(), RateLimit: RateLimit{RequestsPerMinute: 1, Burst: 2}})

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/world", nil))
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/world", nil))
	var e errorResponse
	require.Equal(t, http.StatusTooManyRequests, getJSON(t, ts.URL+"/v1/world", &e))
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	require.Equal(t, "10.0.0.1", clientID(req))
	req.Header.Set("X-Forwarded-For", "192.168.1.9, 10.0.0.2")
	require.Equal(t, "192.168.1.9", clientID(req))
	req.Header.Set("X-Real-IP", "172.16.0.3")
	require.Equal(t, "172.16.0.3", clientID(req))
}
