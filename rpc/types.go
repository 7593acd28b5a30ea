package rpc

import (
	"encoding/json"
	"net/http"
	"time"

	"shellchain/core/runtime"
	"shellchain/crypto"
	"shellchain/indexer"
	"shellchain/native/world"
)

type errorResponse struct {
	Error string `json:"error"`
}

type WorldResponse struct {
	Overlord          string          `json:"overlord,omitempty"`
	ZeroDay           *uint64         `json:"zeroDay,omitempty"`
	Era               uint64          `json:"era"`
	Phases            map[string]bool `json:"phases"`
	SpiritCollection  *uint32         `json:"spiritCollection,omitempty"`
	OriginCollection  *uint32         `json:"originOfShellCollection,omitempty"`
	ShellCollection   *uint32         `json:"shellCollection,omitempty"`
	PreorderIndex     uint32          `json:"preorderIndex"`
	IncubationEnabled bool            `json:"incubationEnabled"`
	OfficialHatchTime uint64          `json:"officialHatchTime"`
}

type InventoryEntry struct {
	Tier     string `json:"tier"`
	Race     string `json:"race"`
	Count    uint32 `json:"raceCount"`
	ForSale  uint32 `json:"raceForSale"`
	Giveaway uint32 `json:"raceGiveaway"`
	Reserved uint32 `json:"raceReserved"`
}

type PreorderResponse struct {
	ID       uint32 `json:"id"`
	Owner    string `json:"owner"`
	Race     string `json:"race"`
	Career   string `json:"career"`
	Metadata string `json:"metadata"`
	Status   string `json:"status"`
}

// PreordersResponse is one page of pending preorders. Next is the cursor to
// pass as from for the following page and is empty on the last page.
type PreordersResponse struct {
	Preorders []PreorderResponse `json:"preorders"`
	Pending   uint32             `json:"pending"`
	Next      string             `json:"next,omitempty"`
}

type TokenRef struct {
	Collection uint32 `json:"collection"`
	Nft        uint32 `json:"nft"`
}

type AccountResponse struct {
	Address  string     `json:"address"`
	Free     string     `json:"free"`
	Reserved string     `json:"reserved"`
	Owned    *uint32    `json:"owned,omitempty"`
	FoodEra  uint64     `json:"foodEra"`
	Fed      []TokenRef `json:"fed"`
}

type OriginResponse struct {
	Tier               string `json:"tier"`
	Race               string `json:"race"`
	Career             string `json:"career"`
	StartIncubation    uint64 `json:"startIncubation"`
	IncubationDuration uint64 `json:"incubationDuration"`
}

type IncubationResponse struct {
	Collection uint32          `json:"collection"`
	Nft        uint32          `json:"nft"`
	Exists     bool            `json:"exists"`
	Owner      string          `json:"owner,omitempty"`
	Origin     *OriginResponse `json:"origin,omitempty"`
	HatchTime  uint64          `json:"hatchTime"`
	CanHatch   bool            `json:"canHatch"`
	FedThisEra uint32          `json:"fedThisEra"`
}

type EventResponse struct {
	ID         string            `json:"id"`
	Sequence   uint64            `json:"sequence"`
	Call       string            `json:"call,omitempty"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	EmittedAt  time.Time         `json:"emittedAt"`
}

type EventsResponse struct {
	Total  int64           `json:"total"`
	Events []EventResponse `json:"events"`
}

func worldResponseFrom(info runtime.WorldInfo) WorldResponse {
	resp := WorldResponse{
		ZeroDay:           info.ZeroDay,
		Era:               info.Era,
		Phases:            make(map[string]bool, len(info.Phases)),
		SpiritCollection:  info.SpiritCollection,
		OriginCollection:  info.OriginCollection,
		ShellCollection:   info.ShellCollection,
		PreorderIndex:     info.PreorderIndex,
		IncubationEnabled: info.IncubationEnabled,
		OfficialHatchTime: info.OfficialHatchTime,
	}
	if info.Overlord != nil {
		resp.Overlord = crypto.FormatAccount(*info.Overlord)
	}
	for phase, open := range info.Phases {
		resp.Phases[phase.String()] = open
	}
	return resp
}

func preorderResponseFrom(p world.Preorder) PreorderResponse {
	return PreorderResponse{
		ID:       p.ID,
		Owner:    crypto.FormatAccount(p.Owner),
		Race:     p.Race.String(),
		Career:   p.Career.String(),
		Metadata: p.Metadata,
		Status:   p.Status.String(),
	}
}

func preorderResponses(list []world.Preorder) []PreorderResponse {
	out := make([]PreorderResponse, 0, len(list))
	for _, p := range list {
		out = append(out, preorderResponseFrom(p))
	}
	return out
}

func incubationResponseFrom(st runtime.IncubationStatus) IncubationResponse {
	resp := IncubationResponse{
		Collection: st.Collection,
		Nft:        st.Nft,
		Exists:     st.Exists,
		HatchTime:  st.HatchTime,
		CanHatch:   st.CanHatch,
		FedThisEra: st.FedThisEra,
	}
	if st.Exists {
		resp.Owner = crypto.FormatAccount(st.Owner)
	}
	if st.Origin != nil {
		resp.Origin = &OriginResponse{
			Tier:               st.Origin.Tier.String(),
			Race:               st.Origin.Race.String(),
			Career:             st.Origin.Career.String(),
			StartIncubation:    st.Origin.StartIncubation,
			IncubationDuration: st.Origin.IncubationDuration,
		}
	}
	return resp
}

func eventResponseFrom(rec indexer.EventRecord) EventResponse {
	return EventResponse{
		ID:         rec.ID.String(),
		Sequence:   rec.Sequence,
		Call:       rec.Call,
		Type:       rec.Type,
		Attributes: rec.Attributes,
		EmittedAt:  rec.EmittedAt.UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
	return status
}

func writeError(w http.ResponseWriter, status int, message string) int {
	return writeJSON(w, status, errorResponse{Error: message})
}
