package rpc

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shellchain/crypto"
	"shellchain/indexer"
)

const (
	defaultPreorderPage = 500
	maxPreorderPage     = 5000
)

func (s *Server) handleWorld(w http.ResponseWriter, _ *http.Request) int {
	info, err := s.backend.World()
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	return writeJSON(w, http.StatusOK, worldResponseFrom(info))
}

func (s *Server) handleInventory(w http.ResponseWriter, _ *http.Request) int {
	entries, err := s.backend.Inventory()
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	out := make([]InventoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, InventoryEntry{
			Tier:     e.Tier.String(),
			Race:     e.Race.String(),
			Count:    e.RaceCount,
			ForSale:  e.RaceForSale,
			Giveaway: e.RaceGiveaway,
			Reserved: e.RaceReserved,
		})
	}
	return writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePendingPreorders(w http.ResponseWriter, r *http.Request) int {
	q := r.URL.Query()
	var start uint32
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		v, err := parseUint32(raw)
		if err != nil {
			return writeError(w, http.StatusBadRequest, "invalid from")
		}
		start = v
	}
	limit := defaultPreorderPage
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return writeError(w, http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	if limit > maxPreorderPage {
		limit = maxPreorderPage
	}
	page, next, err := s.backend.PendingPreordersFrom(start, limit)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	count, err := s.backend.PendingPreorderCount()
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	out := PreordersResponse{Preorders: preorderResponses(page), Pending: count}
	if len(page) == limit {
		out.Next = strconv.FormatUint(uint64(next), 10)
	}
	return writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePreorder(w http.ResponseWriter, r *http.Request) int {
	id, err := parseUint32(chi.URLParam(r, "id"))
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid preorder id")
	}
	p, ok, err := s.backend.Preorder(id)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return writeError(w, http.StatusNotFound, "preorder not found")
	}
	return writeJSON(w, http.StatusOK, preorderResponseFrom(p))
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) int {
	acct, err := crypto.ParseAccount(chi.URLParam(r, "addr"))
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid address")
	}
	free, reserved, err := s.backend.Balance(acct)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	food, err := s.backend.FoodInfo(acct)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	resp := AccountResponse{
		Address:  crypto.FormatAccount(acct),
		Free:     free.Dec(),
		Reserved: reserved.Dec(),
		FoodEra:  food.Era,
		Fed:      make([]TokenRef, 0, len(food.Fed)),
	}
	for _, key := range food.Fed {
		resp.Fed = append(resp.Fed, TokenRef{Collection: key.Collection, Nft: key.Nft})
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("collection")); raw != "" {
		collection, err := parseUint32(raw)
		if err != nil {
			return writeError(w, http.StatusBadRequest, "invalid collection")
		}
		owned, err := s.backend.Owned(collection, acct)
		if err != nil {
			return writeError(w, http.StatusInternalServerError, err.Error())
		}
		resp.Owned = &owned
	}
	return writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccountPreorders(w http.ResponseWriter, r *http.Request) int {
	acct, err := crypto.ParseAccount(chi.URLParam(r, "addr"))
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid address")
	}
	results, err := s.backend.PreorderResults(acct)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	return writeJSON(w, http.StatusOK, preorderResponses(results))
}

func (s *Server) handleIncubation(w http.ResponseWriter, r *http.Request) int {
	collection, err := parseUint32(chi.URLParam(r, "collection"))
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid collection")
	}
	nft, err := parseUint32(chi.URLParam(r, "nft"))
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid nft")
	}
	status, err := s.backend.Incubation(collection, nft)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	if !status.Exists && status.Origin == nil {
		return writeError(w, http.StatusNotFound, "token not found")
	}
	return writeJSON(w, http.StatusOK, incubationResponseFrom(status))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) int {
	if s.archive == nil {
		return writeError(w, http.StatusServiceUnavailable, "event archive disabled")
	}
	filter, err := parseEventFilter(r)
	if err != nil {
		return writeError(w, http.StatusBadRequest, err.Error())
	}
	records, err := s.archive.Query(r.Context(), filter)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	total, err := s.archive.Count(r.Context(), filter)
	if err != nil {
		return writeError(w, http.StatusInternalServerError, err.Error())
	}
	resp := EventsResponse{Total: total, Events: make([]EventResponse, 0, len(records))}
	for _, rec := range records {
		resp.Events = append(resp.Events, eventResponseFrom(rec))
	}
	return writeJSON(w, http.StatusOK, resp)
}

type paramError string

func (e paramError) Error() string { return string(e) }

func parseEventFilter(r *http.Request) (indexer.Filter, error) {
	q := r.URL.Query()
	f := indexer.Filter{
		Type: strings.TrimSpace(q.Get("type")),
		Call: strings.TrimSpace(q.Get("call")),
	}
	for _, bound := range []struct {
		name string
		dst  *time.Time
	}{{"since", &f.Since}, {"until", &f.Until}} {
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return indexer.Filter{}, paramError("invalid " + bound.name + ": expected RFC3339")
		}
		*bound.dst = parsed
	}
	for _, page := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := strings.TrimSpace(q.Get(page.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return indexer.Filter{}, paramError("invalid " + page.name)
		}
		*page.dst = n
	}
	return f, nil
}

func parseUint32(raw string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
