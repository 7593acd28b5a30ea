package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shellchain/crypto"
	"shellchain/native/lottery"
	"shellchain/native/world"
	"shellchain/rpc"
)

// decisionOutput is the submission format for apply_preorder_results.
type decisionOutput struct {
	ID     uint32 `json:"id"`
	Status string `json:"status"`
}

func runDrawLottery(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("draw-lottery", flag.ContinueOnError)
	planPath := fs.String("plan", "lottery.yaml", "Path to the YAML draw plan")
	endpoint := fs.String("rpc", defaultRPC, "Query API base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "Query timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := lottery.LoadPlan(*planPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	pending, err := fetchPending(ctx, http.DefaultClient, *endpoint)
	if err != nil {
		return err
	}
	decisions, err := lottery.Draw(plan, pending)
	if err != nil {
		return err
	}
	return writeDecisions(stdout, decisions)
}

func fetchPending(ctx context.Context, client *http.Client, endpoint string) ([]world.Preorder, error) {
	base := strings.TrimRight(endpoint, "/") + "/v1/preorders"
	var payload []rpc.PreorderResponse
	cursor := ""
	for {
		url := base
		if cursor != "" {
			url += "?from=" + cursor
		}
		page, err := fetchPendingPage(ctx, client, url)
		if err != nil {
			return nil, err
		}
		payload = append(payload, page.Preorders...)
		if page.Next == "" {
			break
		}
		cursor = page.Next
	}
	return decodePreorders(payload)
}

func fetchPendingPage(ctx context.Context, client *http.Client, url string) (rpc.PreordersResponse, error) {
	var page rpc.PreordersResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return page, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return page, fmt.Errorf("fetch pending preorders: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return page, fmt.Errorf("fetch pending preorders: unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("decode pending preorders: %w", err)
	}
	return page, nil
}

func decodePreorders(payload []rpc.PreorderResponse) ([]world.Preorder, error) {
	out := make([]world.Preorder, 0, len(payload))
	for _, p := range payload {
		owner, err := crypto.ParseAccount(p.Owner)
		if err != nil {
			return nil, fmt.Errorf("preorder %d: %w", p.ID, err)
		}
		race, err := world.ParseRace(p.Race)
		if err != nil {
			return nil, fmt.Errorf("preorder %d: %w", p.ID, err)
		}
		career, err := world.ParseCareer(p.Career)
		if err != nil {
			return nil, fmt.Errorf("preorder %d: %w", p.ID, err)
		}
		status, err := world.ParsePreorderStatus(p.Status)
		if err != nil {
			return nil, fmt.Errorf("preorder %d: %w", p.ID, err)
		}
		out = append(out, world.Preorder{
			ID:       p.ID,
			Owner:    owner,
			Race:     race,
			Career:   career,
			Metadata: p.Metadata,
			Status:   status,
		})
	}
	return out, nil
}

func writeDecisions(w io.Writer, decisions []lottery.Decision) error {
	out := make([]decisionOutput, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, decisionOutput{ID: d.ID, Status: d.Status.String()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
