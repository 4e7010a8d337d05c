package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"monopoly/protocol"
)

// HTTP forwards decision requests to an external agent service: POST
// {base}/decide with a DecisionRequest body, expecting an Action back. The
// engine's per-attempt deadline rides on the request context, so a slow
// service surfaces as a timeout and consumes the attempt.
type HTTP struct {
	name   string
	base   string
	client *http.Client
}

func NewHTTP(name, baseURL string) *HTTP {
	return &HTTP{
		name:   name,
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{},
	}
}

func (a *HTTP) Name() string { return a.name }

func (a *HTTP) Decide(ctx context.Context, req protocol.DecisionRequest) (protocol.Action, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return protocol.Action{}, fmt.Errorf("encode decision request: %w", err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/decide", bytes.NewReader(body))
	if err != nil {
		return protocol.Action{}, fmt.Errorf("build decision request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(hreq)
	if err != nil {
		return protocol.Action{}, fmt.Errorf("request agent %s: %w", a.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return protocol.Action{}, fmt.Errorf("agent %s returned status %d: %s", a.name, resp.StatusCode, out)
	}
	var act protocol.Action
	if err := json.NewDecoder(resp.Body).Decode(&act); err != nil {
		return protocol.Action{}, fmt.Errorf("decode action from %s: %w", a.name, err)
	}
	return act, nil
}
