package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// EventKind distinguishes a member joining from one leaving.
type EventKind string

const (
	EventJoin  EventKind = "join"
	EventLeave EventKind = "leave"
)

// GossipEvent is one membership change, sequenced by the log that recorded
// it so peers can ask "what happened after seq N".
type GossipEvent struct {
	Seq       uint64    `json:"seq,omitempty"`
	Kind      EventKind `json:"kind"`
	Member    Member    `json:"member"`
	Timestamp time.Time `json:"timestamp"`
}

// GossipLog is the sequenced membership event log one node maintains and
// exchanges with its peers on a timer.
type GossipLog struct {
	mu     sync.Mutex
	events []GossipEvent
	seq    uint64
}

// NewGossipLog returns an empty log.
func NewGossipLog() *GossipLog {
	return &GossipLog{}
}

// Record appends a join/leave event, assigning it the next sequence number.
func (g *GossipLog) Record(kind EventKind, m Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.events = append(g.events, GossipEvent{Seq: g.seq, Kind: kind, Member: m, Timestamp: time.Now()})
}

// Since returns every event recorded after seq, plus the log's current
// sequence number.
func (g *GossipLog) Since(seq uint64) ([]GossipEvent, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []GossipEvent
	for _, e := range g.events {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out, g.seq
}

// Apply folds events into reg, registering joins and dropping leaves.
func Apply(reg *Registry, events []GossipEvent) {
	for _, e := range events {
		switch e.Kind {
		case EventJoin:
			reg.Register(e.Member)
		case EventLeave:
			reg.Remove(e.Member.ID)
		}
	}
}

// syncRequest is what a gossip sweep sends to a peer: everything this node
// has seen since the peer's last acknowledged sequence.
type syncRequest struct {
	Events    []GossipEvent `json:"events"`
	LatestSeq uint64        `json:"latest_seq"`
}

// syncResponse carries the peer's own events back.
type syncResponse struct {
	Events    []GossipEvent `json:"events"`
	LatestSeq uint64        `json:"latest_seq"`
}

// Peer is a remote node this node periodically gossips with.
type Peer struct {
	Addr    string
	LastSeq uint64
}

// SyncErrorHook, if non-nil, is called with a peer's address each time a
// gossip sweep fails to reach it. cmd/lantern wires it to a telemetry
// counter; GossipLog itself takes no telemetry dependency.
var SyncErrorHook func(peerAddr string)

// StartSweep cycles through peers on interval, exchanging events with one
// peer per tick and folding the reply into reg. It returns immediately;
// the sweep runs in its own goroutine, which exits once ctx is cancelled.
func (g *GossipLog) StartSweep(ctx context.Context, reg *Registry, peers []*Peer, interval time.Duration) {
	if len(peers) == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		idx := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				peer := peers[idx%len(peers)]
				g.syncWithPeer(ctx, reg, peer)
				idx++
			}
		}
	}()
}

func (g *GossipLog) syncWithPeer(ctx context.Context, reg *Registry, peer *Peer) {
	events, latestSeq := g.Since(peer.LastSeq)

	var resp syncResponse
	if err := postJSON(ctx, peer.Addr+"/cluster/gossip/sync", syncRequest{Events: events, LatestSeq: latestSeq}, &resp); err != nil {
		log.Printf("cluster: gossip sync with %s failed: %v", peer.Addr, err)
		if SyncErrorHook != nil {
			SyncErrorHook(peer.Addr)
		}
		return
	}

	Apply(reg, resp.Events)
	peer.LastSeq = latestSeq
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func postJSON(ctx context.Context, url string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: status %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
