// Package peer maintains the set of known peer nodes. A peer is identified
// by the base URL of its private API.
package peer

import (
	"sort"
	"strings"
	"sync"
)

// Peer represents information about a Node in the network.
type Peer struct {
	URL string `json:"url" validate:"required,url"`
}

// New constructs a peer for the url. Trailing slashes are dropped so the
// same node is never known twice.
func New(url string) Peer {
	return Peer{
		URL: strings.TrimRight(url, "/"),
	}
}

// Match validates if the specified url matches this node.
func (p Peer) Match(url string) bool {
	return p.URL == strings.TrimRight(url, "/")
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[string]Peer
}

// NewPeerSet constructs a new set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[string]Peer),
	}
}

// Add adds a new node to the set. It reports false when the node is
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	peer = New(peer.URL)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer.URL]; exists {
		return false
	}

	ps.set[peer.URL] = peer
	return true
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, New(peer.URL).URL)
}

// Contains reports whether the node is in the set.
func (ps *PeerSet) Contains(peer Peer) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, exists := ps.set[New(peer.URL).URL]
	return exists
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns the known peers ordered by url, leaving out the node with
// the specified url.
func (ps *PeerSet) Copy(url string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for _, peer := range ps.set {
		if !peer.Match(url) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].URL < peers[j].URL })

	return peers
}
