package chatserver

import (
	"sort"
	"strings"
	"sync"
)

// Channel is a named, never-destroyed broadcast group. Membership only
// grows: there is no LEAVE operation.
type Channel struct {
	Name string

	mu      sync.Mutex
	members []*User        // insertion order, for deterministic broadcast fan-out
	index   map[*User]bool // membership set, guards against duplicate joins
}

// addMember adds u to the channel, returning true iff u was not already a
// member.
func (c *Channel) addMember(u *User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index[u] {
		return false
	}
	c.index[u] = true
	c.members = append(c.members, u)
	return true
}

// isMember reports whether u currently belongs to the channel.
func (c *Channel) isMember(u *User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index[u]
}

// broadcast pushes "RECV <sayer> <channel> <words...>" onto the outbound
// queue of every current member that has a bound session, in insertion
// order, including the sayer itself. Offline members are skipped silently;
// the line is never buffered for later delivery.
func (c *Channel) broadcast(sayer *User, words []string) {
	line := "RECV " + sayer.Name + " " + c.Name + " " + strings.Join(words, " ")

	c.mu.Lock()
	members := make([]*User, len(c.members))
	copy(members, c.members)
	c.mu.Unlock()

	for _, m := range members {
		if s := m.boundSession(); s != nil {
			s.enqueueReply(line)
		}
	}
}

// ChannelRegistry is the process-wide set of named channels.
type ChannelRegistry struct {
	mu       sync.Mutex
	channels map[string]*Channel
}

// NewChannelRegistry returns an empty channel registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]*Channel)}
}

// Create registers a new channel with the given name, returning true iff
// the name was not already taken.
func (r *ChannelRegistry) Create(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[name]; ok {
		return false
	}
	r.channels[name] = &Channel{Name: name, index: make(map[*User]bool)}
	return true
}

// Find returns the channel with the given name, or nil.
func (r *ChannelRegistry) Find(name string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channels[name]
}

// ListNames returns every channel name sorted in ascending code-point
// order.
func (r *ChannelRegistry) ListNames() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	r.mu.Unlock()
	sort.Strings(names)
	return names
}
