// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package providers

import (
	"context"
	"fmt"
	"sync"
)

// MemoryCatalog is an in-memory CatalogProvider backed by a flat item list.
// It serves the CLI's JSON catalog exports and the test suites. Collections
// and people are keyed by item ID; series lookups scan the item list.
type MemoryCatalog struct {
	mu          sync.RWMutex
	items       []Item
	collections map[string][]string
	people      map[string][]PersonInfo
}

// NewMemoryCatalog creates a catalog over the given items.
func NewMemoryCatalog(items []Item) *MemoryCatalog {
	return &MemoryCatalog{
		items:       items,
		collections: make(map[string][]string),
		people:      make(map[string][]PersonInfo),
	}
}

// SetCollections records the collection names containing an item.
func (c *MemoryCatalog) SetCollections(itemID string, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[itemID] = names
}

// SetPeople records the credited people of an item.
func (c *MemoryCatalog) SetPeople(itemID string, people []PersonInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.people[itemID] = people
}

// Items returns the full candidate list.
func (c *MemoryCatalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// EpisodesOf returns every episode whose SeriesID matches.
func (c *MemoryCatalog) EpisodesOf(_ context.Context, seriesID string) ([]Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var eps []Item
	for _, it := range c.items {
		if it.MediaType == MediaTypeEpisode && it.SeriesID == seriesID {
			eps = append(eps, it)
		}
	}
	return eps, nil
}

// SeriesOf returns the series item with the given ID.
func (c *MemoryCatalog) SeriesOf(_ context.Context, seriesID string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == seriesID && it.MediaType == MediaTypeSeries {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("series %q not found", seriesID)
}

// CollectionsOf returns the collection names containing the item.
func (c *MemoryCatalog) CollectionsOf(_ context.Context, itemID string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collections[itemID], nil
}

// PeopleOf returns the credited people of the item.
func (c *MemoryCatalog) PeopleOf(_ context.Context, itemID string) ([]PersonInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.people[itemID], nil
}

// MemoryUserData is an in-memory UserDataProvider.
type MemoryUserData struct {
	mu     sync.RWMutex
	states map[string]PlayState // key: itemID + "\x00" + userID
}

// NewMemoryUserData creates an empty user-data store.
func NewMemoryUserData() *MemoryUserData {
	return &MemoryUserData{states: make(map[string]PlayState)}
}

// SetPlayState records the playback state for an (item, user) pair.
func (u *MemoryUserData) SetPlayState(itemID, userID string, st PlayState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.states[itemID+"\x00"+userID] = st
}

// PlayState returns the playback state for an (item, user) pair.
// Unknown pairs yield the zero PlayState (never played).
func (u *MemoryUserData) PlayState(_ context.Context, itemID, userID string) (PlayState, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.states[itemID+"\x00"+userID], nil
}

// MemoryIdentity is an IdentityResolver over a fixed user set.
// An empty store resolves any reference to a user with that ID.
type MemoryIdentity struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryIdentity creates an empty identity store.
func NewMemoryIdentity() *MemoryIdentity {
	return &MemoryIdentity{users: make(map[string]User)}
}

// AddUser registers a user resolvable by ID or name.
func (r *MemoryIdentity) AddUser(u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	if u.Name != "" {
		r.users[u.Name] = u
	}
}

// Resolve maps a user reference to a user context.
func (r *MemoryIdentity) Resolve(_ context.Context, userRef string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[userRef]; ok {
		return u, nil
	}
	if len(r.users) == 0 {
		return User{ID: userRef, Name: userRef}, nil
	}
	return User{}, fmt.Errorf("user %q not found", userRef)
}
