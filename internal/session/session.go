// Package session keeps one catalog workspace per signed-in user.
package session

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/diewo77/go-commandes/internal/catalog"
)

// Factory builds an unloaded workspace.
type Factory func() *catalog.Workspace

// Registry maps user ids to their workspace. A workspace is created and
// loaded when the user signs in, dropped when they sign out, and recreated
// lazily for a still-valid session after a restart.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	byUser  map[uint]*catalog.Workspace
	opening singleflight.Group
}

func NewRegistry(f Factory) *Registry {
	return &Registry{factory: f, byUser: map[uint]*catalog.Workspace{}}
}

// Open creates and loads a fresh workspace for uid, replacing any previous one.
func (r *Registry) Open(ctx context.Context, uid uint) (*catalog.Workspace, error) {
	ws := r.factory()
	if err := ws.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.byUser[uid] = ws
	r.mu.Unlock()
	return ws, nil
}

// Get returns the workspace of uid, opening one if needed. Concurrent calls
// for a uid without a workspace share a single load.
func (r *Registry) Get(ctx context.Context, uid uint) (*catalog.Workspace, error) {
	if ws, ok := r.lookup(uid); ok {
		return ws, nil
	}
	v, err, _ := r.opening.Do(strconv.FormatUint(uint64(uid), 10), func() (any, error) {
		if ws, ok := r.lookup(uid); ok {
			return ws, nil
		}
		ws := r.factory()
		if err := ws.Load(ctx); err != nil {
			return nil, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.byUser[uid]; ok {
			return cur, nil
		}
		r.byUser[uid] = ws
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Workspace), nil
}

func (r *Registry) lookup(uid uint) (*catalog.Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.byUser[uid]
	return ws, ok
}

// Close drops the workspace of uid.
func (r *Registry) Close(uid uint) {
	r.mu.Lock()
	delete(r.byUser, uid)
	r.mu.Unlock()
}

// Len is the number of open workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}
