package web

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/tasklist"
)

// Sessions keeps one task list per signed-in user. Lists are reloaded from
// the gateway on every list render and kept in step with every successful
// mutation in between.
type Sessions struct {
	gateway TaskGateway
	opts    []tasklist.Option
	cache   *ristretto.Cache[string, *entry]
	loads   singleflight.Group

	mu       sync.Mutex
	inflight map[string]struct{}
}

type entry struct {
	state *tasklist.State
	// generation counts local mutations so a load that raced one is not
	// applied over it.
	generation atomic.Uint64
}

func NewSessions(gateway TaskGateway, size int64, opts ...tasklist.Option) (*Sessions, error) {
	if size < 1 {
		size = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *entry]{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Sessions{
		gateway:  gateway,
		opts:     opts,
		cache:    cache,
		inflight: make(map[string]struct{}),
	}, nil
}

func (s *Sessions) Close() {
	s.cache.Close()
}

// State reloads the user's list from the store and returns it. Concurrent
// reloads for the same user share one query.
func (s *Sessions) State(ctx context.Context, user model.User) (*tasklist.State, error) {
	v, err, _ := s.loads.Do(user.ID, func() (any, error) {
		e := s.entry(user)
		generation := e.generation.Load()
		tasks, err := s.gateway.ListTasks(context.WithoutCancel(ctx), user)
		if err != nil {
			return nil, err
		}
		if e.generation.Load() == generation {
			e.state.Load(tasks)
		}
		return e.state, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return v.(*tasklist.State), nil
}

// Update runs fn against the user's list when one is cached. A list that is
// not cached picks the change up from the store on its next load.
func (s *Sessions) Update(user model.User, fn func(*tasklist.State)) {
	if e, ok := s.cache.Get(user.ID); ok {
		e.generation.Add(1)
		fn(e.state)
	}
}

// Forget drops the user's list, for example on sign-out.
func (s *Sessions) Forget(user model.User) {
	s.cache.Del(user.ID)
}

func (s *Sessions) entry(user model.User) *entry {
	if e, ok := s.cache.Get(user.ID); ok {
		return e
	}
	e := &entry{state: tasklist.New(s.opts...)}
	s.cache.Set(user.ID, e, 1)
	s.cache.Wait()
	return e
}

// Begin marks a form submission as in flight. It reports false when the same
// form for the same task is already being processed for this user.
func (s *Sessions) Begin(user model.User, form string, taskID int64) (release func(), ok bool) {
	key := user.ID + "|" + form + "|" + strconv.FormatInt(taskID, 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, false
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, true
}
