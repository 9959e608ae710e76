package ratings

import "sync"

// Store is the session-scoped rating cache, loaded from the server at most
// once per session and then patched in place by rate/unrate actions so that
// re-rendered cards reflect the latest committed state without a re-fetch.
//
// Loading is split in two so reads never wait on a round trip: the network
// fetch happens in the caller's command, and Install puts the result into
// the store from the main update loop. For anonymous sessions the cache is
// fixed to empty.
type Store struct {
	mu       sync.RWMutex
	signedIn bool
	loaded   bool
	scores   map[string]int
}

func NewStore(signedIn bool) *Store {
	return &Store{signedIn: signedIn, scores: map[string]int{}}
}

// Install seeds the cache with a fetched rating map, at most once per
// session. A nil map (failed load) still counts as loaded and degrades to
// empty; ratings are an enhancement, not primary functionality.
func (s *Store) Install(scores map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true
	if !s.signedIn || scores == nil {
		return
	}
	s.scores = scores
}

// Loaded reports whether the one-shot seed already happened.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Get(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[name]
	return score, ok
}

func (s *Store) Set(name string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[name] = score
}

func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scores, name)
}

// All returns a copy of the current rating map.
func (s *Store) All() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.scores))
	for name, score := range s.scores {
		out[name] = score
	}
	return out
}
