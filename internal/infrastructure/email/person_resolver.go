package email

import (
	"context"
	"strings"
	"sync"

	"elog-backend/internal/shared"
)

// PersonResolver maps the user ids attached to an entry to directory
// people. Resolution is lenient: unknown ids are skipped, never an error,
// so one stale id cannot block the notification of the others.
type PersonResolver interface {
	Resolve(ctx context.Context, userIDs []string) ([]shared.Person, error)
}

// staticPersonResolver serves people from a seeded map. Ids that look like
// mail addresses resolve to themselves, which is what development setups
// use.
type staticPersonResolver struct {
	mu     sync.RWMutex
	people map[string]shared.Person
}

func NewStaticPersonResolver() *staticPersonResolver {
	return &staticPersonResolver{people: make(map[string]shared.Person)}
}

func (r *staticPersonResolver) Seed(userID string, person shared.Person) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.people[userID] = person
}

func (r *staticPersonResolver) Resolve(ctx context.Context, userIDs []string) ([]shared.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []shared.Person{}
	for _, id := range userIDs {
		if person, ok := r.people[id]; ok {
			result = append(result, person)
			continue
		}
		if strings.Contains(id, "@") {
			result = append(result, shared.Person{DisplayName: id, Mail: id})
		}
	}
	return result, nil
}
