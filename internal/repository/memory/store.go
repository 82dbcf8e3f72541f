// Package memory is an in-process implementation of repository.Store.
// It backs the local storage driver and the test suites.
package memory

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	mu sync.Mutex

	seq int64

	users    map[string]*models.User
	infos    map[string]*models.UserInfo
	sessions map[string]*models.Session

	projects map[string]*models.Project
	// members keeps insertion order per project.
	members map[string][]string

	tasks       map[string]*models.Task
	invitations map[string]*models.Invitation
	tokens      map[string]string
	entries     map[string]*models.TimeEntry
}

func New() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		infos:       make(map[string]*models.UserInfo),
		sessions:    make(map[string]*models.Session),
		projects:    make(map[string]*models.Project),
		members:     make(map[string][]string),
		tasks:       make(map[string]*models.Task),
		invitations: make(map[string]*models.Invitation),
		tokens:      make(map[string]string),
		entries:     make(map[string]*models.TimeEntry),
	}
}

// nextID must be called with mu held.
func (s *Store) nextID() string {
	s.seq++
	return strconv.FormatInt(s.seq, 10)
}

func numericLess(a, b string) bool {
	x, errX := strconv.ParseInt(a, 10, 64)
	y, errY := strconv.ParseInt(b, 10, 64)
	if errX != nil || errY != nil {
		return a < b
	}
	return x < y
}

func sortUsers(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
