package datastores

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// PersonsInmem implements [PersonsStore].
//
// Identifiers come from a monotonic counter and are never reused, even after deletions.
type PersonsInmem struct {
	mu      sync.Mutex
	seq     atomic.Int64
	persons []*Person
}

var _ PersonsStore = (*PersonsInmem)(nil)

// NewPersonsInmem returns a store holding ps in the given order.
// Seeds without a positive ID, or repeating an earlier seed's ID, are given a
// fresh one; the counter starts above the largest seeded ID.
func NewPersonsInmem(ps ...*Person) *PersonsInmem {
	s := &PersonsInmem{persons: make([]*Person, 0, len(ps))}
	for _, p := range ps {
		if p.ID > s.seq.Load() {
			s.seq.Store(p.ID)
		}
	}
	seen := make(map[PersonID]bool, len(ps))
	for _, p := range ps {
		c := *p
		if c.ID <= 0 || seen[c.ID] {
			c.ID = s.seq.Add(1)
		}
		seen[c.ID] = true
		s.persons = append(s.persons, &c)
	}
	return s
}

func (s *PersonsInmem) List(_ context.Context) ([]*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	persons := make([]*Person, 0, len(s.persons))
	for _, p := range s.persons {
		c := *p
		persons = append(persons, &c)
	}
	return persons, nil
}

func (s *PersonsInmem) GetByName(_ context.Context, name string) (*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.persons {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, ErrObjectNotFound
}

func (s *PersonsInmem) Create(_ context.Context, p *Person) (*Person, error) {
	if p == nil {
		return nil, ErrInvalidObject
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := &Person{ID: s.seq.Add(1), Name: p.Name, Number: p.Number}
	s.persons = append(s.persons, stored)
	c := *stored
	return &c, nil
}

func (s *PersonsInmem) Update(_ context.Context, id PersonID, p *Person) (*Person, error) {
	if p == nil {
		return nil, ErrInvalidObject
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrObjectNotFound
	}
	s.persons[i].Name = p.Name
	s.persons[i].Number = p.Number
	c := *s.persons[i]
	return &c, nil
}

func (s *PersonsInmem) Delete(_ context.Context, id PersonID) (*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrObjectNotFound
	}
	c := *s.persons[i]
	s.persons = slices.Delete(s.persons, i, i+1)
	return &c, nil
}

// indexOf must be called with s.mu held.
func (s *PersonsInmem) indexOf(id PersonID) int {
	return slices.IndexFunc(s.persons, func(p *Person) bool { return p.ID == id })
}
