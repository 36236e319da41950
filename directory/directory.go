// Package directory is the client side of the phonebook: a cached copy of the
// persons held by the service, kept in step with it one confirmed mutation at a time.
//
// The cache is only ever patched with what the service returned. A mutation
// that fails leaves it as it was, except when the service reports the target
// is already gone, in which case the stale entry is dropped.
package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// API is the subset of [Client] a [Directory] needs.
type API interface {
	List(context.Context) ([]Person, error)
	Create(context.Context, Candidate) (Person, error)
	Update(context.Context, int64, Candidate) (Person, error)
	Delete(context.Context, int64) (Person, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Outcome tells what a mutation did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCreated
	OutcomeUpdated
	OutcomeDeleted
	OutcomeDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeDeclined:
		return "declined"
	default:
		return "none"
	}
}

// ErrAlreadyRemoved is returned by [Directory.Add] when the person to replace
// was deleted from the service behind our back.
var ErrAlreadyRemoved = fmt.Errorf("%w: already removed from server", ErrNotFound)

type Directory struct {
	api     API
	confirm Confirmer
	notices *Notifier

	flight singleflight.Group
	names  nameLocks

	mu      sync.Mutex
	persons []Person
}

// New returns an empty [Directory]; call [Directory.Load] to fill it.
// A nil confirm declines everything and a nil notices discards notices.
func New(api API, confirm Confirmer, notices *Notifier) *Directory {
	if confirm == nil {
		confirm = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	}
	return &Directory{api: api, confirm: confirm, notices: notices}
}

// Load replaces the cache with the service's persons.
func (d *Directory) Load(ctx context.Context) error {
	persons, err := d.api.List(ctx)
	if err != nil {
		d.notices.Errorf("Could not load the phonebook")
		return fmt.Errorf("load: %w", err)
	}
	d.mu.Lock()
	d.persons = slices.Clone(persons)
	d.mu.Unlock()
	return nil
}

// Persons returns a copy of the cache.
func (d *Directory) Persons() []Person {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.persons)
}

// Filter is [Filter] over the cache.
func (d *Directory) Filter(text string) []Person {
	return Filter(d.Persons(), text)
}

// Lookup returns the cached person with exactly this name.
func (d *Directory) Lookup(name string) (Person, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.persons, func(p Person) bool { return p.Name == name })
	if i < 0 {
		return Person{}, false
	}
	return d.persons[i], true
}

func (d *Directory) byID(id int64) (Person, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.persons, func(p Person) bool { return p.ID == id })
	if i < 0 {
		return Person{}, false
	}
	return d.persons[i], true
}

// Add creates a person, or replaces the number of the cached person with the
// same name once the user confirms. Concurrent identical calls share one
// outcome; calls for the same name with another number run after it.
func (d *Directory) Add(ctx context.Context, name, number string) (Outcome, error) {
	if name == "" || number == "" {
		d.notices.Errorf("Name and number are required")
		return OutcomeNone, fmt.Errorf("%w: name and number are required", ErrValidation)
	}
	v, err, _ := d.flight.Do("add\x00"+name+"\x00"+number, func() (any, error) {
		defer d.names.lock(name)()
		return d.add(ctx, Candidate{Name: name, Number: number})
	})
	return v.(Outcome), err //nolint: errcheck // always an Outcome
}

func (d *Directory) add(ctx context.Context, candidate Candidate) (Outcome, error) {
	existing, found := d.Lookup(candidate.Name)
	if !found {
		p, err := d.api.Create(ctx, candidate)
		if err != nil {
			d.notices.Errorf("Could not add %s", candidate.Name)
			return OutcomeNone, fmt.Errorf("create %q: %w", candidate.Name, err)
		}
		d.mu.Lock()
		d.persons = append(d.persons, p)
		d.mu.Unlock()
		d.notices.Infof("Added %s", p.Name)
		return OutcomeCreated, nil
	}

	ok, err := d.confirm.Confirm(ctx,
		existing.Name+" is already added to phonebook, replace the old number with a new one?")
	if err != nil {
		return OutcomeNone, err
	}
	if !ok {
		return OutcomeDeclined, nil
	}

	p, err := d.api.Update(ctx, existing.ID, candidate)
	switch {
	case err == nil:
		d.mu.Lock()
		if i := slices.IndexFunc(d.persons, func(c Person) bool { return c.ID == existing.ID }); i >= 0 {
			d.persons[i] = p
		}
		d.mu.Unlock()
		d.notices.Infof("Updated %s", p.Name)
		return OutcomeUpdated, nil

	case errors.Is(err, ErrNotFound):
		d.drop(existing.ID)
		d.notices.Errorf("Information of %s has already been removed from server", existing.Name)
		return OutcomeNone, ErrAlreadyRemoved

	default:
		d.notices.Errorf("Could not update %s", existing.Name)
		return OutcomeNone, fmt.Errorf("update %q: %w", existing.Name, err)
	}
}

// Delete removes a cached person once the user confirms. A person the service
// no longer has is dropped from the cache as if the deletion succeeded.
func (d *Directory) Delete(ctx context.Context, id int64) (Outcome, error) {
	v, err, _ := d.flight.Do("delete\x00"+strconv.FormatInt(id, 10), func() (any, error) {
		return d.delete(ctx, id)
	})
	return v.(Outcome), err //nolint: errcheck // always an Outcome
}

func (d *Directory) delete(ctx context.Context, id int64) (Outcome, error) {
	target, found := d.byID(id)
	if !found {
		return OutcomeNone, fmt.Errorf("person %d: %w", id, ErrNotFound)
	}

	ok, err := d.confirm.Confirm(ctx, "Delete "+target.Name+"?")
	if err != nil {
		return OutcomeNone, err
	}
	if !ok {
		return OutcomeDeclined, nil
	}

	_, err = d.api.Delete(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		d.notices.Errorf("Could not delete %s", target.Name)
		return OutcomeNone, fmt.Errorf("delete %q: %w", target.Name, err)
	}
	d.drop(id)
	d.notices.Infof("Deleted %s", target.Name)
	return OutcomeDeleted, nil
}

func (d *Directory) drop(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persons = slices.DeleteFunc(d.persons, func(p Person) bool { return p.ID == id })
}

// nameLocks hands out one mutex per name, dropped once nobody holds or waits on it.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	sync.Mutex
	refs int
}

// lock blocks until name is free and returns its unlock.
func (l *nameLocks) lock(name string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*nameLock)
	}
	nl, ok := l.locks[name]
	if !ok {
		nl = &nameLock{}
		l.locks[name] = nl
	}
	nl.refs++
	l.mu.Unlock()

	nl.Lock()
	return func() {
		nl.Unlock()
		l.mu.Lock()
		nl.refs--
		if nl.refs == 0 {
			delete(l.locks, name)
		}
		l.mu.Unlock()
	}
}
