package datastores

import (
	"context"
	"errors"
)

type (
	PersonID = int64
	Person   struct {
		ID     PersonID `yaml:"id,omitempty"`
		Name   string   `yaml:"name"`
		Number string   `yaml:"number"`
	}
)

// PersonsStore holds persons in insertion order.
type PersonsStore interface {
	List(context.Context) ([]*Person, error)
	GetByName(context.Context, string) (*Person, error)
	Create(context.Context, *Person) (*Person, error)
	Update(context.Context, PersonID, *Person) (*Person, error)
	Delete(context.Context, PersonID) (*Person, error)
}

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrInvalidObject  = errors.New("store: invalid object")
)
