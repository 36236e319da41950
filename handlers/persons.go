package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/phonebook/datastores"
)

type Persons struct {
	Store        ds.PersonsStore
	ErrorHandler func(context.Context, error)
}

type PersonModel struct {
	ID ds.PersonID `json:"id" readOnly:"true" example:"1"`

	Name   string `json:"name"   minLength:"1" example:"Arto Hellas"`
	Number string `json:"number" minLength:"1" example:"040-123456"`
}

func personModel(p *ds.Person) PersonModel {
	return PersonModel{ID: p.ID, Name: p.Name, Number: p.Number}
}

func (h *Persons) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/persons",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusNotFound),
	)
}

type PersonsListOutput struct {
	Body []PersonModel
}

func (h *Persons) list(ctx context.Context, _ *struct{}) (*PersonsListOutput, error) {
	persons, err := h.Store.List(ctx)
	if err != nil {
		return nil, huma.Error404NotFound("Phonebook not found", err)
	}

	body := make([]PersonModel, 0, len(persons))
	for _, p := range persons {
		body = append(body, personModel(p))
	}

	return &PersonsListOutput{Body: body}, nil
}

func (h *Persons) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/persons/{name}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound),
	)
}

type PersonsOutput struct {
	Body PersonModel
}

func (h *Persons) get(ctx context.Context, input *struct {
	Name string `path:"name" doc:"exact name of the person to get" example:"Arto Hellas"`
}) (*PersonsOutput, error) {
	person, err := h.Store.GetByName(ctx, input.Name)
	if err != nil {
		return nil, huma.Error404NotFound("Person not found", err)
	}
	return &PersonsOutput{Body: personModel(person)}, nil
}

func (h *Persons) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/persons",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opStatus(http.StatusCreated),
		opErrors(http.StatusBadRequest),
	)
}

func (h *Persons) create(ctx context.Context, input *struct {
	Body PersonModel
}) (*PersonsOutput, error) {
	person, err := h.Store.Create(ctx, &ds.Person{
		Name:   input.Body.Name,
		Number: input.Body.Number,
	})
	if err != nil {
		return nil, huma.Error400BadRequest("Person not created", err)
	}
	return &PersonsOutput{Body: personModel(person)}, nil
}

func (h *Persons) RegisterUpdate(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/persons/{id}",
		handlerWithErrorHandler(h.update, h.ErrorHandler),
		opErrors(http.StatusBadRequest, http.StatusNotFound),
	)
}

func (h *Persons) update(ctx context.Context, input *struct {
	ID   ds.PersonID `path:"id" doc:"ID of the person to update" example:"1"`
	Body PersonModel
}) (*PersonsOutput, error) {
	person, err := h.Store.Update(ctx, input.ID, &ds.Person{
		Name:   input.Body.Name,
		Number: input.Body.Number,
	})
	switch {
	case err == nil:
		return &PersonsOutput{Body: personModel(person)}, nil

	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, huma.Error404NotFound("Person not found", err)

	default:
		return nil, huma.Error400BadRequest("Person not updated", err)
	}
}

func (h *Persons) RegisterDelete(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/persons/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusBadRequest, http.StatusNotFound),
	)
}

func (h *Persons) del(ctx context.Context, input *struct {
	ID ds.PersonID `path:"id" doc:"ID of the person to delete" example:"1"`
}) (*PersonsOutput, error) {
	person, err := h.Store.Delete(ctx, input.ID)
	switch {
	case err == nil:
		return &PersonsOutput{Body: personModel(person)}, nil

	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, huma.Error404NotFound("Person not found", err)

	default:
		return nil, huma.Error400BadRequest("Person not deleted", err)
	}
}
