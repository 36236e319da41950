package directory

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oaiiae/phonebook/datastores"
	"github.com/oaiiae/phonebook/handlers"
	"github.com/oaiiae/phonebook/router"
)

// newService starts a phonebook service over store and returns a client for it.
func newService(t *testing.T, store *datastores.PersonsInmem) *Client {
	t.Helper()
	noop := func(http.ResponseWriter, *http.Request) {}
	srv := httptest.NewServer(router.New("Phonebook", "test", noop, noop, nil,
		router.OptGroup("/api", router.OptAutoRegister(&handlers.Persons{Store: store})),
	))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/persons/", srv.Client())
}
