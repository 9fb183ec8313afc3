package api

import (
	"context"
	"net/http"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// input is a create or update request body of one resource kind.
type input interface {
	Identity() string
	Patch() (map[string]any, error)
}

// resource serves one record kind under /api/{name}.
type resource[T any, In input] struct {
	*APIServer
	name     string
	singular string
	label    string
	records  *storage.Collection[T]
	build    func(In) (*T, error)
}

func registerResource[T any, In input](router *mux.Router, rs *resource[T, In]) {
	base := "/" + rs.name
	item := base + "/{id}"

	router.HandleFunc(base, rs.listHandler()).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc(base, rs.createHandler()).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc(item, rs.getHandler()).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc(item, rs.updateHandler()).Methods(http.MethodPut, http.MethodOptions)
	router.HandleFunc(item, rs.deleteHandler()).Methods(http.MethodDelete, http.MethodOptions)
}

func (rs *resource[T, In]) notFound() string {
	return rs.label + " not found or unauthorized"
}

func (rs *resource[T, In]) forbidden(action string) string {
	return "Unauthorized to " + action + " this " + rs.singular
}

// recordID answers 404 for ids that cannot exist.
func (rs *resource[T, In]) recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		rs.writeError(w, http.StatusNotFound, rs.notFound())
		return uuid.Nil, false
	}
	return id, true
}

func (rs *resource[T, In]) listHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := rs.resolveCaller(w, r, queryIdentity(r), rs.resolver.Resolve)
		if !ok {
			return
		}

		records, err := rs.records.List(r.Context(), user.ID)
		if err != nil {
			rs.fail(w, r, err, rs.notFound(), "")
			return
		}

		rs.writeJSON(w, http.StatusOK, records)
	}
}

func (rs *resource[T, In]) getHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := rs.resolveCaller(w, r, queryIdentity(r), rs.resolver.Resolve)
		if !ok {
			return
		}
		id, ok := rs.recordID(w, r)
		if !ok {
			return
		}

		record, err := rs.records.Get(r.Context(), user.ID, id)
		if err != nil {
			rs.fail(w, r, err, rs.notFound(), "")
			return
		}

		rs.writeJSON(w, http.StatusOK, record)
	}
}

func (rs *resource[T, In]) createHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeBody(r, &in, false); err != nil {
			rs.fail(w, r, err, "", "")
			return
		}

		if _, err := rs.callerID(r, in.Identity()); err != nil {
			rs.fail(w, r, err, "", "external_id does not match the authenticated user")
			return
		}

		record, err := rs.build(in)
		if err != nil {
			rs.fail(w, r, err, "", "")
			return
		}

		resolve := func(ctx context.Context, externalID string) (*models.User, error) {
			return rs.resolver.ResolveForCreate(ctx, rs.name, externalID)
		}
		user, ok := rs.resolveCaller(w, r, in.Identity(), resolve)
		if !ok {
			return
		}

		created, err := rs.records.Create(r.Context(), user.ID, record)
		if err != nil {
			rs.fail(w, r, err, "", "")
			return
		}

		rs.writeJSON(w, http.StatusCreated, map[string]any{
			"message":   rs.label + " added successfully",
			rs.singular: created,
		})
	}
}

func (rs *resource[T, In]) updateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeBody(r, &in, false); err != nil {
			rs.fail(w, r, err, "", "")
			return
		}

		changes, err := in.Patch()
		if err != nil {
			rs.fail(w, r, err, "", "")
			return
		}

		user, ok := rs.resolveCaller(w, r, in.Identity(), rs.resolver.Resolve)
		if !ok {
			return
		}
		if len(changes) == 0 {
			rs.writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}
		id, ok := rs.recordID(w, r)
		if !ok {
			return
		}

		updated, err := rs.records.Update(r.Context(), user.ID, id, changes)
		if err != nil {
			rs.fail(w, r, err, rs.label+" not found", rs.forbidden("update"))
			return
		}

		rs.writeJSON(w, http.StatusOK, map[string]any{
			"message":   rs.label + " updated successfully",
			rs.singular: updated,
		})
	}
}

func (rs *resource[T, In]) deleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var caller models.Caller
		if err := decodeBody(r, &caller, true); err != nil {
			rs.fail(w, r, err, "", "")
			return
		}

		supplied := caller.Identity()
		if supplied == "" {
			supplied = queryIdentity(r)
		}

		user, ok := rs.resolveCaller(w, r, supplied, rs.resolver.Resolve)
		if !ok {
			return
		}
		id, ok := rs.recordID(w, r)
		if !ok {
			return
		}

		if err := rs.records.Delete(r.Context(), user.ID, id); err != nil {
			rs.fail(w, r, err, rs.label+" not found", rs.forbidden("delete"))
			return
		}

		rs.writeJSON(w, http.StatusOK, map[string]string{"message": rs.label + " deleted successfully"})
	}
}
