package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/server/itemrepo"
	"github.com/jrsteele09/go-auth-client/users"
)

type itemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// MeHandler returns the signed in user
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ListItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := userIDFromContext(r.Context())
		items, err := s.items.List(userID)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) CreateItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := userIDFromContext(r.Context())

		var in itemInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"name": {"This field is required."}})
			return
		}

		item := &itemrepo.Item{Name: *in.Name, Owner: userID}
		if in.Description != nil {
			item.Description = *in.Description
		}
		created, err := s.items.Create(item)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) GetItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := s.ownedItem(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) UpdateItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := s.ownedItem(w, r)
		if !ok {
			return
		}

		var in itemInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				writeJSON(w, http.StatusBadRequest, map[string][]string{"name": {"This field may not be blank."}})
				return
			}
			item.Name = *in.Name
		}
		if in.Description != nil {
			item.Description = *in.Description
		}

		updated, err := s.items.Update(item)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := s.ownedItem(w, r)
		if !ok {
			return
		}
		if err := s.items.Delete(item.ID); err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ownedItem loads the {id} item and answers 404 for missing items and for
// items that belong to someone else.
func (s *Server) ownedItem(w http.ResponseWriter, r *http.Request) (*itemrepo.Item, bool) {
	userID, _ := userIDFromContext(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.", "")
		return nil, false
	}
	item, err := s.items.Get(id)
	if errors.Is(err, apperrors.ErrNotFound) || (err == nil && item.Owner != userID) {
		writeDetail(w, http.StatusNotFound, "Not found.", "")
		return nil, false
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
		return nil, false
	}
	return item, true
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.", "not_authenticated")
		return nil, false
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.", "")
		return nil, false
	}
	return user, true
}
