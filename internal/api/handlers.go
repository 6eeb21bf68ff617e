package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/schooldash/internal/dashboard"
	"github.com/dmitrymomot/schooldash/pkg/docstore"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// envelope wraps list responses.
type envelope struct {
	Data  any `json:"data"`
	Count int `json:"count"`
}

// wrap adapts a handlerFunc, rendering any returned error as JSON.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		he := toHTTPError(err)
		he.RequestID = middleware.GetReqID(r.Context())

		if he.Code >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "request failed",
				slog.Int("status", he.Code),
				slog.String("error", err.Error()),
			)
		}
		writeJSON(w, he.Code, he)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) error {
	collection := chi.URLParam(r, "resource")
	res, ok := dashboard.Lookup(collection)
	if !ok {
		return toHTTPError(dashboard.ErrUnknownResource)
	}

	var (
		docs []docstore.Document
		err  error
	)
	if parentID, ok := parentFilter(r, res); ok {
		docs, err = s.svc.ListByParent(r.Context(), collection, parentID)
	} else {
		docs, err = s.svc.List(r.Context(), collection)
	}
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{Data: docs, Count: len(docs)})
	return nil
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) error {
	doc, err := s.svc.Get(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, doc)
	return nil
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) error {
	doc, err := decodeDocument(w, r)
	if err != nil {
		return err
	}

	created, err := s.svc.Create(r.Context(), chi.URLParam(r, "resource"), doc)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, created)
	return nil
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) error {
	patch, err := decodeDocument(w, r)
	if err != nil {
		return err
	}

	updated, err := s.svc.Update(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"), patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, updated)
	return nil
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) error {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) error {
	st, err := s.svc.Stats(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, st)
	return nil
}

func (s *Server) cacheStats(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, s.svc.Cache().Stats())
	return nil
}

func (s *Server) cacheClear(w http.ResponseWriter, r *http.Request) error {
	s.svc.Cache().Clear()
	s.logger.InfoContext(r.Context(), "cache cleared")
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) cacheResetStats(w http.ResponseWriter, _ *http.Request) error {
	s.svc.Cache().ResetStats()
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// parentFilter reads the parent id from ?school=<id> or ?schoolId=<id>.
func parentFilter(r *http.Request, res dashboard.Resource) (string, bool) {
	if !res.HasParent() {
		return "", false
	}
	q := r.URL.Query()
	for _, name := range []string{res.ParentName, res.ParentField} {
		if q.Has(name) {
			return q.Get(name), true
		}
	}
	return "", false
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&doc); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return nil, errBadRequest("invalid JSON body", err)
	}
	if doc == nil {
		return nil, errBadRequest("request body must be a JSON object", nil)
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
