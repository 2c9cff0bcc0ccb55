package switcher

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/extswitch/profiles"
	"github.com/hazyhaar/extswitch/urlmatch"
)

// RegisterHTTP mounts the admin API on a chi router. The daemon binds it to
// localhost; the profile editor and preview UI are its clients.
//
// Routes:
//
//	GET    /health
//	GET    /profiles             — all profile groups
//	POST   /profiles             — create
//	GET    /profiles/{id}
//	PUT    /profiles/{id}
//	DELETE /profiles/{id}
//	GET    /state                — current match state snapshot
//	POST   /state/restore        — force restore to baseline
//	DELETE /state                — clear without touching extensions
//	POST   /preview              — {url} → matching profile or null
//	POST   /validate             — {pattern, type} → {error}
//	GET    /settings
//	PUT    /settings/enabled     — {enabled}
func (s *Switcher) RegisterHTTP(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/profiles", func(w http.ResponseWriter, r *http.Request) {
		list, err := s.store.ListProfiles(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if list == nil {
			list = []*profiles.ProfileGroup{}
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Post("/profiles", func(w http.ResponseWriter, r *http.Request) {
		var p profiles.ProfileGroup
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.CreateProfile(r.Context(), &p); err != nil {
			writeSaveError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, &p)
	})

	r.Get("/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.GetProfile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	r.Put("/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p profiles.ProfileGroup
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		p.ID = chi.URLParam(r, "id")
		if err := s.UpdateProfile(r.Context(), &p); err != nil {
			writeSaveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &p)
	})

	r.Delete("/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	})

	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.rec.CurrentState())
	})

	r.Post("/state/restore", func(w http.ResponseWriter, r *http.Request) {
		results := s.rec.Restore(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"restored": len(results)})
	})

	r.Delete("/state", func(w http.ResponseWriter, _ *http.Request) {
		s.rec.Clear()
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	})

	r.Post("/preview", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"url":     req.URL,
			"profile": s.FindMatching(req.URL),
		})
	})

	r.Post("/validate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Pattern string        `json:"pattern"`
			Type    urlmatch.Type `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"error": urlmatch.Validate(req.Pattern, req.Type),
		})
	})

	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		enabled, err := s.store.GlobalEnabled(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
	})

	r.Put("/settings/enabled", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.SetGlobalEnabled(r.Context(), req.Enabled); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeSaveError distinguishes user-correctable validation problems from
// internal failures.
func writeSaveError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": verr.Message})
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
