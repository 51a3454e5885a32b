package http

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"openmat-france/backend/internal/config"
	"openmat-france/backend/internal/domain/favorites"
	"openmat-france/backend/internal/domain/openmat"
	"openmat-france/backend/internal/geocode"
	"openmat-france/backend/internal/handlers"
	"openmat-france/backend/internal/middleware"
	"openmat-france/backend/internal/offline"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Cfg          config.Config
	Log          zerolog.Logger
	AuthClient   *auth.Client
	OpenMatSvc   *openmat.Service
	FavoritesSvc *favorites.Service
	Uploads      *handlers.Uploads
	Suggester    *geocode.Suggester
	Preferences  *offline.Store
	Monitor      *offline.Monitor
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Use(middleware.RequestLogger(d.Log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{
			"ok":     true,
			"online": d.Monitor == nil || d.Monitor.Online(),
			"ts":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	// ===== Public listing routes =====
	r.Get("/v1/open-mats", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := openmat.Filters{
			City:       strings.TrimSpace(q.Get("city")),
			Level:      strings.TrimSpace(q.Get("level")),
			Discipline: strings.TrimSpace(q.Get("discipline")),
			Date:       strings.TrimSpace(q.Get("date")),
		}
		page := 1
		if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
			page = n
		}

		out, err := d.OpenMatSvc.Browse(r.Context(), q.Get("search"), f, page, openmat.DefaultPageSize)
		if err != nil {
			status, msg := mapError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	r.Get("/v1/open-mats/{openMatID}", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.OpenMatSvc.Get(r.Context(), chi.URLParam(r, "openMatID"))
		if err != nil {
			status, msg := mapError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	// ===== Address autocomplete =====
	r.Get("/v1/geocode", func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		suggestions, current, err := d.Suggester.Suggest(r.Context(), geocodeClientKey(r), q, limit)
		if !current {
			// A newer query superseded this one; nothing to render.
			WriteJSON(w, 200, map[string]any{"items": []geocode.Suggestion{}, "stale": true})
			return
		}
		if err != nil {
			d.Log.Warn().Err(err).Msg("address lookup failed")
			Fail(w, http.StatusBadGateway, "address lookup failed")
			return
		}
		WriteJSON(w, 200, map[string]any{"items": suggestions})
	})

	// ===== Protected routes =====
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)
			WriteJSON(w, 200, map[string]any{
				"uid":   au.UID,
				"email": au.Email,
			})
		})

		pr.Post("/v1/open-mats", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)

			var in openmat.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			out, err := d.OpenMatSvc.Create(r.Context(), au.UID, in)
			if err != nil {
				status, msg := mapError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		// ===== Favorites =====
		pr.Get("/v1/favorites", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)
			out, err := d.FavoritesSvc.List(r.Context(), au.UID)
			if err != nil {
				status, msg := mapError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"items": out})
		})

		pr.Put("/v1/favorites/{openMatID}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)
			if err := d.FavoritesSvc.Add(r.Context(), au.UID, chi.URLParam(r, "openMatID")); err != nil {
				status, msg := mapError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		pr.Delete("/v1/favorites/{openMatID}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)
			if err := d.FavoritesSvc.Remove(r.Context(), au.UID, chi.URLParam(r, "openMatID")); err != nil {
				status, msg := mapError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		// ===== Uploads =====
		pr.Post("/v1/uploads/images", d.Uploads.UploadImage)
		pr.Post("/v1/uploads/signed-url", d.Uploads.CreateSignedUploadURL)

		// ===== Preferences =====
		pr.Get("/v1/preferences", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)
			prefs, err := d.Preferences.GetPreferences(r.Context(), au.UID)
			if err != nil {
				d.Log.Warn().Err(err).Msg("preferences read failed")
				// Cache reads are best effort; an empty object is a valid view.
				WriteJSON(w, 200, map[string]any{})
				return
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(200)
			_, _ = w.Write(prefs)
		})

		pr.Put("/v1/preferences", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r)
			var prefs json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.Preferences.SavePreferences(r.Context(), au.UID, prefs); err != nil {
				Fail(w, 500, "failed to save preferences")
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})
	})

	return r
}

// geocodeClientKey scopes the autocomplete latest-request-wins rule to one
// client. Callers pass a `client` field identifier when they have one;
// requests without it are keyed by remote host.
func geocodeClientKey(r *http.Request) string {
	if c := strings.TrimSpace(r.URL.Query().Get("client")); c != "" {
		return c
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
