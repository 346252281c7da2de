// Package fakeapi serves the Truth or Dare REST API from a local database.
// It backs the dev-server command and end-to-end tests.
package fakeapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/partygames/truthordare/internal/domain"
)

type Options struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secret     string
	BcryptCost int
	// AuthRateLimit caps /auth requests per client IP per minute. Zero
	// disables the limit.
	AuthRateLimit int
}

func (o Options) withDefaults() Options {
	if o.AccessTTL <= 0 {
		o.AccessTTL = 15 * time.Minute
	}
	if o.RefreshTTL <= 0 {
		o.RefreshTTL = 30 * 24 * time.Hour
	}
	if o.Secret == "" {
		o.Secret = "tod-dev-secret"
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return o
}

type Server struct {
	store  *Store
	tokens *TokenIssuer
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func NewServer(store *Store, opts Options, logger *slog.Logger) *Server {
	opts = opts.withDefaults()
	return &Server{
		store:  store,
		tokens: NewTokenIssuer("tod-fakeapi", opts.Secret+":access", opts.Secret+":refresh"),
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

		r.Group(func(r chi.Router) {
			if s.opts.AuthRateLimit > 0 {
				r.Use(newFixedWindowLimiter(s.opts.AuthRateLimit, time.Minute).middleware)
			}
			r.Post("/auth/login", s.login)
			r.Post("/auth/register", s.register)
			r.Post("/auth/refresh", s.refresh)
		})

		r.Get("/collections/trending", s.trending)
		r.Get("/collections", s.listCollections)
		r.Get("/collections/{id}", s.getCollection)
		r.Get("/collections/{id}/actions", s.listActions)
		r.Get("/users/{id}", s.publicUser)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/user/collections", s.myCollections)
			r.Get("/user/profile", s.profile)
			r.Put("/user/profile", s.updateProfile)
			r.Post("/collections", s.createCollection)
			r.Put("/collections/{id}", s.updateCollection)
			r.Delete("/collections/{id}", s.deleteCollection)
			r.Post("/collections/{id}/actions", s.addAction)
			r.Delete("/actions/{id}", s.deleteAction)
		})
	})
	return r
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, userID uint) {
	access, exp, err := s.tokens.SignAccessToken(userID, s.opts.AccessTTL)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "sign access token")
		return
	}
	refresh, refreshExp, err := s.tokens.SignRefreshToken(userID, s.opts.RefreshTTL)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "sign refresh token")
		return
	}
	claims, err := s.tokens.ParseRefreshToken(refresh)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "sign refresh token")
		return
	}
	if err := s.store.CreateRefreshSession(r.Context(), &refreshSession{TokenID: claims.ID, UserID: userID, ExpiresAt: refreshExp}); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    domain.NewAPITime(exp),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := s.store.UserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.issue(w, r, u.ID)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.Name) == "" || !strings.Contains(email, "@") || len(req.Password) < 6 {
		writeMessage(w, http.StatusUnprocessableEntity, "name, email and a 6+ character password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "hash password")
		return
	}
	u := &userRecord{Name: req.Name, Surname: req.Surname, Email: email, PasswordHash: string(hash), Phone: req.Phone}
	if err := s.store.CreateUser(r.Context(), u); err != nil {
		writeStoreError(w, err)
		return
	}
	s.issue(w, r, u.ID)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	claims, err := s.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if err := s.store.ConsumeRefreshSession(r.Context(), claims.ID, userID, s.now()); err != nil {
		writeStoreError(w, err)
		return
	}
	s.issue(w, r, userID)
}

func (s *Server) trending(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	recs, err := s.store.Trending(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ItemsResponse[domain.Collection]{Items: collectionsToDomain(recs)})
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	recs, total, err := s.store.Page(r.Context(), page, size)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.CollectionPage{Total: int(total), Page: page, Size: size, Items: collectionsToDomain(recs)})
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := s.store.Collection(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.toDomain())
}

func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	recs, err := s.store.Actions(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	items := make([]domain.Action, 0, len(recs))
	for _, a := range recs {
		items = append(items, a.toDomain())
	}
	writeJSON(w, http.StatusOK, domain.ItemsResponse[domain.Action]{Items: items})
}

func (s *Server) publicUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.store.User(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.toPublic())
}

func (s *Server) myCollections(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.CollectionsByUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ItemsResponse[domain.Collection]{Items: collectionsToDomain(recs)})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.User(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.toDomain())
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := decodeBody(w, r, &upd); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		upd.Email = &email
	}
	if err := s.store.UpdateUser(r.Context(), userIDFromContext(r.Context()), upd); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "profile updated")
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var in domain.CollectionInput
	if err := decodeBody(w, r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	c := &collectionRecord{Name: in.Name, Description: in.Description, ImageURL: in.ImageURL, UserID: userIDFromContext(r.Context())}
	if err := s.store.CreateCollection(r.Context(), c); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "collection "+strconv.FormatUint(uint64(c.ID), 10)+" created")
}

func (s *Server) updateCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in domain.CollectionInput
	if err := decodeBody(w, r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := s.store.UpdateCollection(r.Context(), id, userIDFromContext(r.Context()), in); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "collection updated")
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteCollection(r.Context(), id, userIDFromContext(r.Context())); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "collection deleted")
}

func (s *Server) addAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in domain.ActionInput
	if err := decodeBody(w, r, &in); err != nil || strings.TrimSpace(in.Text) == "" {
		writeMessage(w, http.StatusBadRequest, "text is required")
		return
	}
	if in.Type == "" {
		in.Type = domain.ActionTruth
	}
	if !in.Type.Valid() {
		writeMessage(w, http.StatusUnprocessableEntity, "type must be truth or dare")
		return
	}
	a := &actionRecord{Text: in.Text, Type: string(in.Type), Position: in.Order}
	if err := s.store.AddAction(r.Context(), id, userIDFromContext(r.Context()), a); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "action added")
}

func (s *Server) deleteAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteAction(r.Context(), id, userIDFromContext(r.Context())); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "action removed")
}

func collectionsToDomain(recs []collectionRecord) []domain.Collection {
	out := make([]domain.Collection, 0, len(recs))
	for _, c := range recs {
		out = append(out, c.toDomain())
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeMessage(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
