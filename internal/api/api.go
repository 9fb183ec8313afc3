package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/config"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/identity"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/lib/jwt"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type contextKey string

const callerKey contextKey = "external_id"

type APIServer struct {
	config    *config.Config
	logger    *slog.Logger
	server    *http.Server
	storage   *storage.Storage
	resolver  *identity.Resolver
	jwtSecret []byte
}

func New(config *config.Config, logger *slog.Logger, storage *storage.Storage) *APIServer {
	policy, err := identity.ParsePolicy(config.Identity.AutoProvision)
	if err != nil {
		logger.Warn("Unknown provisioning policy, using default", "error", err)
		policy = identity.ProvisionOnCreate
	}

	s := &APIServer{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:         config.ApiHost + ":" + strconv.Itoa(config.ApiPort),
			ReadTimeout:  config.HTTP.ReadTimeout,
			WriteTimeout: config.HTTP.WriteTimeout,
		},
		storage:   storage,
		resolver:  identity.NewResolver(storage, policy),
		jwtSecret: []byte(config.Auth.JWTSecret),
	}

	s.configureRouter()

	return s
}

func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *APIServer) Start() error {
	s.logger.Info("Starting server", slog.String("port", strconv.Itoa(s.config.ApiPort)))

	return s.server.ListenAndServe()
}

func (s *APIServer) MustStart() {
	err := s.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("Failed to start server: " + err.Error())
	}
}

func (s *APIServer) Stop(ctx context.Context) error {
	defer s.logger.Info("Server successfully stopped")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) configureRouter() {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.healthHandler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(mux.CORSMethodMiddleware(api), s.cors)
	if len(s.jwtSecret) > 0 {
		api.Use(s.authenticate)
	}

	registerResource(api, &resource[models.Transaction, models.TransactionInput]{
		APIServer: s,
		name:      "transactions",
		singular:  "transaction",
		label:     "Transaction",
		records:   s.storage.Transactions,
		build:     models.TransactionInput.Transaction,
	})
	registerResource(api, &resource[models.Asset, models.AssetInput]{
		APIServer: s,
		name:      "assets",
		singular:  "asset",
		label:     "Asset",
		records:   s.storage.Assets,
		build:     models.AssetInput.Asset,
	})
	registerResource(api, &resource[models.Liability, models.LiabilityInput]{
		APIServer: s,
		name:      "liabilities",
		singular:  "liability",
		label:     "Liability",
		records:   s.storage.Liabilities,
		build:     models.LiabilityInput.Liability,
	})

	api.HandleFunc("/summary", s.summaryHandler()).Methods(http.MethodGet, http.MethodOptions)

	s.server.Handler = s.logRequests(router)
}

func (s *APIServer) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.storage.Ping(ctx); err != nil {
			s.logger.Error("Health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// authenticate requires a bearer token and puts its uid claim into the
// request context as the caller's identity.
func (s *APIServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		tokenHeader := r.Header.Get("Authorization")
		if tokenHeader == "" {
			s.writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		parts := strings.Split(tokenHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		uid, err := jwt.Subject(parts[1], string(s.jwtSecret))
		if err != nil {
			s.logger.Debug("Rejected token", "error", err)
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, uid)))
	})
}

func (s *APIServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// originAllowed lets every origin through when none are configured.
func (s *APIServer) originAllowed(origin string) bool {
	allowed := s.config.CORS.AllowedOrigins
	return len(allowed) == 0 || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *APIServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("Request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// callerID picks the identity a request acts for. With authentication on,
// the token decides and a different supplied id is refused.
func (s *APIServer) callerID(r *http.Request, supplied string) (string, error) {
	supplied = strings.TrimSpace(supplied)

	if uid, ok := r.Context().Value(callerKey).(string); ok {
		if supplied != "" && supplied != uid {
			return "", domain.ErrForbidden
		}
		return uid, nil
	}

	if supplied == "" {
		return "", errors.Join(domain.ErrInvalidRequest, errors.New("external_id is required"))
	}

	return supplied, nil
}

func queryIdentity(r *http.Request) string {
	return models.Caller{
		ExternalID:  r.URL.Query().Get("external_id"),
		FirebaseUID: r.URL.Query().Get("firebase_uid"),
	}.Identity()
}

// resolveCaller writes the error response itself and reports whether the
// handler may go on.
func (s *APIServer) resolveCaller(
	w http.ResponseWriter,
	r *http.Request,
	supplied string,
	resolve func(ctx context.Context, externalID string) (*models.User, error),
) (*models.User, bool) {
	externalID, err := s.callerID(r, supplied)
	if err != nil {
		s.fail(w, r, err, "", "external_id does not match the authenticated user")
		return nil, false
	}

	user, err := resolve(r.Context(), externalID)
	if err != nil {
		s.fail(w, r, err, "User not found", "")
		return nil, false
	}

	return user, true
}

// decodeBody reads a JSON body. An empty body is allowed when optional is set.
func decodeBody(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	default:
		return errors.Join(domain.ErrInvalidRequest, errors.New("malformed JSON body"))
	}
}

// fail maps err onto a status code and an error body.
func (s *APIServer) fail(w http.ResponseWriter, r *http.Request, err error, notFound, forbidden string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		s.writeError(w, http.StatusBadRequest, reason(err))
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrForbidden):
		s.writeError(w, http.StatusForbidden, forbidden)
	default:
		s.logger.Error("Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			"error", err,
		)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// reason extracts the part of a validation error meant for the client: the
// text after the first occurrence of the sentinel. Anything before it is
// operation prefixes; anything after may echo client input.
func reason(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidRequest.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		msg = strings.TrimLeft(msg[i+len(prefix):], ":\n ")
	}
	if msg == "" {
		return prefix
	}
	return msg
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
