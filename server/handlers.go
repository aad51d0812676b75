package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"Bt1Cut/cache"
	"Bt1Cut/config"
	"Bt1Cut/core/auth"
	"Bt1Cut/core/media"
	"Bt1Cut/core/session"
	"Bt1Cut/core/timeline"
	"Bt1Cut/logger"
	"Bt1Cut/repository"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	assetRepo   repository.AssetRepository
	mediaSvc    *media.Service
	sessions    *session.Manager
	snapCache   *cache.SnapshotCache
	tokens      *auth.TokenIssuer
	cfg         *config.Config

	hubMu sync.Mutex
	hubs  map[string]*sessionHub
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	assetRepo repository.AssetRepository,
	mediaSvc *media.Service,
	sessions *session.Manager,
	snapCache *cache.SnapshotCache,
	tokens *auth.TokenIssuer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		assetRepo:   assetRepo,
		mediaSvc:    mediaSvc,
		sessions:    sessions,
		snapCache:   snapCache,
		tokens:      tokens,
		cfg:         cfg,
		hubs:        make(map[string]*sessionHub),
	}
}

// writeJSON 输出JSON响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

// writeError maps engine errors onto HTTP statuses: rejected mutations are
// 422, missing entities 404, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, timeline.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, timeline.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logger.ErrorField(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody 解析JSON请求体
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", timeline.ErrValidation)
	}
	return nil
}

// AuthMiddleware is a middleware function that checks for a valid JWT token
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// 浏览器的WebSocket API无法携带header，回落到查询参数
			authHeader = "Bearer " + r.URL.Query().Get("token")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		claims, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value("userID").(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// sessionFor looks up the session from the URL and checks it belongs to the
// requesting user.
func (h *APIHandler) sessionFor(r *http.Request, sessionID string) (*session.Session, error) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	sess := h.sessions.Get(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s", timeline.ErrNotFound, sessionID)
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", timeline.ErrNotFound, sessionID)
	}
	return sess, nil
}
