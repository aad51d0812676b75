package server

import (
	"fmt"
	"net/http"

	"Bt1Cut/core/timeline"
	"Bt1Cut/logger"
	"Bt1Cut/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CreateProjectRequest 新建项目请求体
type CreateProjectRequest struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

// CreateProjectHandler 创建空项目
func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateProjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: project name is required", timeline.ErrValidation))
		return
	}
	if req.Duration <= 0 {
		writeError(w, fmt.Errorf("%w: project duration must be positive", timeline.ErrValidation))
		return
	}

	project := &model.Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Duration:  req.Duration,
		FrameRate: h.cfg.FrameRate,
	}
	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		writeError(w, err)
		return
	}

	logger.Info("project created",
		logger.String("projectId", project.ID),
		logger.Int64("userId", userID),
	)
	writeJSON(w, http.StatusCreated, project)
}

// ListProjectsHandler 列出当前用户的项目
func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projects, err := h.projectRepo.ListByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// DeleteProjectHandler 删除项目及其快照
func (h *APIHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := mux.Vars(r)["id"]
	project, err := h.projectRepo.GetByID(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if project == nil || project.UserID != userID {
		writeError(w, fmt.Errorf("%w: project %s", timeline.ErrNotFound, projectID))
		return
	}

	if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.snapCache.DropSnapshot(r.Context(), projectID); err != nil {
		logger.Warn("failed to drop autosave snapshot", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// OpenProjectHandler starts an editing session on a project. A Redis autosave
// snapshot wins over the MySQL one when both exist, so work lost to a crash
// or a reaped session is recovered.
func (h *APIHandler) OpenProjectHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := mux.Vars(r)["id"]
	project, err := h.projectRepo.GetByID(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if project == nil || project.UserID != userID {
		writeError(w, fmt.Errorf("%w: project %s", timeline.ErrNotFound, projectID))
		return
	}

	tl, err := h.snapCache.LoadSnapshot(r.Context(), projectID)
	if err != nil {
		logger.Warn("autosave lookup failed, falling back to database",
			logger.String("projectId", projectID),
			logger.ErrorField(err),
		)
		tl = nil
	}
	restored := tl != nil
	if tl == nil {
		tl, err = h.projectRepo.LoadTimeline(r.Context(), project)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if tl.Zoom == 0 {
		tl.Zoom = h.cfg.DefaultZoom
	}

	sess := h.sessions.Open(userID, projectID, project.FrameRate, timeline.Restore(tl))

	logger.Info("project opened",
		logger.String("projectId", projectID),
		logger.String("sessionId", sess.ID),
		logger.Bool("restoredFromAutosave", restored),
	)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": sess.ID,
		"timeline":  tl,
		"restored":  restored,
	})
}

// CloseSessionHandler commits the session's timeline to MySQL, clears the
// Redis autosave and tears the session down.
func (h *APIHandler) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	sess, err := h.sessionFor(r, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	// The save runs on the session loop itself: a terminal operation may
	// hold the loop, and it guarantees no mutation interleaves with it.
	if err := sess.Do(func() error {
		return h.projectRepo.SaveTimeline(r.Context(), sess.ProjectID, sess.Model.Timeline())
	}); err != nil {
		writeError(w, err)
		return
	}
	if err := h.snapCache.DropSnapshot(r.Context(), sess.ProjectID); err != nil {
		logger.Warn("failed to drop autosave snapshot", logger.ErrorField(err))
	}

	h.dropHub(sessionID)
	h.sessions.Close(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
