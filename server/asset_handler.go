package server

import (
	"fmt"
	"net/http"

	"Bt1Cut/core/timeline"
	"Bt1Cut/logger"

	"github.com/gorilla/mux"
)

// RegisterAssetHandler probes a staged media file and registers it as a
// reusable asset. Clips reference assets by ID through their mediaRef.
func (h *APIHandler) RegisterAssetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		SourcePath string `json:"sourcePath"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SourcePath == "" {
		writeError(w, fmt.Errorf("%w: sourcePath is required", timeline.ErrValidation))
		return
	}

	asset, err := h.mediaSvc.Register(r.Context(), userID, req.SourcePath)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("media asset registered",
		logger.String("assetId", asset.ID),
		logger.Int64("userId", userID),
	)
	writeJSON(w, http.StatusCreated, asset)
}

// ListAssetsHandler 列出当前用户的素材库
func (h *APIHandler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	assets, err := h.assetRepo.ListByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// GetAssetHandler 按ID取素材元数据，优先命中Redis缓存
func (h *APIHandler) GetAssetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	assetID := mux.Vars(r)["id"]
	asset, err := h.mediaSvc.Resolve(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	if asset == nil || asset.UserID != userID {
		writeError(w, fmt.Errorf("%w: asset %s", timeline.ErrNotFound, assetID))
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// DeleteAssetHandler 删除素材记录
func (h *APIHandler) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	assetID := mux.Vars(r)["id"]
	asset, err := h.assetRepo.GetByID(r.Context(), assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	if asset == nil || asset.UserID != userID {
		writeError(w, fmt.Errorf("%w: asset %s", timeline.ErrNotFound, assetID))
		return
	}

	if err := h.mediaSvc.Remove(r.Context(), asset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
