package server

import (
	"fmt"
	"net/http"
	"strconv"

	"Bt1Cut/core/drag"
	"Bt1Cut/core/timeline"
	"Bt1Cut/core/view"
	"Bt1Cut/model"

	"github.com/gorilla/mux"
)

// GetTimelineHandler 返回会话当前的完整时间线状态
func (h *APIHandler) GetTimelineHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	// The response is encoded on the session loop so the encoder never
	// races a mutation.
	if err := sess.Do(func() error {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"timeline": sess.Model.Timeline(),
			"playback": string(sess.Playback.Status()),
		})
		return nil
	}); err != nil {
		writeError(w, err)
	}
}

// AddTrackHandler 新增轨道
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Type model.MediaType `json:"type"`
		Name string          `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var trackID string
	if err := sess.Do(func() error {
		var err error
		trackID, err = sess.Model.AddTrack(req.Type, req.Name)
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"trackId": trackID})
}

// RemoveTrackHandler 删除轨道及其全部片段
func (h *APIHandler) RemoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		return sess.Model.RemoveTrack(vars["trackId"])
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// AddClipHandler 在轨道上放置片段
func (h *APIHandler) AddClipHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Type      model.MediaType `json:"type"`
		Name      string          `json:"name"`
		StartTime float64         `json:"startTime"`
		Duration  float64         `json:"duration"`
		MediaRef  string          `json:"mediaRef"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var clipID string
	if err := sess.Do(func() error {
		var err error
		clipID, err = sess.Model.AddClip(vars["trackId"], model.Clip{
			Type:      req.Type,
			Name:      req.Name,
			StartTime: req.StartTime,
			Duration:  req.Duration,
			MediaRef:  req.MediaRef,
		})
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"clipId": clipID})
}

// MoveClipHandler 直接移动片段（不经过拖拽），可跨轨道
func (h *APIHandler) MoveClipHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		TargetTrackID string  `json:"targetTrackId"`
		NewStart      float64 `json:"newStart"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target := req.TargetTrackID
	if target == "" {
		target = vars["trackId"]
	}

	if err := sess.Do(func() error {
		return sess.Model.MoveClip(vars["trackId"], target, vars["clipId"], req.NewStart)
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// UpdateClipHandler 修改片段属性，省略的字段保持不变
func (h *APIHandler) UpdateClipHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req timeline.ClipUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		return sess.Model.UpdateClip(vars["trackId"], vars["clipId"], req)
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteClipHandler 删除片段
func (h *APIHandler) DeleteClipHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		return sess.Model.DeleteClip(vars["trackId"], vars["clipId"])
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SelectClipHandler 选中或取消选中片段
func (h *APIHandler) SelectClipHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Selected bool `json:"selected"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		return sess.Model.SelectClip(vars["trackId"], vars["clipId"], req.Selected)
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ZoomHandler applies an anchored zoom: the timeline point under pointerPx
// stays put while the scale moves by factor.
func (h *APIHandler) ZoomHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		PointerPx float64 `json:"pointerPx"`
		Factor    float64 `json:"factor"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var zoom, offset float64
	if err := sess.Do(func() error {
		sess.ZoomPan.ZoomAt(req.PointerPx, req.Factor)
		zoom, offset = sess.Model.Zoom(), sess.Model.Offset()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"zoom": zoom, "offset": offset})
}

// PanHandler 水平滚动时间线
func (h *APIHandler) PanHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		DeltaPx float64 `json:"deltaPx"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var offset float64
	if err := sess.Do(func() error {
		sess.ZoomPan.Pan(req.DeltaPx)
		offset = sess.Model.Offset()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"offset": offset})
}

// ViewportHandler 客户端窗口大小变化时更新可视宽度
func (h *APIHandler) ViewportHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Width float64 `json:"width"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		sess.ZoomPan.SetViewportWidth(req.Width)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RulerHandler returns the tick marks for the visible window at the current
// zoom, ready to draw.
func (h *APIHandler) RulerHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	width := h.cfg.ViewportWidth
	if q := r.URL.Query().Get("width"); q != "" {
		if parsed, err := strconv.ParseFloat(q, 64); err == nil && parsed > 0 {
			width = parsed
		}
	}

	var ticks []view.Tick
	if err := sess.Do(func() error {
		ticks = view.Ruler(sess.Model, width)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ticks": ticks})
}

// DragGrabHandler 开始拖拽一个片段
func (h *APIHandler) DragGrabHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		TrackID     string  `json:"trackId"`
		ClipID      string  `json:"clipId"`
		PointerTime float64 `json:"pointerTime"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		return sess.Drag.Grab(req.TrackID, req.ClipID, req.PointerTime)
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dragging"})
}

// DragMoveHandler returns the snapped preview position for the pointer. The
// model is untouched; the client draws the ghost clip at the returned start.
func (h *APIHandler) DragMoveHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		PointerTime float64 `json:"pointerTime"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var start float64
	if err := sess.Do(func() error {
		var err error
		start, err = sess.Drag.Move(req.PointerTime)
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"start": start})
}

// DragDropHandler 提交拖拽。落点冲突时片段留在原位，Moved为false。
func (h *APIHandler) DragDropHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		TargetTrackID string  `json:"targetTrackId"`
		PointerTime   float64 `json:"pointerTime"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var result drag.Result
	dropErr := sess.Do(func() error {
		var err error
		result, err = sess.Drag.Drop(req.TargetTrackID, req.PointerTime)
		return err
	})
	if dropErr != nil {
		// A rejected drop still carries the snap-back position.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  dropErr.Error(),
			"result": result,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DragCancelHandler 放弃拖拽（例如按下Esc）
func (h *APIHandler) DragCancelHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		sess.Drag.Cancel()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// NudgeHandler 键盘微移：按帧或按秒移动片段
func (h *APIHandler) NudgeHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		TrackID  string `json:"trackId"`
		ClipID   string `json:"clipId"`
		Forward  bool   `json:"forward"`
		BySecond bool   `json:"bySecond"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := sess.Do(func() error {
		return sess.Drag.Nudge(req.TrackID, req.ClipID, req.Forward, req.BySecond)
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "nudged"})
}

// PlaybackHandler 播放控制：play、pause、stop
func (h *APIHandler) PlaybackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessionFor(r, vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	action := vars["action"]
	var status string
	var current float64
	if err := sess.Do(func() error {
		switch action {
		case "play":
			sess.Playback.Play()
		case "pause":
			sess.Playback.Pause()
		case "stop":
			sess.Playback.Stop()
		default:
			return fmt.Errorf("%w: unknown playback action %q", timeline.ErrValidation, action)
		}
		status = string(sess.Playback.Status())
		current = sess.Model.CurrentTime()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"currentTime": current,
	})
}

// SeekHandler 跳转播放头
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Time float64 `json:"time"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var current float64
	if err := sess.Do(func() error {
		sess.Playback.SeekTo(req.Time)
		current = sess.Model.CurrentTime()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"currentTime": current})
}
