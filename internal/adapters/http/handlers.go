package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const sessionUserKey = "user_id"

type JoinRoomRequest struct {
	UserID       string `json:"user_id" binding:"omitempty,max=64"`
	ConnectionID string `json:"connection_id" binding:"omitempty,max=64"`
	Language     string `json:"language"`
}

type LeaveRoomResponse struct {
	UserID domain.UserID `json:"user_id"`
	RoomID domain.RoomID `json:"room_id,omitempty"`
	Status string        `json:"status"`
}

type OfferRequest struct {
	UserID string `json:"user_id" binding:"required,max=64"`
	SDP    string `json:"sdp" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=offer"`
}

type handlers struct {
	orch *orch.Orchestrator
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (h *handlers) joinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid join request")
		return
	}
	res, err := h.orch.Join(orch.JoinParams{UserID: req.UserID, ConnectionID: req.ConnectionID, Language: req.Language})
	switch {
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrConnectionInUse):
		abortError(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, domain.ErrUserIDTooLong):
		abortError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("join failed")
		abortError(c, http.StatusInternalServerError, "join failed")
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionUserKey, string(res.UserID))
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) leaveRoom(c *gin.Context) {
	uid := domain.UserID(c.Param("user_id"))
	roomID, err := h.orch.Leave(uid)
	if errors.Is(err, orch.ErrUnknownUser) {
		abortError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, err.Error())
		return
	}

	sess := sessions.Default(c)
	if sess.Get(sessionUserKey) == string(uid) {
		sess.Delete(sessionUserKey)
		_ = sess.Save()
	}
	c.JSON(http.StatusOK, LeaveRoomResponse{UserID: uid, RoomID: roomID, Status: "left"})
}

func (h *handlers) roomStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Stats())
}

func (h *handlers) user(c *gin.Context) {
	v, ok := h.orch.UserView(domain.UserID(c.Param("user_id")))
	if !ok {
		abortError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) me(c *gin.Context) {
	uid, _ := sessions.Default(c).Get(sessionUserKey).(string)
	if uid == "" {
		abortError(c, http.StatusNotFound, "no user in session")
		return
	}
	v, ok := h.orch.UserView(domain.UserID(uid))
	if !ok {
		abortError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": domain.Languages()})
}

func (h *handlers) offer(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid offer")
		return
	}
	ans, err := h.orch.Offer(domain.UserID(req.UserID), webrtc.SessionDescription{
		Type: webrtc.NewSDPType(req.Type),
		SDP:  req.SDP,
	})
	if errors.Is(err, orch.ErrUnknownUser) {
		abortError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("user", req.UserID).Msg("offer failed")
		abortError(c, http.StatusInternalServerError, "offer failed")
		return
	}
	c.JSON(http.StatusOK, ans)
}
