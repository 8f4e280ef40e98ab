package handler

import (
	"log"
	"net/http"
	"strconv"

	"educhat/backend/internal/apperr"
	"educhat/backend/internal/models"
	"educhat/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the management/history surface and the websocket
// endpoint. Everything is behind bearer auth.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authed := r.Group("/", h.AuthRequired())

	authed.GET("/chats", h.ListChats)
	authed.GET("/chats/:id", h.GetChat)
	authed.POST("/chats/private", h.CreatePrivateChat)
	authed.POST("/chats/group", h.CreateGroupChat)
	authed.POST("/chats/:id/rename", h.RenameChat)
	authed.POST("/chats/:id/picture", h.ChangePicture)
	authed.POST("/chats/:id/participants", h.AddParticipants)
	authed.DELETE("/chats/:id/participants/:participantId", h.RemoveParticipant)
	authed.POST("/chats/:id/admins/:participantId", h.ElevateAdmin)
	authed.GET("/chats/:id/messages", h.ListMessages)
	authed.PATCH("/chats/:id/messages/:messageId", h.EditMessage)
	authed.DELETE("/chats/:id/messages/:messageId", h.DeleteMessage)

	authed.GET("/notifications", h.ListNotifications)
	authed.POST("/notifications/:id/read", h.MarkNotificationRead)

	authed.GET("/ws", h.ServeWebSocket)
}

func (h *Handler) ListChats(c *gin.Context) {
	summaries, err := h.Service.GetChatSummaries(currentPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

func (h *Handler) GetChat(c *gin.Context) {
	detail, err := h.Service.GetChatDetail(currentPrincipal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type createPrivateChatRequest struct {
	ParticipantEmail string               `json:"participant_email" binding:"required,email"`
	ParticipantKind  models.PrincipalKind `json:"participant_kind" binding:"required"`
}

func (h *Handler) CreatePrivateChat(c *gin.Context) {
	var req createPrivateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chat, err := h.Service.CreatePrivateChat(currentPrincipal(c), req.ParticipantEmail, req.ParticipantKind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat_id": chat.ID})
}

type createGroupChatRequest struct {
	Name    string                `json:"name" binding:"required"`
	Members []service.MemberInput `json:"members"`
}

func (h *Handler) CreateGroupChat(c *gin.Context) {
	var req createGroupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chat, err := h.Service.CreateGroupChat(currentPrincipal(c), req.Name, req.Members)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat_id": chat.ID})
}

type renameChatRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

func (h *Handler) RenameChat(c *gin.Context) {
	var req renameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.RenameChat(currentPrincipal(c), c.Param("id"), req.NewName); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ChangePicture stores the uploaded file through the opaque file-storage
// collaborator and records the returned URL. Authorization runs before the
// upload so a rejected caller leaves nothing behind in storage.
func (h *Handler) ChangePicture(c *gin.Context) {
	p := currentPrincipal(c)
	chatID := c.Param("id")
	if err := h.Service.AuthorizeChatEdit(p, chatID); err != nil {
		writeError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture file is required"})
		return
	}
	defer file.Close()

	url, err := h.Files.Save(c.Request.Context(), header.Filename, file)
	if err != nil {
		log.Printf("ERROR: Failed to store chat picture: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store picture"})
		return
	}

	if err := h.Service.ChangePicture(p, chatID, url); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"picture_url": url})
}

type addParticipantsRequest struct {
	Members []service.MemberInput `json:"members" binding:"required,min=1"`
}

func (h *Handler) AddParticipants(c *gin.Context) {
	var req addParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.AddParticipants(currentPrincipal(c), c.Param("id"), req.Members); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) RemoveParticipant(c *gin.Context) {
	if err := h.Service.RemoveParticipant(currentPrincipal(c), c.Param("id"), c.Param("participantId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ElevateAdmin(c *gin.Context) {
	if err := h.Service.ElevateAdmin(currentPrincipal(c), c.Param("id"), c.Param("participantId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListMessages(c *gin.Context) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 0)

	principal := currentPrincipal(c)
	messages, err := h.Service.ListMessages(principal, c.Param("id"), page, perPage)
	if err != nil {
		writeError(c, err)
		return
	}

	// Fetching a page is a read action: advance the reader's marker.
	if _, err := h.Service.MarkRead(principal, c.Param("id")); err != nil {
		log.Printf("ERROR: Failed to advance read state after page fetch: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "page": page})
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) EditMessage(c *gin.Context) {
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.EditMessage(currentPrincipal(c), c.Param("id"), c.Param("messageId"), req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	if err := h.Service.DeleteMessage(currentPrincipal(c), c.Param("id"), c.Param("messageId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.Service.Notifications(currentPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.Service.MarkNotificationRead(currentPrincipal(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, key string, def int) int {
	s := c.Query(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
