package api

import (
	"backend/internal/domain"
	"backend/internal/service"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type AvatarHandler struct {
	avatarService service.AvatarService
}

func NewAvatarHandler(avatarService service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatarService: avatarService}
}

type createAvatarRequest struct {
	Name           string `json:"name"`
	CharacterClass string `json:"characterClass"`
}

type renameAvatarRequest struct {
	Name string `json:"name"`
}

type avatarView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CharacterClass string    `json:"characterClass"`
	Level          int       `json:"level"`
	Experience     int       `json:"experience"`
	HitPoints      int       `json:"hitPoints"`
	MaxHitPoints   int       `json:"maxHitPoints"`
	UnlockedCities []int     `json:"unlockedCities"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newAvatarView(a *domain.Avatar) avatarView {
	return avatarView{
		ID:             a.ID,
		Name:           a.Name,
		CharacterClass: a.CharacterClass,
		Level:          a.Level,
		Experience:     a.Experience,
		HitPoints:      a.HitPoints,
		MaxHitPoints:   a.MaxHitPoints,
		UnlockedCities: a.UnlockedCities,
		CreatedAt:      a.CreatedAt,
	}
}

func (h *AvatarHandler) Create(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	var req createAvatarRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", nil)
	}
	avatar, err := h.avatarService.Create(c.Request().Context(), userID, req.Name, req.CharacterClass)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, APIResponse{Success: true, Avatar: newAvatarView(avatar)})
}

func (h *AvatarHandler) Me(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	avatar, err := h.avatarService.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Avatar: newAvatarView(avatar)})
}

func (h *AvatarHandler) Rename(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	var req renameAvatarRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", nil)
	}
	avatar, err := h.avatarService.Rename(c.Request().Context(), userID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Avatar: newAvatarView(avatar)})
}
