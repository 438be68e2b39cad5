package api

import (
	"backend/internal/domain"
	"backend/internal/service"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type BattleHandler struct {
	battleService service.BattleService
}

func NewBattleHandler(battleService service.BattleService) *BattleHandler {
	return &BattleHandler{battleService: battleService}
}

type startBattleRequest struct {
	CityNumber int `json:"cityNumber"`
}

// battleActionRequest の damage は後方互換のために受けるだけの申告値。
// 境界チェックだけ行い、効果の計算には一切使わない。
type battleActionRequest struct {
	Action string   `json:"action"`
	Damage *float64 `json:"damage"`
}

type opponentView struct {
	Name  string `json:"name"`
	MaxHP int    `json:"maxHp"`
}

type turnView struct {
	Turn       int    `json:"turn"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	Amount     int    `json:"amount"`
	AvatarHP   int    `json:"avatarHp"`
	OpponentHP int    `json:"opponentHp"`
}

type battleView struct {
	ID              string       `json:"id"`
	CityNumber      int          `json:"cityNumber"`
	Opponent        opponentView `json:"opponent"`
	AvatarHP        int          `json:"avatarHp"`
	AvatarMaxHP     int          `json:"avatarMaxHp"`
	OpponentHP      int          `json:"opponentHp"`
	Turn            int          `json:"turn"`
	Status          string       `json:"status"`
	SpecialCooldown int          `json:"specialCooldown"`
	Log             []turnView   `json:"log"`
	CreatedAt       time.Time    `json:"createdAt"`
	EndedAt         *time.Time   `json:"endedAt,omitempty"`
}

func newBattleView(b *domain.Battle) battleView {
	log := make([]turnView, 0, len(b.Log))
	for _, e := range b.Log {
		log = append(log, turnView{
			Turn:       e.Turn,
			Actor:      e.Actor,
			Action:     e.Action,
			Amount:     e.Amount,
			AvatarHP:   e.AvatarHP,
			OpponentHP: e.OpponentHP,
		})
	}
	return battleView{
		ID:              b.ID,
		CityNumber:      b.CityNumber,
		Opponent:        opponentView{Name: b.Opponent.Name, MaxHP: b.Opponent.MaxHP},
		AvatarHP:        b.AvatarHP,
		AvatarMaxHP:     b.AvatarMaxHP,
		OpponentHP:      b.OpponentHP,
		Turn:            b.Turn,
		Status:          b.Status,
		SpecialCooldown: b.SpecialCooldown,
		Log:             log,
		CreatedAt:       b.CreatedAt,
		EndedAt:         b.EndedAt,
	}
}

func (h *BattleHandler) Start(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	var req startBattleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", nil)
	}
	battle, err := h.battleService.Start(c.Request().Context(), userID, req.CityNumber)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, APIResponse{Success: true, Battle: newBattleView(battle)})
}

func (h *BattleHandler) SubmitAction(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	battleID := c.Param("battleID")
	var req battleActionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if req.Damage != nil && (*req.Damage < 0 || *req.Damage > 1000) {
		return fail(c, http.StatusBadRequest, "request validation failed", []domain.FieldError{
			{Field: "damage", Message: "must be a number between 0 and 1000"},
		})
	}
	battle, err := h.battleService.SubmitAction(c.Request().Context(), userID, battleID, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Battle: newBattleView(battle)})
}

func (h *BattleHandler) Abandon(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	battle, err := h.battleService.Abandon(c.Request().Context(), userID, c.Param("battleID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Battle: newBattleView(battle)})
}

func (h *BattleHandler) Get(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	battle, err := h.battleService.GetForUser(c.Request().Context(), userID, c.Param("battleID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Battle: newBattleView(battle)})
}
