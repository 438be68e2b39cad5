package api

import (
	"backend/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type WorldMapHandler struct {
	worldMapService service.WorldMapService
}

func NewWorldMapHandler(worldMapService service.WorldMapService) *WorldMapHandler {
	return &WorldMapHandler{worldMapService: worldMapService}
}

type cityView struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	Difficulty int    `json:"difficulty"`
	Unlocked   bool   `json:"unlocked"`
	Cleared    bool   `json:"cleared"`
}

func (h *WorldMapHandler) Map(c echo.Context) error {
	userID, ok := requireCaller(c)
	if !ok {
		return unauthorized(c)
	}
	cities, err := h.worldMapService.Map(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	views := make([]cityView, 0, len(cities))
	for _, city := range cities {
		views = append(views, cityView{
			Number:     city.Number,
			Name:       city.Name,
			Difficulty: city.Difficulty,
			Unlocked:   city.Unlocked,
			Cleared:    city.Cleared,
		})
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Cities: views})
}
