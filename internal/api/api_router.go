package api

import (
	"github.com/labstack/echo/v4"
)

func SetupRoutes(
	// 引数
	e *echo.Echo,
	healthHandler *HealthHandler,
	avatarHandler *AvatarHandler,
	battleHandler *BattleHandler,
	worldMapHandler *WorldMapHandler) {

	api := e.Group("/api")

	// ヘルスチェック
	api.GET("/livez", healthHandler.Livez)
	api.GET("/readyz", healthHandler.Readyz)
	api.GET("/healthz", healthHandler.Healthz)

	// アバター
	api.POST("/avatars", avatarHandler.Create)
	api.GET("/avatars/me", avatarHandler.Me)
	api.PATCH("/avatars/me", avatarHandler.Rename)

	// バトル
	api.POST("/battles", battleHandler.Start)
	api.GET("/battles/:battleID", battleHandler.Get)
	api.POST("/battles/:battleID/actions", battleHandler.SubmitAction)
	api.POST("/battles/:battleID/abandon", battleHandler.Abandon)

	// ワールドマップ
	api.GET("/worldmap", worldMapHandler.Map)
}
