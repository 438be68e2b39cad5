package api

import (
	"backend/internal/domain"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse は全エンドポイント共通のレスポンス外形。
// 失敗時は message と、フィールド単位の errors を返す。
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	Avatar  any                 `json:"avatar,omitempty"`
	Battle  any                 `json:"battle,omitempty"`
	Cities  any                 `json:"cities,omitempty"`
}

func fail(c echo.Context, status int, message string, fields []domain.FieldError) error {
	return c.JSON(status, APIResponse{Success: false, Message: message, Errors: fields})
}

// respondError はドメインエラーをHTTPステータスへ写像する。
// 型付きでないエラーは永続化層などの想定外なので 500 で返し、詳細は漏らさない。
func respondError(c echo.Context, err error) error {
	if de, ok := domain.AsDomainError(err); ok {
		switch de.Kind {
		case domain.KindValidation:
			return fail(c, http.StatusBadRequest, de.Message, de.Fields)
		case domain.KindNotFound:
			return fail(c, http.StatusNotFound, de.Message, nil)
		case domain.KindConflict:
			return fail(c, http.StatusConflict, de.Message, nil)
		case domain.KindState:
			return fail(c, http.StatusUnprocessableEntity, de.Message, nil)
		}
	}
	c.Logger().Error(err)
	return fail(c, http.StatusInternalServerError, "internal server error", nil)
}

// callerID は上流の認証レイヤが載せるユーザIDを取り出す。
func callerID(c echo.Context) string {
	return c.Request().Header.Get("X-User-ID")
}

func requireCaller(c echo.Context) (string, bool) {
	id := callerID(c)
	if id == "" {
		return "", false
	}
	return id, true
}

func unauthorized(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "missing caller identity", nil)
}
