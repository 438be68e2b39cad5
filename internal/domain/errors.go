package domain

import "errors"

// ErrorKind はドメインエラーの分類。HTTP ステータスへの変換は api 層が行う。
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindState
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error は呼び出し側が分岐できる型付きドメインエラー。
// 永続化層の失敗はこの型に包まず、そのまま上へ返す。
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return e.Message
}

func NewValidationError(code, message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Fields: fields}
}

func NewNotFoundError(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflictError(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NewStateError(code, message string) *Error {
	return &Error{Kind: KindState, Code: code, Message: message}
}

// AsDomainError はラップされていても型付きエラーを取り出す。
func AsDomainError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func ErrAvatarNotFound() *Error {
	return NewNotFoundError("avatar_not_found", "avatar not found")
}

func ErrAvatarExists() *Error {
	return NewConflictError("avatar_exists", "avatar already exists for this user")
}

func ErrBattleNotFound() *Error {
	return NewNotFoundError("battle_not_found", "battle not found")
}

func ErrBattleAlreadyActive() *Error {
	return NewConflictError("battle_already_active", "an active battle already exists for this avatar")
}

func ErrBattleNotActive() *Error {
	return NewConflictError("battle_not_active", "battle is not active")
}

func ErrTurnConflict() *Error {
	return NewConflictError("turn_conflict", "another action was resolved first, retry with current state")
}

func ErrInvalidCity() *Error {
	return NewValidationError("invalid_city", "city number is out of range or not unlocked",
		FieldError{Field: "cityNumber", Message: "must be an unlocked city between 1 and 10"})
}

func ErrInvalidAction() *Error {
	return NewValidationError("invalid_action", "action must be one of attack, defend, special, heal",
		FieldError{Field: "action", Message: "must be one of attack, defend, special, heal"})
}

// ErrNotOwner は 404 相当で返す。他人のバトルIDの存在を漏らさないため。
func ErrNotOwner() *Error {
	return NewNotFoundError("not_owner", "battle not found")
}

func ErrSpecialOnCooldown() *Error {
	return NewStateError("special_on_cooldown", "special is still on cooldown")
}
