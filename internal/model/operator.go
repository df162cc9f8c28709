package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims токен оператора, Subject — имя оператора
type OperatorClaims struct {
	jwt.RegisteredClaims
}
