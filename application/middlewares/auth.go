package middlewares

import (
	"strings"

	apperrors "facemark.io/application/appErrors"
	"facemark.io/application/interfaces"
	"facemark.io/infrastructure/auth"
	"github.com/golang-jwt/jwt/v4"
)

// AdminAuthenticationMiddleware guards the administrative surface. The
// request must carry a bearer token signed by this service with an admin
// role claim.
func AdminAuthenticationMiddleware(ctx *interfaces.ApplicationContext[any]) (*interfaces.ApplicationContext[any], bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == nil || !strings.HasPrefix(*authHeader, "Bearer ") {
		apperrors.AuthenticationError(ctx.Ctx, "provide an auth token")
		return nil, false
	}

	token, err := auth.DecodeAuthToken(strings.TrimPrefix(*authHeader, "Bearer "))
	if err != nil {
		apperrors.AuthenticationError(ctx.Ctx, "this session has expired")
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "admin" {
		apperrors.AuthenticationError(ctx.Ctx, "unauthorized access")
		return nil, false
	}

	if ctx.Keys == nil {
		ctx.Keys = map[string]any{}
	}
	ctx.Keys["operator"] = claims["operator"]
	return ctx, true
}
