package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
	jwtClaimRoles  = "roles"
)

var (
	ErrNoCaller     = errors.New("no authenticated caller in context")
	ErrInvalidClaim = errors.New("invalid token claim")
)

// rolePrecedence lists roles from most to least privileged.
var rolePrecedence = []models.UserRole{
	models.RoleSuperAdmin,
	models.RoleClubAdmin,
	models.RoleReferee,
	models.RolePlayer,
}

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, ErrNoCaller
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var id int
	switch v := claims[jwtClaimUserID].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s %v is not an integer", ErrInvalidClaim, jwtClaimUserID, v)
		}
		id = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidClaim, jwtClaimUserID, v)
		}
		id = n
	case nil:
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidClaim, jwtClaimUserID)
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidClaim, jwtClaimUserID, v)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidClaim, jwtClaimUserID, id)
	}
	return id, nil
}

// GetUserRoleFromContext returns the caller's role. A token carries either a
// single "role" or a "roles" list; from a list the most privileged known role
// is used, so a club admin who also plays still edits schedules.
func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	var held []string
	switch v := claims[jwtClaimRole].(type) {
	case string:
		held = append(held, v)
	case nil:
	default:
		return "", fmt.Errorf("%w: %s has type %T", ErrInvalidClaim, jwtClaimRole, v)
	}
	if list, ok := claims[jwtClaimRoles].([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				held = append(held, s)
			}
		}
	}
	if len(held) == 0 {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidClaim, jwtClaimRole)
	}

	best := -1
	for _, s := range held {
		role := models.UserRole(strings.ToLower(strings.TrimSpace(s)))
		for i, known := range rolePrecedence {
			if role == known && (best < 0 || i < best) {
				best = i
			}
		}
	}
	if best < 0 {
		return "", fmt.Errorf("%w: no known role in %q", ErrInvalidClaim, held)
	}
	return rolePrecedence[best], nil
}

// CallerRole is the caller's role, or "" for anonymous callers and tokens
// without a usable role.
func CallerRole(ctx context.Context) models.UserRole {
	role, err := GetUserRoleFromContext(ctx)
	if err != nil {
		return ""
	}
	return role
}
