package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

const secret = "routes-secret"

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 3,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + tok
}

// Only requests rejected before reaching a service are exercised here, so
// the handlers are built without services.
func TestSetupRoutesGuardsMutations(t *testing.T) {
	router := chi.NewRouter()
	SetupRoutes(router,
		Options{JWTSecret: secret, AllowedOrigins: []string{"*"}},
		handlers.NewBracketHandler(nil),
		handlers.NewScheduleHandler(nil),
		handlers.NewWebSocketHandler(brackets.NewHub(nil), nil, nil),
	)

	tests := []struct {
		name   string
		method string
		target string
		auth   string
		status int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"save schedule anonymous", http.MethodPut, "/tournaments/1/schedules/2024-06-01", "", http.StatusUnauthorized},
		{"add slots as referee", http.MethodPost, "/tournaments/1/schedules/2024-06-01/venues/0/slots", bearer(t, "referee"), http.StatusForbidden},
		{"clear cell as player", http.MethodDelete, "/tournaments/1/schedules/2024-06-01/venues/0/cells/0/0", bearer(t, "player"), http.StatusForbidden},
		{"group matches anonymous", http.MethodPut, "/tournaments/1/categories/c1/groups/group-a/matches", "", http.StatusUnauthorized},
		{"group matches as player", http.MethodPut, "/tournaments/1/categories/c1/groups/group-a/matches", bearer(t, "player"), http.StatusForbidden},
		{"submission anonymous", http.MethodGet, "/tournaments/1/categories/c1/submission", "", http.StatusUnauthorized},
		{"ws bad id", http.MethodGet, "/ws/tournaments/abc", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader("{}"))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}
