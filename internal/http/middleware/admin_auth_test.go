package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fisiocan/booking-platform/internal/identity"
)

func signedAdminToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "staff@fisiocan.es",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func adminRequest(t *testing.T, mw func(http.Handler) http.Handler, token string, next http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	if next == nil {
		next = func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	}
	mw(next).ServeHTTP(rec, req)
	return rec
}

func TestAdminJWTEmptySecretDisablesAccess(t *testing.T) {
	rec := adminRequest(t, AdminJWT(""), signedAdminToken(t, "secret"), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminJWTMissingHeader(t *testing.T) {
	rec := adminRequest(t, AdminJWT("secret"), "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminJWTWrongKey(t *testing.T) {
	rec := adminRequest(t, AdminJWT("secret"), signedAdminToken(t, "other-secret"), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminJWTValidTokenSetsAdminIdentity(t *testing.T) {
	rec := adminRequest(t, AdminJWT("secret"), signedAdminToken(t, "secret"), func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminClaimsFromContext(r.Context())
		if !ok || claims.Subject != "staff@fisiocan.es" {
			t.Fatalf("claims in context = %+v (%v)", claims, ok)
		}
		if !identity.IsAdmin(r.Context()) {
			t.Fatal("expected admin flag in context")
		}
		w.WriteHeader(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
