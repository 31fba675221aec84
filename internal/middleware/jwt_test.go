package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func authContext(e *echo.Echo, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuthValidToken(t *testing.T) {
	e := echo.New()
	raw := signToken(t, testSecret, jwt.MapClaims{"sub": 42, "role": "USER"})
	c, _ := authContext(e, "Bearer "+raw)

	handlerRan := false
	err := JWTAuth(testSecret)(func(c echo.Context) error {
		handlerRan = true
		// JSON numbers decode as float64.
		assert.Equal(t, float64(42), c.Get("user_id"))
		assert.Equal(t, "USER", c.Get("role"))
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, handlerRan)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	e := echo.New()
	c, rec := authContext(e, "")

	err := JWTAuth(testSecret)(func(echo.Context) error {
		t.Fatal("handler must not run without a token")
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	e := echo.New()
	raw := signToken(t, "other-secret", jwt.MapClaims{"sub": 42, "role": "USER"})
	c, rec := authContext(e, "Bearer "+raw)

	err := JWTAuth(testSecret)(func(echo.Context) error {
		t.Fatal("handler must not run with a forged token")
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role any) (*httptest.ResponseRecorder, bool) {
		c, rec := authContext(e, "")
		if role != nil {
			c.Set("role", role)
		}
		handlerRan := false
		err := RequireRole("USER", "ADMIN")(func(echo.Context) error {
			handlerRan = true
			return nil
		})(c)
		require.NoError(t, err)
		return rec, handlerRan
	}

	_, ran := run("USER")
	assert.True(t, ran)

	rec, ran := run("INTRUDER")
	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, ran = run(nil)
	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCallerIDFormats(t *testing.T) {
	e := echo.New()
	c, _ := authContext(e, "")

	assert.Equal(t, "anon", callerID(c))

	c.Set("user_id", float64(42))
	assert.Equal(t, "42", callerID(c))

	c.Set("user_id", "abc")
	assert.Equal(t, "abc", callerID(c))
}
