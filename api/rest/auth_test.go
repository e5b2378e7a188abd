package rest_test

import (
	"net/http"
	"testing"

	"github.com/armoryops/armoryd/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_AutoRegistersOfficer(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "inspector.diaz",
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, model.RoleOfficer, resp["role"])

	var acc model.Account
	require.NoError(t, e.db.Where("username = ?", "inspector.diaz").First(&acc).Error)
	assert.Equal(t, model.RoleOfficer, acc.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "bob", "password": "correct1",
	})

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "bob", "password": "wrong123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_DisabledAccount(t *testing.T) {
	e := newEnv(t)
	acc, _ := e.account(t, "banned.user", model.RoleOfficer)
	require.NoError(t, e.db.Model(&acc).Update("status", 0).Error)

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "banned.user", "password": "pass1234",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_RoleTravelsInToken(t *testing.T) {
	e := newEnv(t)
	e.account(t, "q.armourer", model.RoleArmourer)

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "q.armourer", "password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RoleArmourer, decode(t, w)["role"])
}

func TestLogout_RevokesSession(t *testing.T) {
	e := newEnv(t)
	_, token := e.account(t, "alice", model.RoleOfficer)

	w := e.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The same token must no longer authenticate.
	w = e.do(http.MethodGet, "/api/armories", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	e := newEnv(t)
	_, token := e.account(t, "carol", model.RoleOfficer)

	w := e.do(http.MethodPost, "/api/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	newToken := decode(t, w)["token"].(string)
	require.NotEqual(t, token, newToken)

	// Old token is dead, new one works.
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/armories", token, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/armories", newToken, nil).Code)
}
