package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/armoryops/armoryd/api/rest"
	"github.com/armoryops/armoryd/audit"
	"github.com/armoryops/armoryd/availability"
	"github.com/armoryops/armoryd/cache"
	"github.com/armoryops/armoryd/config"
	"github.com/armoryops/armoryd/inventory"
	mw "github.com/armoryops/armoryd/middleware"
	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/scheduler"
	"github.com/armoryops/armoryd/staging"
	"github.com/armoryops/armoryd/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// env wires the full HTTP surface against in-memory backends, mirroring
// the route table in main.
type env struct {
	db      *gorm.DB
	cache   cache.Cache
	pubsub  cache.PubSub
	sec     config.SecurityConfig
	manager *staging.Manager
	router  *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}

	inv := inventory.NewService(db, logger)
	store := availability.NewStore(db)
	manager := staging.NewManager(store, inv, ps, config.StagingConfig{BatchTTL: time.Hour}, logger)
	auditor := audit.New(db, logger)
	t.Cleanup(func() { auditor.Stop(context.Background()) })
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	authH := rest.NewAuthHandler(db, c, sec)
	armoryH := rest.NewArmoryHandler(db, inv, store)
	catalogH := rest.NewCatalogHandler(db)
	stagingH := rest.NewStagingHandler(db, manager, auditor)
	caseH := rest.NewCaseHandler(db, auditor)
	adminH := rest.NewAdminHandler(db, manager, sched, auditor, logger)

	r := gin.New()
	r.Use(mw.TraceID())
	r.POST("/api/auth/login", authH.Login)

	api := r.Group("/api", mw.Auth(sec, c))
	api.POST("/auth/logout", authH.Logout)
	api.POST("/auth/refresh", authH.Refresh)

	api.GET("/armories", armoryH.List)
	api.POST("/armories", mw.RequireRole(model.RoleAdmin), armoryH.Create)
	api.GET("/armories/:id", armoryH.Get)
	api.GET("/armories/:id/inventory", armoryH.Inventory)
	api.GET("/armories/:id/availability", armoryH.Availability)

	api.GET("/catalog/weapons", catalogH.Weapons)
	api.GET("/catalog/ammunition", catalogH.Ammunition)
	api.GET("/catalog/equipment", catalogH.Equipment)

	api.POST("/armories/:id/batches", stagingH.CreateBatch)
	api.GET("/batches/:id", stagingH.GetBatch)
	api.POST("/batches/:id/lines", stagingH.AddLine)
	api.PATCH("/batches/:id/lines/:line_id", stagingH.UpdateLine)
	api.DELETE("/batches/:id/lines/:line_id", stagingH.RemoveLine)
	api.POST("/batches/:id/commit", mw.RequireRole(model.RoleAdmin, model.RoleArmourer), stagingH.Commit)

	api.GET("/cases", caseH.List)
	api.POST("/cases", caseH.Create)
	api.GET("/cases/:id", caseH.Get)
	api.PUT("/cases/:id/status", caseH.UpdateStatus)

	admin := api.Group("/admin", mw.RequireRole(model.RoleAdmin))
	admin.GET("/metrics", adminH.Metrics)
	admin.GET("/accounts", adminH.ListAccounts)
	admin.PUT("/accounts/:id/role", adminH.SetRole)
	admin.POST("/accounts/:id/ban", adminH.BanAccount)
	admin.GET("/scheduler", adminH.ListSchedulerTasks)

	return &env{db: db, cache: c, pubsub: ps, sec: sec, manager: manager, router: r}
}

// account creates an account with the given role and a live session token.
func (e *env) account(t *testing.T, username, role string) (model.Account, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	require.NoError(t, err)
	acc := model.Account{Username: username, PasswordHash: string(hash), Role: role, Status: 1}
	require.NoError(t, e.db.Create(&acc).Error)

	token, err := mw.GenerateToken(acc.ID, acc.Role, e.sec.JWTSecret, e.sec.JWTTTLH)
	require.NoError(t, err)
	require.NoError(t, e.cache.Set(context.Background(), "session:"+token, "1", time.Hour))
	return acc, token
}

func (e *env) armory(t *testing.T, name string) model.Armory {
	t.Helper()
	arm := model.Armory{Name: name}
	require.NoError(t, e.db.Create(&arm).Error)
	return arm
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
