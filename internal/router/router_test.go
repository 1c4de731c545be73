package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/polyphene/recs-monorepo/internal/database"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return Setup(db), db
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w, body := doGet(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetAccountBalances(t *testing.T) {
	r, db := setupRouter(t)

	require.NoError(t, logic.NewBalanceLogic(db).Credit("0xalice", 1, "100"))

	w, body := doGet(t, r, "/api/v1/accounts/0xalice/balances")
	assert.Equal(t, http.StatusOK, w.Code)

	balances, ok := body["balances"].([]interface{})
	require.True(t, ok)
	require.Len(t, balances, 1)
	first := balances[0].(map[string]interface{})
	assert.Equal(t, "100", first["amount"])
}

func TestGetAccountRolesUnknownAddress(t *testing.T) {
	r, _ := setupRouter(t)

	// 未知地址返回全false角色而不是404
	w, body := doGet(t, r, "/api/v1/accounts/0xunknown/roles")
	assert.Equal(t, http.StatusOK, w.Code)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, user["is_admin"])
	assert.Equal(t, false, user["is_minter"])
}

func TestGetTokenEvents(t *testing.T) {
	r, db := setupRouter(t)

	tokenId := "7"
	require.NoError(t, logic.NewEventLogic(db).UpsertEvent(&model.EventModel{
		Chain:           model.ChainFilecoin,
		TokenId:         &tokenId,
		EventType:       model.EventTypeMint,
		Data:            `{}`,
		BlockHeight:     "10",
		TransactionHash: "0xabc",
		LogIndex:        0,
	}))

	w, body := doGet(t, r, "/api/v1/tokens/7/events")
	assert.Equal(t, http.StatusOK, w.Code)

	events, ok := body["events"].([]interface{})
	require.True(t, ok)
	assert.Len(t, events, 1)
}

func TestGetCollectionNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := doGet(t, r, "/api/v1/collections/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := doGet(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
