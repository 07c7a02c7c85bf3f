package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"rewards/src/db"
	"rewards/src/middlewares"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

// testAuth stands in for AuthMiddleware so handler tests can pick their
// caller without minting tokens.
func testAuth(uid string, email string, admin bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("uid", uid)
		ctx.Set("email", email)
		ctx.Set("name", "Test User")
		ctx.Set("is_admin", admin)
	}
}

func (s *TestSuite) SetupSuite() {
	os.Setenv("API_ENV", "test")

	registerValidators()

	d, mock := db.NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock

	initApp()
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func txnColumns() []string {
	return []string{"id", "user_id", "offer_id", "offer_title", "offer_icon", "amount", "status", "proof_url", "notes", "reviewed_by", "reviewed_at", "created_at", "updated_at"}
}

func offerColumns() []string {
	return []string{"id", "title", "slug", "amount", "icon", "label", "description", "steps", "store_url", "active", "requires_proof", "created_at", "updated_at"}
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestOfferRoutes() {
	router := setupRouter()
	publicRoutes(router)

	s.Run("Should return the list of active offers", func() {
		s.Mock.ExpectQuery(`SELECT \* FROM "offers" WHERE active = \$1`).
			WillReturnRows(sqlmock.NewRows(offerColumns()).
				AddRow(uuid.New().String(), "Install FooApp", "install-fooapp", 5.0, nil, nil, nil, []byte(`["Install","Open"]`), nil, true, false, time.Now(), time.Now()))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/offers", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		body, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(body)
		assert.Equal(s.T(), int64(1), gjson.Get(sjson, "count").Int())
		assert.Equal(s.T(), "Install FooApp", gjson.Get(sjson, "data.0.title").String())
		assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject a bad offer id", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/offers/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestInitiateTransaction() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testAuth("u1", "someone@example.com", false))
	transactionHandlers(apiv1)

	offerId := uuid.New()

	s.Run("Should create a fresh pending attempt", func() {
		newId := uuid.New()
		s.Mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE \(user_id = \$1 AND offer_id = \$2\) AND status <> \$3`).
			WillReturnRows(sqlmock.NewRows(txnColumns()))
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(newId.String()))
		s.Mock.ExpectCommit()

		w := httptest.NewRecorder()
		body := `{"offer_title":"Install FooApp","amount":5}`
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/offers/%s/transactions", offerId), strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(rbytes)
		assert.Equal(s.T(), newId.String(), gjson.Get(sjson, "data.id").String())
		assert.Equal(s.T(), "pending", gjson.Get(sjson, "data.status").String())
		assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should re-open the rejected attempt for the same offer", func() {
		txnId := uuid.New()
		reviewed := time.Now().Add(-time.Hour)
		s.Mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE \(user_id = \$1 AND offer_id = \$2\) AND status <> \$3`).
			WillReturnRows(sqlmock.NewRows(txnColumns()).
				AddRow(txnId.String(), "u1", offerId.String(), "Install FooApp", nil, 5.0, "rejected", nil, nil, "admin1", reviewed, time.Now().Add(-2*time.Hour), reviewed))
		s.Mock.ExpectBegin()
		s.Mock.ExpectExec(`UPDATE "transactions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Mock.ExpectCommit()
		s.Mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(txnColumns()).
				AddRow(txnId.String(), "u1", offerId.String(), "Install FooApp", nil, 5.0, "pending", nil, nil, nil, nil, time.Now().Add(-2*time.Hour), time.Now()))

		w := httptest.NewRecorder()
		body := `{"offer_title":"Install FooApp","amount":5}`
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/offers/%s/transactions", offerId), strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(rbytes)
		assert.Equal(s.T(), txnId.String(), gjson.Get(sjson, "data.id").String())
		assert.Equal(s.T(), "pending", gjson.Get(sjson, "data.status").String())
		assert.False(s.T(), gjson.Get(sjson, "data.reviewed_at").Exists())
		assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject an invalid proof payload", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", fmt.Sprintf("/api/v1/transactions/%s/proof", uuid.New()), strings.NewReader(`{"proof_url":"not-a-url"}`))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestAdminReview() {
	router := setupRouter()
	admin := router.Group(apiPrefix + "/admin")
	admin.Use(testAuth("admin1", "admin@example.com", true))
	admin.Use(middlewares.AdminMiddleware)
	adminTransactionHandlers(admin)

	s.Run("Should mark the attempt paid with a review stamp", func() {
		txnId := uuid.New()
		stamped := time.Now()
		s.Mock.ExpectBegin()
		s.Mock.ExpectExec(`UPDATE "transactions" SET "reviewed_at"=\$1,"reviewed_by"=\$2,"status"=\$3,"updated_at"=\$4 WHERE id = \$5`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Mock.ExpectCommit()
		s.Mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(txnColumns()).
				AddRow(txnId.String(), "u1", uuid.New().String(), "Install FooApp", nil, 5.0, "paid", nil, nil, "admin1", stamped, time.Now(), time.Now()))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", fmt.Sprintf("/api/v1/admin/transactions/%s/status", txnId), strings.NewReader(`{"status":"paid"}`))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(rbytes)
		assert.Equal(s.T(), "paid", gjson.Get(sjson, "data.status").String())
		assert.Equal(s.T(), "admin1", gjson.Get(sjson, "data.reviewed_by").String())
		assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
	})

	s.Run("Should reject an unknown status", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", fmt.Sprintf("/api/v1/admin/transactions/%s/status", uuid.New()), strings.NewReader(`{"status":"refunded"}`))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 422, w.Code)
	})
}

func (s *TestSuite) TestProfileValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testAuth("u1", "someone@example.com", false))
	profileHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/me", strings.NewReader(`{"full_name":"Test User","upi_id":"not a upi id"}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestAdminGate() {
	router := setupRouter()
	admin := router.Group(apiPrefix + "/admin")
	admin.Use(testAuth("u1", "someone@example.com", false))
	admin.Use(middlewares.AdminMiddleware)
	adminTransactionHandlers(admin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/admin/transactions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestRealtimeUnavailableWithoutFeed() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testAuth("u1", "someone@example.com", false))
	realtimeHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/realtime/transactions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
