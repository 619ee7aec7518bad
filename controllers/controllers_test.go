package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/ordering"
	"github.com/yeremiapane/restaurant-ordering/router"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type testApp struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	router *gin.Engine
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.InfoLogger.SetOutput(bytes.NewBuffer(nil))

	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	mailer := services.NewMailer("", 0, "", "", "noreply@example.com", log)
	tables := services.NewTableDirectory(db)
	orders := services.NewOrderStore(db)
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	r := router.SetupRouter(router.Deps{
		DB:           db,
		Tokens:       tokens,
		Hub:          kds.NewHub(log),
		Tables:       tables,
		Orders:       orders,
		Reservations: services.NewReservationService(db, 90*time.Minute, mailer, log),
		Revenue:      services.NewRevenueService(orders),
		Sessions:     services.NewMemorySessionStore(),
		Submitter:    ordering.NewSubmitter(orders, mailer, log),
	})
	return &testApp{db: db, tokens: tokens, router: r}
}

// userToken creates an account with the given role and returns a bearer token for it.
func (a *testApp) userToken(t *testing.T, email string, role models.Role) (string, models.User) {
	t.Helper()
	user := models.User{Name: email, Email: email, Password: "unused", Role: role}
	require.NoError(t, a.db.Create(&user).Error)
	token, err := a.tokens.GenerateToken(user.ID, user.Email, role.String())
	require.NoError(t, err)
	return token, user
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func seedMenu(t *testing.T, db *gorm.DB) (models.MenuItem, models.MenuItem, models.MenuItem) {
	t.Helper()
	category := models.MenuCategory{Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)
	burger := models.MenuItem{CategoryID: category.ID, Name: "Burger", Price: 1250, IsAvailable: true}
	soda := models.MenuItem{CategoryID: category.ID, Name: "Soda", Price: 800, IsAvailable: true}
	special := models.MenuItem{CategoryID: category.ID, Name: "Chef special", Price: 4200, IsAvailable: true}
	require.NoError(t, db.Create(&burger).Error)
	require.NoError(t, db.Create(&soda).Error)
	require.NoError(t, db.Create(&special).Error)
	require.NoError(t, db.Model(&special).Update("is_available", false).Error)
	return burger, soda, special
}

func seedTable(t *testing.T, db *gorm.DB, number, capacity int) models.Table {
	t.Helper()
	table := models.Table{Number: number, Capacity: capacity, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]string{
		"name":     "Test User",
		"email":    "Test@Example.com",
		"password": "password123",
	}
	w := app.do(t, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token     string `json:"token"`
		UserRole  string `json:"user_role"`
		Dashboard string `json:"dashboard"`
	}
	decode(t, w, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "customer", login.UserRole)
	assert.Equal(t, "/dashboard", login.Dashboard)

	w = app.do(t, http.MethodGet, "/api/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.User
	decode(t, w, &profile)
	assert.Equal(t, "test@example.com", profile.Email)
	assert.NotContains(t, w.Body.String(), "password123")

	w = app.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/profile", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t)
	customer, _ := app.userToken(t, "customer@example.com", models.RoleCustomer)
	staff, _ := app.userToken(t, "staff@example.com", models.RoleStaff)
	chef, _ := app.userToken(t, "chef@example.com", models.RoleChef)
	admin, _ := app.userToken(t, "admin@example.com", models.RoleAdmin)

	cases := []struct {
		path  string
		token string
		code  int
	}{
		{"/api/staff/tables", "", http.StatusUnauthorized},
		{"/api/staff/tables", customer, http.StatusForbidden},
		{"/api/staff/tables", chef, http.StatusForbidden},
		{"/api/staff/tables", staff, http.StatusOK},
		{"/api/staff/tables", admin, http.StatusOK},
		{"/api/kitchen/orders", staff, http.StatusForbidden},
		{"/api/kitchen/orders", chef, http.StatusOK},
		{"/api/kitchen/orders", admin, http.StatusOK},
		{"/api/admin/stats", staff, http.StatusForbidden},
		{"/api/admin/stats", chef, http.StatusForbidden},
		{"/api/admin/stats", admin, http.StatusOK},
		{"/api/backoffice/orders", customer, http.StatusForbidden},
		{"/api/backoffice/orders", chef, http.StatusOK},
		{"/api/backoffice/orders", staff, http.StatusOK},
	}
	for _, tc := range cases {
		w := app.do(t, http.MethodGet, tc.path, tc.token, nil)
		assert.Equal(t, tc.code, w.Code, "%s %q", tc.path, tc.token)
	}

	w := app.do(t, http.MethodGet, "/api/dashboard", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Dashboard   string          `json:"dashboard"`
		Permissions map[string]bool `json:"permissions"`
	}
	decode(t, w, &dash)
	assert.Equal(t, "/chef", dash.Dashboard)
	assert.True(t, dash.Permissions["run_kitchen"])
	assert.False(t, dash.Permissions["manage_tables"])
}

func TestOrderingFlow(t *testing.T) {
	app := newTestApp(t)
	burger, soda, special := seedMenu(t, app.db)
	table := seedTable(t, app.db, 3, 4)
	customer, user := app.userToken(t, "guest@example.com", models.RoleCustomer)
	chef, _ := app.userToken(t, "chef@example.com", models.RoleChef)
	admin, _ := app.userToken(t, "admin@example.com", models.RoleAdmin)

	var session struct {
		State     string `json:"state"`
		CartTotal int64  `json:"cart_total"`
		Label     string `json:"cart_total_formatted"`
		Cart      struct {
			Items []struct {
				MenuItemID uint `json:"menu_item_id"`
				Quantity   int  `json:"quantity"`
			} `json:"items"`
		} `json:"cart"`
	}

	// cart edits need a table
	w := app.do(t, http.MethodPost, "/api/session/items", customer, gin.H{"menu_item_id": burger.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(t, http.MethodPost, "/api/session/table", customer, gin.H{"table_id": table.ID, "guests": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(t, http.MethodPost, "/api/session/table", customer, gin.H{"qr_code": "table_3", "guests": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &session)
	assert.Equal(t, "table_selected", session.State)

	w = app.do(t, http.MethodPost, "/api/session/items", customer, gin.H{"menu_item_id": special.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	for _, id := range []uint{burger.ID, burger.ID, soda.ID} {
		w = app.do(t, http.MethodPost, "/api/session/items", customer, gin.H{"menu_item_id": id})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	decode(t, w, &session)
	assert.Equal(t, "ordering", session.State)
	assert.Equal(t, int64(3300), session.CartTotal)
	assert.Equal(t, "$33.00", session.Label)
	require.Len(t, session.Cart.Items, 2)
	assert.Equal(t, burger.ID, session.Cart.Items[0].MenuItemID)
	assert.Equal(t, 2, session.Cart.Items[0].Quantity)

	w = app.do(t, http.MethodPatch, fmt.Sprintf("/api/session/items/%d", soda.ID), customer, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(t, http.MethodPost, "/api/session/order", customer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var placed struct {
		Order  models.Order `json:"order"`
		Amount int64        `json:"amount"`
	}
	decode(t, w, &placed)
	assert.Equal(t, int64(3300), placed.Amount)
	assert.Equal(t, models.PaymentPending, placed.Order.PaymentStatus)

	// total is frozen while the payment widget is open
	w = app.do(t, http.MethodPost, "/api/session/items", customer, gin.H{"menu_item_id": soda.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = app.do(t, http.MethodPost, "/api/session/order", customer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = app.do(t, http.MethodDelete, "/api/session", customer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodPost, "/api/session/payment/error", customer, gin.H{"message": "card declined"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &session)
	assert.Equal(t, "ordering", session.State)
	assert.Equal(t, int64(3300), session.CartTotal)

	w = app.do(t, http.MethodPost, "/api/session/order", customer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &placed)

	w = app.do(t, http.MethodPost, "/api/session/payment/success", customer, gin.H{
		"payment_id": "PAY-123", "provider": "paypal", "details": `{"status":"COMPLETED"}`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid struct {
		Confirmation struct {
			OrderID uint  `json:"order_id"`
			Total   int64 `json:"total"`
		} `json:"confirmation"`
		TotalFormatted string `json:"total_formatted"`
	}
	decode(t, w, &paid)
	assert.Equal(t, placed.Order.ID, paid.Confirmation.OrderID)
	assert.Equal(t, int64(3300), paid.Confirmation.Total)
	assert.Equal(t, "$33.00", paid.TotalFormatted)

	w = app.do(t, http.MethodGet, "/api/session", customer, nil)
	decode(t, w, &session)
	assert.Equal(t, "paid", session.State)
	assert.Empty(t, session.Cart.Items)

	var stored models.Order
	require.NoError(t, app.db.Preload("Items").First(&stored, placed.Order.ID).Error)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Len(t, stored.Items, 2)

	// another customer cannot see the order
	other, _ := app.userToken(t, "other@example.com", models.RoleCustomer)
	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", stored.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", stored.ID), customer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPatch, fmt.Sprintf("/api/kitchen/orders/%d/preparation", stored.ID), chef, gin.H{"status": "preparing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.do(t, http.MethodPatch, fmt.Sprintf("/api/kitchen/orders/%d/preparation", stored.ID), chef, gin.H{"status": "burnt"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/kitchen/notifications?order_id=%d", stored.ID), chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []models.Notification
	decode(t, w, &notes)
	assert.NotEmpty(t, notes)

	w = app.do(t, http.MethodGet, "/api/admin/revenue", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var revenue services.RevenueSummary
	decode(t, w, &revenue)
	assert.Equal(t, int64(3300), revenue.Daily)
	assert.Equal(t, int64(3300), revenue.Monthly)

	w = app.do(t, http.MethodGet, "/api/admin/payments/metrics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics services.PaymentMetrics
	decode(t, w, &metrics)
	assert.Equal(t, int64(1), metrics.SuccessfulPayments)
	assert.Equal(t, int64(1), metrics.FailedPayments)
}

func TestPlaceOrderWithEmptyCartWritesNothing(t *testing.T) {
	app := newTestApp(t)
	table := seedTable(t, app.db, 1, 2)
	customer, _ := app.userToken(t, "guest@example.com", models.RoleCustomer)

	w := app.do(t, http.MethodPost, "/api/session/order", customer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(t, http.MethodPost, "/api/session/table", customer, gin.H{"table_id": table.ID, "guests": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/api/session/order", customer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var count int64
	require.NoError(t, app.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	w = app.do(t, http.MethodPost, "/api/session/payment/success", customer, gin.H{"payment_id": "PAY-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConcurrentPlaceOrderCreatesOneOrder(t *testing.T) {
	app := newTestApp(t)
	burger, _, _ := seedMenu(t, app.db)
	table := seedTable(t, app.db, 1, 4)
	customer, _ := app.userToken(t, "guest@example.com", models.RoleCustomer)

	w := app.do(t, http.MethodPost, "/api/session/table", customer, gin.H{"table_id": table.ID, "guests": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/api/session/items", customer, gin.H{"menu_item_id": burger.ID})
	require.Equal(t, http.StatusOK, w.Code)

	const attempts = 4
	recorders := make([]*httptest.ResponseRecorder, attempts)
	requests := make([]*http.Request, attempts)
	for i := range requests {
		req, err := http.NewRequest(http.MethodPost, "/api/session/order", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+customer)
		requests[i] = req
		recorders[i] = httptest.NewRecorder()
	}

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app.router.ServeHTTP(recorders[i], requests[i])
		}(i)
	}
	wg.Wait()

	codes := map[int]int{}
	for _, rec := range recorders {
		codes[rec.Code]++
	}
	assert.Equal(t, map[int]int{http.StatusCreated: 1, http.StatusConflict: attempts - 1}, codes)

	var count int64
	require.NoError(t, app.db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLatePaymentAfterOrderExpired(t *testing.T) {
	app := newTestApp(t)
	burger, _, _ := seedMenu(t, app.db)
	table := seedTable(t, app.db, 1, 4)
	customer, _ := app.userToken(t, "guest@example.com", models.RoleCustomer)

	w := app.do(t, http.MethodPost, "/api/session/table", customer, gin.H{"table_id": table.ID, "guests": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/api/session/items", customer, gin.H{"menu_item_id": burger.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/api/session/order", customer, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var placed struct {
		Order models.Order `json:"order"`
	}
	decode(t, w, &placed)

	require.NoError(t, app.db.Model(&models.Order{}).Where("id = ?", placed.Order.ID).
		UpdateColumn("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	log, _ := test.NewNullLogger()
	expired, err := services.NewOrderReaper(app.db, 30*time.Minute, time.Minute, log).RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint{placed.Order.ID}, expired)

	w = app.do(t, http.MethodPost, "/api/session/payment/success", customer, gin.H{"payment_id": "PAY-LATE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, app.db.First(&order, placed.Order.ID).Error)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.Status)

	var session struct {
		State string `json:"state"`
	}
	decode(t, app.do(t, http.MethodGet, "/api/session", customer, nil), &session)
	assert.Equal(t, "paid", session.State)
}

func TestDeleteTableWithOrdersConflicts(t *testing.T) {
	app := newTestApp(t)
	table := seedTable(t, app.db, 5, 2)
	admin, _ := app.userToken(t, "admin@example.com", models.RoleAdmin)

	require.NoError(t, app.db.Create(&models.Order{
		TableID: table.ID, UserID: 1, TotalAmount: 800,
		Status: models.OrderConfirmed, PaymentStatus: models.PaymentPaid,
		PreparationStatus: models.PreparationPending,
	}).Error)

	path := fmt.Sprintf("/api/admin/tables/%d", table.ID)
	w := app.do(t, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w, nil).Message, "has orders")
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, path, admin, nil).Code)
}

func TestReservations(t *testing.T) {
	app := newTestApp(t)
	table := seedTable(t, app.db, 5, 4)
	owner, _ := app.userToken(t, "owner@example.com", models.RoleCustomer)
	stranger, _ := app.userToken(t, "stranger@example.com", models.RoleCustomer)
	staff, _ := app.userToken(t, "staff@example.com", models.RoleStaff)

	book := func(token, at string, guests int) *httptest.ResponseRecorder {
		return app.do(t, http.MethodPost, "/api/reservations", token, gin.H{
			"table_id":         table.ID,
			"reservation_date": "2030-05-01",
			"reservation_time": at,
			"guests":           guests,
		})
	}

	w := book(owner, "19:00", 2)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res models.Reservation
	decode(t, w, &res)
	assert.Equal(t, models.ReservationConfirmed, res.Status)
	assert.Equal(t, 90, res.DurationMinutes)

	assert.Equal(t, http.StatusConflict, book(stranger, "19:30", 2).Code)
	assert.Equal(t, http.StatusConflict, book(stranger, "18:00", 2).Code)
	assert.Equal(t, http.StatusCreated, book(stranger, "20:30", 2).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, book(stranger, "12:00", 5).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, book(stranger, "7pm", 2).Code)

	w = app.do(t, http.MethodGet, "/api/reservations", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Reservation
	decode(t, w, &mine)
	assert.Len(t, mine, 1)

	cancel := fmt.Sprintf("/api/reservations/%d/cancel", res.ID)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPatch, cancel, stranger, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPatch, cancel, owner, nil).Code)
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPatch, cancel, staff, nil).Code)

	// the freed slot can be booked again
	assert.Equal(t, http.StatusCreated, book(stranger, "19:00", 2).Code)

	w = app.do(t, http.MethodGet, "/api/staff/reservations?date=2030-05-01", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var day []models.Reservation
	decode(t, w, &day)
	assert.Len(t, day, 3)

	w = app.do(t, http.MethodGet, "/api/staff/reservations?date=01-05-2030", staff, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTableDirectoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	seedTable(t, app.db, 1, 2)
	big := seedTable(t, app.db, 2, 8)
	staff, _ := app.userToken(t, "staff@example.com", models.RoleStaff)

	w := app.do(t, http.MethodGet, "/api/tables/available?guests=4", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables []models.Table
	decode(t, w, &tables)
	require.Len(t, tables, 1)
	assert.Equal(t, big.ID, tables[0].ID)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/tables/resolve?code=table_2", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/tables/resolve?code=table_99", "", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, app.do(t, http.MethodGet, "/api/tables/resolve?code=garbage", "", nil).Code)

	status := fmt.Sprintf("/api/staff/tables/%d/status", big.ID)
	w = app.do(t, http.MethodPatch, status, staff, gin.H{"status": "occupied", "notes": "walk-in"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.do(t, http.MethodPatch, status, staff, gin.H{"status": "on-fire"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// occupied tables no longer resolve from a QR scan
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodGet, "/api/tables/resolve?code=table_2", "", nil).Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/staff/tables/%d/history", big.ID), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.TableStatusHistory
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "walk-in", history[0].Notes)
}

func TestAdminTablesAndPrintables(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.userToken(t, "admin@example.com", models.RoleAdmin)

	w := app.do(t, http.MethodPost, "/api/admin/tables", admin, gin.H{"table_number": 7, "capacity": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var table models.Table
	decode(t, w, &table)
	assert.Equal(t, models.TableAvailable, table.Status)

	w = app.do(t, http.MethodPost, "/api/admin/tables", admin, gin.H{"table_number": 7, "capacity": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = app.do(t, http.MethodPost, "/api/admin/tables", admin, gin.H{"table_number": 8, "capacity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/admin/tables/%d/qr.png", table.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = app.do(t, http.MethodGet, "/api/admin/tables/qr-codes.pdf", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = app.do(t, http.MethodGet, "/api/admin/revenue/chart.png", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = app.do(t, http.MethodGet, "/api/admin/orders/export.xlsx", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	path := fmt.Sprintf("/api/admin/tables/%d", table.ID)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, path, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, path, admin, nil).Code)
}

func TestMenuAdministration(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.userToken(t, "admin@example.com", models.RoleAdmin)

	w := app.do(t, http.MethodPost, "/api/admin/categories", admin, gin.H{"name": "Drinks"})
	require.Equal(t, http.StatusCreated, w.Code)
	var category models.MenuCategory
	decode(t, w, &category)

	w = app.do(t, http.MethodPost, "/api/admin/categories", admin, gin.H{"name": "Drinks"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodPost, "/api/admin/menu", admin, gin.H{"category_id": category.ID, "name": "Lemonade", "price": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/admin/menu", admin, gin.H{"category_id": category.ID, "name": "Lemonade", "price": 450})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.MenuItem
	decode(t, w, &item)
	assert.True(t, item.IsAvailable)

	var menu []models.MenuItem
	decode(t, app.do(t, http.MethodGet, "/api/menu", "", nil), &menu)
	assert.Len(t, menu, 1)

	w = app.do(t, http.MethodPatch, fmt.Sprintf("/api/admin/menu/%d/availability", item.ID), admin, gin.H{"is_available": false})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, app.do(t, http.MethodGet, "/api/menu", "", nil), &menu)
	assert.Empty(t, menu)

	catPath := fmt.Sprintf("/api/admin/categories/%d", category.ID)
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodDelete, catPath, admin, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/menu/%d", item.ID), admin, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, catPath, admin, nil).Code)

	var changes int64
	require.NoError(t, app.db.Model(&models.DBChange{}).Where("table_name = ?", services.SourceMenuItems).Count(&changes).Error)
	assert.Equal(t, int64(3), changes)
}
