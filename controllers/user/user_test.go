package userControllers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/auth"
	cartControllers "github.com/Samy440/ebookstore/controllers/cart"
	favoriteControllers "github.com/Samy440/ebookstore/controllers/favorite"
	orderControllers "github.com/Samy440/ebookstore/controllers/order"
	userControllers "github.com/Samy440/ebookstore/controllers/user"
	"github.com/Samy440/ebookstore/events"
	"github.com/Samy440/ebookstore/models"
	"github.com/Samy440/ebookstore/routes"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{}, &models.Book{}, &models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.Favorite{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pub, err := events.Connect("")
	if err != nil {
		t.Fatalf("disabled publisher: %v", err)
	}
	routes.SetupRoutes(r, db, pub)
	return r
}

func createUser(t *testing.T, db *gorm.DB, username string, admin bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword("swordfish")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: hash,
		IsActive:       true,
		IsAdmin:        admin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createBook(t *testing.T, db *gorm.DB, title, price string) models.Book {
	t.Helper()
	book := models.Book{
		Title:    title,
		Author:   "Author of " + title,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func bearerToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.IssueToken(&user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetMeNeverLeaksPasswordHash(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-test-secret")
	db := openTestDB(t)
	r := newTestRouter(t, db)
	user := createUser(t, db, "sam", false)

	w := do(r, http.MethodGet, "/users/me", bearerToken(t, user), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get me = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"username":"sam"`) {
		t.Fatalf("profile missing username: %s", body)
	}
	if strings.Contains(body, "hashed_password") || strings.Contains(body, "$2a$") {
		t.Fatalf("profile leaks password material: %s", body)
	}
}

func TestUpdateMe(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-test-secret")
	db := openTestDB(t)
	r := newTestRouter(t, db)
	user := createUser(t, db, "sam", false)
	other := createUser(t, db, "taken", false)

	w := do(r, http.MethodPatch, "/users/me", bearerToken(t, user),
		`{"username":"samuel","password":"new-secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update me = %d, body %s", w.Code, w.Body.String())
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Username != "samuel" {
		t.Fatalf("username = %q, want samuel", reloaded.Username)
	}
	if !auth.CheckPassword(reloaded.HashedPassword, "new-secret") {
		t.Fatalf("new password does not verify")
	}
	if auth.CheckPassword(reloaded.HashedPassword, "swordfish") {
		t.Fatalf("old password still verifies")
	}

	// Claiming another account's email is a conflict, not an overwrite.
	w = do(r, http.MethodPatch, "/users/me", bearerToken(t, user),
		`{"email":"`+other.Email+`"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email update = %d, want 409", w.Code)
	}
}

func TestAdminUserEndpointsAreRoleGated(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-test-secret")
	db := openTestDB(t)
	r := newTestRouter(t, db)
	standard := createUser(t, db, "sam", false)
	admin := createUser(t, db, "root", true)

	if w := do(r, http.MethodGet, "/admin/users", bearerToken(t, standard), ""); w.Code != http.StatusForbidden {
		t.Fatalf("standard /admin/users = %d, want 403", w.Code)
	}

	w := do(r, http.MethodGet, "/admin/users", bearerToken(t, admin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin /admin/users = %d", w.Code)
	}
	var users []models.User
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("user count = %d, want 2", len(users))
	}

	id := strconv.FormatUint(uint64(standard.ID), 10)
	if w := do(r, http.MethodGet, "/admin/users/"+id, bearerToken(t, admin), ""); w.Code != http.StatusOK {
		t.Fatalf("admin get user = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin/users/99999", bearerToken(t, admin), ""); w.Code != http.StatusNotFound {
		t.Fatalf("admin get missing user = %d, want 404", w.Code)
	}
}

func TestRoleAndActiveChangesBiteImmediately(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-test-secret")
	db := openTestDB(t)
	r := newTestRouter(t, db)
	user := createUser(t, db, "sam", false)
	admin := createUser(t, db, "root", true)
	userToken := bearerToken(t, user)

	id := strconv.FormatUint(uint64(user.ID), 10)

	// Promote: the pre-promotion token works because each request reads
	// the account, not the token's role claim.
	if w := do(r, http.MethodPatch, "/admin/users/"+id, bearerToken(t, admin), `{"is_admin":true}`); w.Code != http.StatusOK {
		t.Fatalf("promote = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin/users", userToken, ""); w.Code != http.StatusOK {
		t.Fatalf("promoted user /admin/users = %d, want 200", w.Code)
	}

	// Demote: same token, admin surface closes on the next request.
	if w := do(r, http.MethodPatch, "/admin/users/"+id, bearerToken(t, admin), `{"is_admin":false}`); w.Code != http.StatusOK {
		t.Fatalf("demote = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin/users", userToken, ""); w.Code != http.StatusForbidden {
		t.Fatalf("demoted user /admin/users = %d, want 403", w.Code)
	}

	// Deactivate: the token stops opening anything at all.
	if w := do(r, http.MethodPatch, "/admin/users/"+id, bearerToken(t, admin), `{"is_active":false}`); w.Code != http.StatusOK {
		t.Fatalf("deactivate = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/users/me", userToken, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated user /users/me = %d, want 401", w.Code)
	}
}

func TestDeleteUserCascadeKeepsOrders(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-test-secret")
	db := openTestDB(t)
	user := createUser(t, db, "sam", false)
	book := createBook(t, db, "Dune", "9.99")

	if _, _, err := cartControllers.UpsertLine(db, user.ID, book.ID, 1); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	if _, err := orderControllers.PlaceOrder(db, user.ID); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if _, _, err := cartControllers.UpsertLine(db, user.ID, book.ID, 2); err != nil {
		t.Fatalf("refill cart: %v", err)
	}
	if _, err := favoriteControllers.AddFavorite(db, user.ID, book.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	if err := userControllers.DeleteUserCascade(db, user.ID); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	counts := map[string]int64{}
	for name, query := range map[string]*gorm.DB{
		"users":      db.Model(&models.User{}).Where("id = ?", user.ID),
		"carts":      db.Model(&models.Cart{}).Where("user_id = ?", user.ID),
		"cart_items": db.Model(&models.CartItem{}),
		"favorites":  db.Model(&models.Favorite{}).Where("user_id = ?", user.ID),
	} {
		var n int64
		if err := query.Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		counts[name] = n
	}
	for name, n := range counts {
		if n != 0 {
			t.Fatalf("%s = %d rows after cascade, want 0", name, n)
		}
	}

	// Order history is retained under the vanished user id.
	var orders int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 1 {
		t.Fatalf("orders = %d after cascade, want 1", orders)
	}

	if err := userControllers.DeleteUserCascade(db, user.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second cascade err = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteUserOverHTTP(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-test-secret")
	db := openTestDB(t)
	r := newTestRouter(t, db)
	victim := createUser(t, db, "sam", false)
	admin := createUser(t, db, "root", true)

	id := strconv.FormatUint(uint64(victim.ID), 10)
	if w := do(r, http.MethodDelete, "/admin/users/"+id, bearerToken(t, victim), ""); w.Code != http.StatusForbidden {
		t.Fatalf("self-service admin delete = %d, want 403", w.Code)
	}
	if w := do(r, http.MethodDelete, "/admin/users/"+id, bearerToken(t, admin), ""); w.Code != http.StatusOK {
		t.Fatalf("admin delete = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/admin/users/"+id, bearerToken(t, admin), ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", w.Code)
	}
}
