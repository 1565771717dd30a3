package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/auth"
	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
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

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, active, admin bool) models.User {
	t.Helper()
	user := models.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "x",
		IsActive:       active,
		IsAdmin:        admin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// identityEcho exposes whatever identity the middleware established so
// tests can assert on it.
func identityEcho(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "role": string(id.Role)})
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")
	db := openTestDB(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", middleware.ValidateToken(db), identityEcho)

	active := createUser(t, db, "sam", true, false)
	dormant := createUser(t, db, "rip", false, false)

	token := func(u models.User) string {
		s, err := auth.IssueToken(&u)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return s
	}

	if w := get(r, "/whoami", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no header = %d, want 401", w.Code)
	}
	if w := get(r, "/whoami", "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token = %d, want 401", w.Code)
	}
	if w := get(r, "/whoami", "Bearer "+token(active)); w.Code != http.StatusOK {
		t.Fatalf("valid token = %d, body %s", w.Code, w.Body.String())
	}
	// A bare token without the Bearer prefix still authenticates.
	if w := get(r, "/whoami", token(active)); w.Code != http.StatusOK {
		t.Fatalf("bare token = %d", w.Code)
	}
	if w := get(r, "/whoami", "Bearer "+token(dormant)); w.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated account = %d, want 401", w.Code)
	}

	// Token for an account deleted after issue is just an invalid token.
	ghost := createUser(t, db, "ghost", true, false)
	ghostToken := token(ghost)
	if err := db.Delete(&ghost).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if w := get(r, "/whoami", "Bearer "+ghostToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted account = %d, want 401", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")
	db := openTestDB(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/peek", middleware.OptionalAuth(db), identityEcho)

	admin := createUser(t, db, "root", true, true)
	adminToken, err := auth.IssueToken(&admin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	w := get(r, "/peek", "")
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != `{"role":"","user_id":0}` {
		t.Fatalf("anonymous identity = %s, want zero identity", body)
	}

	// A broken token downgrades to anonymous rather than failing the
	// request.
	if w := get(r, "/peek", "Bearer garbage"); w.Code != http.StatusOK {
		t.Fatalf("garbage token on optional route = %d, want 200", w.Code)
	}

	w = get(r, "/peek", "Bearer "+adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("admin = %d", w.Code)
	}
	want := `{"role":"admin","user_id":` + strconv.FormatUint(uint64(admin.ID), 10) + `}`
	if body := w.Body.String(); body != want {
		t.Fatalf("admin identity = %s, want %s", body, want)
	}
}

func TestCurrentIdentityOutsideAuthIsZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	id := middleware.CurrentIdentity(c)
	if id != (authz.Identity{}) {
		t.Fatalf("identity = %+v, want zero", id)
	}
}
