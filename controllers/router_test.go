package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/controllers"
	"eshop/models"
	"eshop/routes"
	"eshop/services"
	"eshop/store"
)

// envelope mirrors the response shape every handler emits.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	orderService := services.NewOrderService(mem, mem, mem, mem, nil)

	r := gin.New()
	routes.RegisterRoutes(r,
		controllers.NewCategoryController(mem),
		controllers.NewProductController(mem, mem, nil),
		controllers.NewOrderController(orderService),
		controllers.NewUserController(mem),
	)
	return r, mem
}

// newCachedTestServer is newTestServer with a live product cache
// backed by an in-process redis.
func newCachedTestServer(t *testing.T) (*gin.Engine, *store.Memory, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mem := store.NewMemory()
	orderService := services.NewOrderService(mem, mem, mem, mem, nil)

	r := gin.New()
	routes.RegisterRoutes(r,
		controllers.NewCategoryController(mem),
		controllers.NewProductController(mem, mem, cache),
		controllers.NewOrderController(orderService),
		controllers.NewUserController(mem),
	)
	return r, mem, mr
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// doForm sends multipart form fields, as the product write handlers
// expect.
func doForm(t *testing.T, r http.Handler, method, path string, fields map[string]string, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func signToken(t *testing.T, secret string, isAdmin bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":  primitive.NewObjectID().Hex(),
		"isAdmin": isAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminToken(t *testing.T) string {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	return signToken(t, "test-secret", true)
}

func insertCategory(t *testing.T, mem *store.Memory, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Icon: "tag", Color: "#abc"}
	require.NoError(t, mem.InsertCategory(context.Background(), &category))
	return category
}

func insertProduct(t *testing.T, mem *store.Memory, name string, price float64, categoryID primitive.ObjectID, featured bool) models.Product {
	t.Helper()
	product := models.Product{
		Name:         name,
		Description:  name + " description",
		Price:        price,
		CategoryID:   categoryID,
		CountInStock: 10,
		IsFeatured:   featured,
		DateCreated:  time.Now().UTC(),
	}
	require.NoError(t, mem.InsertProduct(context.Background(), &product))
	return product
}

func insertUser(t *testing.T, mem *store.Memory, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email}
	require.NoError(t, mem.InsertUser(context.Background(), &user))
	return user
}
