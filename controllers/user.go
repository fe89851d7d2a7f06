package controllers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"eshop/models"
	"eshop/store"
)

type UserController struct {
	users store.UserStore
}

func NewUserController(users store.UserStore) *UserController {
	return &UserController{users: users}
}

type userRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := uc.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// CreateUser backs both POST /users and POST /users/register.
func (uc *UserController) CreateUser(c *gin.Context) {
	var body userRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	ctx := c.Request.Context()
	if _, err := uc.users.GetUserByEmail(ctx, body.Email); err == nil {
		respondErrorMessage(c, http.StatusConflict, "Email already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), 10)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(hashed),
		Phone:        body.Phone,
		IsAdmin:      body.IsAdmin,
		Street:       body.Street,
		Apartment:    body.Apartment,
		City:         body.City,
		Zip:          body.Zip,
		Country:      body.Country,
	}

	// The unique email index is the real guard; the pre-check above
	// only gives the common case a friendly answer without a write.
	if err := uc.users.InsertUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondErrorMessage(c, http.StatusConflict, "Email already registered")
			return
		}
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		Password  *string `json:"password"`
		Phone     *string `json:"phone"`
		IsAdmin   *bool   `json:"isAdmin"`
		Street    *string `json:"street"`
		Apartment *string `json:"apartment"`
		City      *string `json:"city"`
		Zip       *string `json:"zip"`
		Country   *string `json:"country"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := store.UserPatch{
		Name:      body.Name,
		Email:     body.Email,
		Phone:     body.Phone,
		IsAdmin:   body.IsAdmin,
		Street:    body.Street,
		Apartment: body.Apartment,
		City:      body.City,
		Zip:       body.Zip,
		Country:   body.Country,
	}
	if body.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*body.Password), 10)
		if err != nil {
			respondError(c, err)
			return
		}
		hash := string(hashed)
		patch.PasswordHash = &hash
	}

	updated, err := uc.users.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := uc.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User deleted")
}

func (uc *UserController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := uc.users.GetUserByEmail(c.Request.Context(), body.Email)
	if errors.Is(err, store.ErrNotFound) {
		respondErrorMessage(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		respondErrorMessage(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		respondErrorMessage(c, http.StatusInternalServerError, "JWT is not configured on the server")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":  user.ID.Hex(),
		"isAdmin": user.IsAdmin,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user.Email, "token": signed})
}

func (uc *UserController) GetUserCount(c *gin.Context) {
	count, err := uc.users.CountUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"userCount": count})
}
