package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/classboard/backend/models"
)

type AuthHandler struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(db *gorm.DB, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: secret, tokenTTL: ttl}
}

func (h *AuthHandler) signJWT(sub uint, role, name string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(h.tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.jwtSecret))
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
		}
		return jsonError(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	token, err := h.signJWT(user.ID, user.Role, user.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "TOKEN_SIGNING_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// POST /admin/users
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req struct {
		Username string `json:"username" validate:"required,max=60"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required,oneof=admin teacher"`
		Name     string `json:"name" validate:"omitempty,max=120"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_FAILED"})
	}
	user := models.User{
		Username: req.Username,
		Password: string(hash),
		Role:     req.Role,
		Name:     req.Name,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_EXISTS"})
		}
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// PUT /profile/password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, _ := c.Get("user_id").(uint)
	var req struct {
		Current string `json:"current" validate:"required"`
		New     string `json:"new" validate:"required,min=8"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNKNOWN_USER"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Current)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "WRONG_PASSWORD"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.New), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_FAILED"})
	}
	if err := h.db.Model(&user).Update("password", string(hash)).Error; err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EnsureAdmin creates the initial admin account when the users table is
// empty, so a fresh install is reachable.
func EnsureAdmin(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Username: username,
		Password: string(hash),
		Role:     "admin",
		Name:     "Administrator",
	}).Error
}
