package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errEmailTaken         = errors.New("email is already registered")
)

type UserController struct {
	DB     *gorm.DB
	Tokens *utils.TokenManager
}

func NewUserController(db *gorm.DB, tokens *utils.TokenManager) *UserController {
	return &UserController{DB: db, Tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

// createUser hashes the password and inserts the user.
func (uc *UserController) createUser(req registerRequest, role models.Role) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Password: string(hashed),
		Role:     role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Register signs up a customer. Staff accounts are created by an admin.
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.createUser(req, models.RoleCustomer)
	if errors.Is(err, errEmailTaken) {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("email", user.Email).Info("new customer registered")
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{"user_id": user.ID})
}

// Login checks the password and returns a JWT.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := uc.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := uc.Tokens.GenerateToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": user.Role,
		"dashboard": user.Role.Dashboard(),
	})
}

// Logout revokes the caller's token until it expires.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.CtxToken)
	exp, ok := c.Get(middlewares.CtxTokenExp)
	expiresAt, _ := exp.(time.Time)
	if token == "" || !ok {
		utils.RespondError(c, http.StatusUnauthorized, errUnauthorized)
		return
	}
	uc.Tokens.Blacklist(token, expiresAt)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	var user models.User
	if err := uc.DB.First(&user, me.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// Dashboard tells the client which dashboard the caller's role lands on.
func (uc *UserController) Dashboard(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard", gin.H{
		"role":      me.Role,
		"dashboard": me.Role.Dashboard(),
		"permissions": gin.H{
			"manage_tables":   me.Role.CanManageTables(),
			"run_kitchen":     me.Role.CanRunKitchen(),
			"see_all_orders":  me.Role.CanSeeAllOrders(),
			"administration":  me.Role.IsAdmin(),
			"realtime_events": me.Role.Realtime(),
		},
	})
}

// GetAllUsers lists users, optionally filtered by ?role=.
func (uc *UserController) GetAllUsers(c *gin.Context) {
	q := uc.DB.Order("id asc")
	if r := c.Query("role"); r != "" {
		role, err := models.ParseRole(r)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

// CreateStaff lets an admin create an account with any role.
func (uc *UserController) CreateStaff(c *gin.Context) {
	var req struct {
		registerRequest
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.createUser(req.registerRequest, role)
	if errors.Is(err, errEmailTaken) {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("email", user.Email).WithField("role", role).Info("account created by admin")
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

// UpdateRole changes a user's role. Existing tokens keep the old role until they expire.
func (uc *UserController) UpdateRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	if err := uc.DB.Model(&user).Update("role", role).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	user.Role = role
	utils.RespondJSON(c, http.StatusOK, "Role updated", user)
}
