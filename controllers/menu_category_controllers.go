package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	errCategoryNotFound = errors.New("category not found")
	errCategoryInUse    = errors.New("category still has menu items")
	errCategoryExists   = errors.New("category already exists")
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mcc.DB.Order("sort_order asc").Order("name asc").Find(&categories).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

type categoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

func (mcc *MenuCategoryController) nameTaken(name string, except uint) bool {
	var count int64
	mcc.DB.Model(&models.MenuCategory{}).Where("name = ? AND id <> ?", name, except).Count(&count)
	return count > 0
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if mcc.nameTaken(name, 0) {
		utils.RespondError(c, http.StatusConflict, errCategoryExists)
		return
	}

	category := models.MenuCategory{Name: name, SortOrder: body.SortOrder}
	if err := mcc.DB.Create(&category).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (mcc *MenuCategoryController) GetCategoryByID(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category detail", category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	name := strings.TrimSpace(body.Name)
	if mcc.nameTaken(name, id) {
		utils.RespondError(c, http.StatusConflict, errCategoryExists)
		return
	}
	category.Name = name
	category.SortOrder = body.SortOrder
	if err := mcc.DB.Save(&category).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory refuses while menu items still point at the category.
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errCategoryNotFound)
		return
	}
	var items int64
	if err := mcc.DB.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&items).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if items > 0 {
		utils.RespondError(c, http.StatusConflict, errCategoryInUse)
		return
	}
	if err := mcc.DB.Delete(&category).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
