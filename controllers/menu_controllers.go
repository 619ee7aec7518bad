package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	errMenuNotFound   = errors.New("menu item not found")
	errInvalidPrice   = errors.New("price must be a positive amount in cents")
	errInvalidMenuReq = errors.New("name and category_id are required")
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus lists the menu grouped by category order. Unavailable items are
// hidden unless ?all=true. ?category=<id> narrows to one category.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	q := mc.DB.Preload("Category").Select("menu_items.*").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Order("menu_categories.sort_order asc").Order("menu_items.name asc")
	if c.Query("all") != "true" {
		q = q.Where("menu_items.is_available = ?", true)
	}
	if cat := c.Query("category"); cat != "" {
		id, err := strconv.ParseUint(cat, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category ID"))
			return
		}
		q = q.Where("menu_items.category_id = ?", id)
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", items)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var item models.MenuItem
	if err := mc.DB.Preload("Category").First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errMenuNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

type menuRequest struct {
	CategoryID      uint   `json:"category_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           int64  `json:"price"`
	IsAvailable     *bool  `json:"is_available"`
	ImageURL        string `json:"image_url"`
	PreparationTime int    `json:"preparation_time"`
}

func (mc *MenuController) validate(req menuRequest) error {
	if strings.TrimSpace(req.Name) == "" || req.CategoryID == 0 {
		return errInvalidMenuReq
	}
	if req.Price <= 0 {
		return errInvalidPrice
	}
	var count int64
	if err := mc.DB.Model(&models.MenuCategory{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errCategoryNotFound
	}
	return nil
}

// save writes item and its outbox row in one transaction.
func (mc *MenuController) save(item *models.MenuItem, action string) error {
	return mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category").Save(item).Error; err != nil {
			return err
		}
		return services.RecordChange(tx, services.SourceMenuItems, item.ID, action)
	})
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := mc.validate(req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		CategoryID:      req.CategoryID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price,
		IsAvailable:     req.IsAvailable == nil || *req.IsAvailable,
		ImageURL:        req.ImageURL,
		PreparationTime: req.PreparationTime,
	}
	if err := mc.save(&item, models.ActionInsert); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("menu_id", item.ID).Info("menu item created")
	utils.RespondJSON(c, http.StatusCreated, "Menu created", item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errMenuNotFound)
		return
	}

	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := mc.validate(req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item.CategoryID = req.CategoryID
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Price = req.Price
	item.ImageURL = req.ImageURL
	item.PreparationTime = req.PreparationTime
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := mc.save(&item, models.ActionUpdate); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", item)
}

// SetAvailability toggles whether an item can be ordered.
func (mc *MenuController) SetAvailability(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var body struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errMenuNotFound)
		return
	}
	item.IsAvailable = *body.IsAvailable
	if err := mc.save(&item, models.ActionUpdate); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu availability updated", item)
}

// DeleteMenu removes an item. Past orders keep their denormalized copy.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.MenuItem{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errMenuNotFound
		}
		return services.RecordChange(tx, services.SourceMenuItems, id, models.ActionDelete)
	})
	if errors.Is(err, errMenuNotFound) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", nil)
}
