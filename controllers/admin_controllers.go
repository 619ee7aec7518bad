package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type AdminController struct {
	DB      *gorm.DB
	Revenue *services.RevenueService
	Tables  *services.TableDirectory
}

func NewAdminController(db *gorm.DB, revenue *services.RevenueService, tables *services.TableDirectory) *AdminController {
	return &AdminController{DB: db, Revenue: revenue, Tables: tables}
}

type countRow struct {
	Label string
	Total int64
}

func (ac *AdminController) countBy(model interface{}, column string) (map[string]int64, error) {
	var rows []countRow
	err := ac.DB.Model(model).Select(column + " AS label, COUNT(*) AS total").Group(column).Scan(&rows).Error
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Total
	}
	return out, err
}

// GetDashboardStats summarizes revenue, tables, orders and payments.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	revenue, err := ac.Revenue.Summary(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tables, err := ac.countBy(&models.Table{}, "status")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	preparation, err := ac.countBy(&models.Order{}, "preparation_status")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	payments, err := services.CollectPaymentMetrics(ctx, ac.DB)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var staff int64
	if err := ac.DB.Model(&models.User{}).Where("role <> ?", models.RoleCustomer).Count(&staff).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"revenue":     revenue,
		"tables":      tables,
		"preparation": preparation,
		"payments":    payments,
		"staff_count": staff,
	})
}

func (ac *AdminController) GetRevenue(c *gin.Context) {
	summary, err := ac.Revenue.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue summary", summary)
}

// GetRevenueChart renders the last seven days as a PNG.
func (ac *AdminController) GetRevenueChart(c *gin.Context) {
	png, err := ac.Revenue.Chart(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondFile(c, http.StatusOK, "image/png", "", png)
}

func (ac *AdminController) GetPaymentMetrics(c *gin.Context) {
	m, err := services.CollectPaymentMetrics(c.Request.Context(), ac.DB)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment metrics", m)
}

// GetTableQRCode returns one table's QR code as a PNG.
func (ac *AdminController) GetTableQRCode(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := ac.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	png, err := services.TableQRCode(table.Number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondFile(c, http.StatusOK, "image/png", "", png)
}

// GetTableQRCodesPDF returns a printable sheet of every table's QR code.
func (ac *AdminController) GetTableQRCodesPDF(c *gin.Context) {
	tables, err := ac.Tables.List(c.Request.Context(), "", 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pdf, err := services.TableQRCodesPDF(tables)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondFile(c, http.StatusOK, "application/pdf", "table-qr-codes.pdf", pdf)
}

// ExportOrders downloads orders as a spreadsheet. ?payment_status= filters.
func (ac *AdminController) ExportOrders(c *gin.Context) {
	q := ac.DB.WithContext(c.Request.Context()).Preload("Items").Preload("Table").Order("created_at asc")
	if ps := c.Query("payment_status"); ps != "" {
		q = q.Where("payment_status = ?", ps)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	book, err := services.OrdersWorkbook(orders)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondFile(c, http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "orders.xlsx", book)
}
