package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type TableController struct {
	Tables *services.TableDirectory
}

func NewTableController(tables *services.TableDirectory) *TableController {
	return &TableController{Tables: tables}
}

// GetAllTables lists tables. ?status= and ?guests= filter the list.
func (tc *TableController) GetAllTables(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.ValidTableStatus(status) {
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidStatus)
		return
	}
	tc.list(c, status)
}

// GetAvailableTables is the booking and ordering view: available tables that
// seat ?guests=.
func (tc *TableController) GetAvailableTables(c *gin.Context) {
	tc.list(c, models.TableAvailable)
}

func (tc *TableController) list(c *gin.Context, status string) {
	guests := 0
	if g := c.Query("guests"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil || n < 1 {
			utils.RespondError(c, http.StatusBadRequest, errInvalidGuests)
			return
		}
		guests = n
	}

	tables, err := tc.Tables.List(c.Request.Context(), status, guests)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table", table)
}

// ResolveQR maps a scanned payload (?code=table_5) to an available table.
func (tc *TableController) ResolveQR(c *gin.Context) {
	table, err := tc.Tables.ResolveQR(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table found", table)
}

type tableRequest struct {
	Number   int    `json:"table_number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := tc.Tables.ByNumber(c.Request.Context(), req.Number); err == nil {
		utils.RespondError(c, http.StatusConflict, errTableNumberTaken)
		return
	}

	table := models.Table{Number: req.Number, Capacity: req.Capacity, Status: req.Status}
	if err := tc.Tables.Create(c.Request.Context(), &table); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("table_number", table.Number).Info("table created")
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Number < 0 || req.Capacity < 0 {
		respondServiceError(c, services.ErrInvalidTable)
		return
	}
	if req.Number > 0 {
		if other, err := tc.Tables.ByNumber(c.Request.Context(), req.Number); err == nil && other.ID != id {
			utils.RespondError(c, http.StatusConflict, errTableNumberTaken)
			return
		}
	}

	table, err := tc.Tables.Update(c.Request.Context(), id, req.Number, req.Capacity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// UpdateTableStatus is the staff action; it records a status history row.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.UpdateStatus(c.Request.Context(), id, body.Status, me.UserID, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("table_id", table.ID).WithField("status", table.Status).Info("table status changed")
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

func (tc *TableController) GetTableHistory(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if _, err := tc.Tables.Get(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	history, err := tc.Tables.History(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status history", history)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Tables.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("table_id", id).Info("table deleted")
	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}
