package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/cart"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/ordering"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	errMenuUnavailable = errors.New("menu item is not available")
	errTableChoice     = errors.New("provide either table_id or qr_code")
)

// SessionController exposes the customer's ordering session: table choice, cart,
// order placement and the payment widget callbacks.
type SessionController struct {
	DB        *gorm.DB
	Sessions  services.SessionStore
	Submitter *ordering.Submitter
	Tables    *services.TableDirectory
}

func NewSessionController(db *gorm.DB, sessions services.SessionStore, sub *ordering.Submitter, tables *services.TableDirectory) *SessionController {
	return &SessionController{DB: db, Sessions: sessions, Submitter: sub, Tables: tables}
}

type sessionView struct {
	*ordering.Session
	CartTotal      int64  `json:"cart_total"`
	CartTotalLabel string `json:"cart_total_formatted"`
}

func viewOf(s *ordering.Session) sessionView {
	return sessionView{Session: s, CartTotal: s.Total(), CartTotalLabel: utils.FormatCurrency(s.Total())}
}

// load locks and returns the caller's session, creating one on first use. The
// lock is held until the returned release func runs, so one user's requests
// cannot interleave between Load and Save.
func (sc *SessionController) load(c *gin.Context) (*ordering.Session, func(), bool) {
	me, ok := currentUser(c)
	if !ok {
		return nil, nil, false
	}
	ctx := c.Request.Context()
	release, err := sc.Sessions.Lock(ctx, me.UserID)
	if err != nil {
		respondServiceError(c, err)
		return nil, nil, false
	}
	s, err := sc.Sessions.Load(ctx, me.UserID)
	if errors.Is(err, services.ErrSessionNotFound) {
		s = ordering.NewSession(me.UserID, me.Email, me.Role)
	} else if err != nil {
		release()
		respondServiceError(c, err)
		return nil, nil, false
	}
	s.Email = me.Email
	s.Role = me.Role
	return s, release, true
}

func (sc *SessionController) save(c *gin.Context, s *ordering.Session, message string, code int) {
	if err := sc.Sessions.Save(c.Request.Context(), s); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, code, message, viewOf(s))
}

func (sc *SessionController) GetSession(c *gin.Context) {
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	utils.RespondJSON(c, http.StatusOK, "Ordering session", viewOf(s))
}

// ResetSession discards the session. Not allowed while a payment is pending.
func (sc *SessionController) ResetSession(c *gin.Context) {
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	if s.State == ordering.StateAwaitingPayment {
		respondServiceError(c, ordering.ErrOrderInFlight)
		return
	}
	if err := sc.Sessions.Delete(c.Request.Context(), s.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Ordering session cleared", viewOf(ordering.NewSession(s.UserID, s.Email, s.Role)))
}

func (sc *SessionController) resolveTable(ctx context.Context, tableID uint, qr string) (*models.Table, error) {
	switch {
	case tableID != 0 && qr == "":
		t, err := sc.Tables.Get(ctx, tableID)
		if err != nil {
			return nil, err
		}
		if t.Status != models.TableAvailable {
			return nil, services.ErrTableUnavailable
		}
		return t, nil
	case tableID == 0 && qr != "":
		return sc.Tables.ResolveQR(ctx, qr)
	}
	return nil, errTableChoice
}

// SelectTable picks a table by id or by scanned QR payload.
func (sc *SessionController) SelectTable(c *gin.Context) {
	var body struct {
		TableID uint   `json:"table_id"`
		QRCode  string `json:"qr_code"`
		Guests  int    `json:"guests" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	if s.State == ordering.StatePaid {
		s = ordering.NewSession(s.UserID, s.Email, s.Role)
	}

	table, err := sc.resolveTable(c.Request.Context(), body.TableID, body.QRCode)
	if errors.Is(err, errTableChoice) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := sc.Submitter.SelectTable(s, *table, body.Guests); err != nil {
		respondServiceError(c, err)
		return
	}
	sc.save(c, s, "Table selected", http.StatusOK)
}

func (sc *SessionController) AddItem(c *gin.Context) {
	var body struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()

	var item models.MenuItem
	if err := sc.DB.WithContext(c.Request.Context()).First(&item, body.MenuItemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errMenuNotFound)
		return
	}
	if !item.IsAvailable {
		utils.RespondError(c, http.StatusUnprocessableEntity, errMenuUnavailable)
		return
	}

	if err := sc.Submitter.AddItem(s, cart.ItemFromMenu(item)); err != nil {
		respondServiceError(c, err)
		return
	}
	sc.save(c, s, "Item added to cart", http.StatusOK)
}

func (sc *SessionController) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	if err := sc.Submitter.UpdateQuantity(s, id, body.Quantity); err != nil {
		respondServiceError(c, err)
		return
	}
	sc.save(c, s, "Cart updated", http.StatusOK)
}

func (sc *SessionController) RemoveItem(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	if err := sc.Submitter.RemoveItem(s, id); err != nil {
		respondServiceError(c, err)
		return
	}
	sc.save(c, s, "Item removed from cart", http.StatusOK)
}

// PlaceOrder persists a pending order and hands the amount to the payment widget.
func (sc *SessionController) PlaceOrder(c *gin.Context) {
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	order, err := sc.Submitter.PlaceOrder(c.Request.Context(), s)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := sc.Sessions.Save(c.Request.Context(), s); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed, awaiting payment", gin.H{
		"order":            order,
		"reference":        order.Reference(),
		"amount":           order.TotalAmount,
		"amount_formatted": utils.FormatCurrency(order.TotalAmount),
		"session":          viewOf(s),
	})
}

// PaymentSuccess is called by the client after the payment widget approves.
func (sc *SessionController) PaymentSuccess(c *gin.Context) {
	var body struct {
		PaymentID string `json:"payment_id" binding:"required"`
		Provider  string `json:"provider"`
		Details   string `json:"details"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()

	conf, err := sc.Submitter.OnPaymentSuccess(c.Request.Context(), s, ordering.PaymentDetails{
		ID:       body.PaymentID,
		Provider: body.Provider,
		Raw:      body.Details,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := sc.Sessions.Save(c.Request.Context(), s); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment confirmed", gin.H{
		"confirmation":    conf,
		"total_formatted": utils.FormatCurrency(conf.Total),
	})
}

// PaymentError is called when the widget reports a failure or cancellation.
func (sc *SessionController) PaymentError(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.Message == "" {
		body.Message = "payment failed"
	}
	s, release, ok := sc.load(c)
	if !ok {
		return
	}
	defer release()
	if err := sc.Submitter.OnPaymentError(c.Request.Context(), s, body.Message); err != nil {
		respondServiceError(c, err)
		return
	}
	sc.save(c, s, "Payment failed, your cart has been kept", http.StatusOK)
}
