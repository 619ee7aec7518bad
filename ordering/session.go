// Package ordering drives a customer's order from table selection to payment.
package ordering

import (
	"errors"

	"github.com/yeremiapane/restaurant-ordering/cart"
	"github.com/yeremiapane/restaurant-ordering/models"
)

// State of an ordering session.
type State string

const (
	StateNoTable         State = "no_table"
	StateTableSelected   State = "table_selected"
	StateOrdering        State = "ordering"
	StateAwaitingPayment State = "awaiting_payment"
	StatePaymentFailed   State = "payment_failed"
	StatePaid            State = "paid"
)

var (
	ErrUnauthenticated   = errors.New("you must be logged in to place an order")
	ErrNoTable           = errors.New("please select a table first")
	ErrEmptyCart         = errors.New("please add items to your cart before placing an order")
	ErrOrderInFlight     = errors.New("an order is already awaiting payment")
	ErrTableUnavailable  = errors.New("invalid or unavailable table")
	ErrNoCurrentOrder    = errors.New("no order is awaiting payment")
	ErrMissingEmail      = errors.New("user email is required to confirm payment")
	ErrInvalidTransition = errors.New("action not allowed in the current ordering state")
)

// TableRef is the part of a table an ordering session needs to remember.
type TableRef struct {
	ID       uint `json:"id"`
	Number   int  `json:"table_number"`
	Capacity int  `json:"capacity"`
}

// Session is one user's ordering flow. It is an explicit value: callers load it,
// pass it to the Submitter and store it back.
type Session struct {
	UserID uint        `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`

	State  State     `json:"state"`
	Table  *TableRef `json:"table,omitempty"`
	Guests int       `json:"guests,omitempty"`
	Cart   cart.Cart `json:"cart"`

	OrderID    uint   `json:"order_id,omitempty"`
	OrderTotal int64  `json:"order_total,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// NewSession starts a session for an authenticated (or anonymous, userID 0) user.
func NewSession(userID uint, email string, role models.Role) *Session {
	return &Session{UserID: userID, Email: email, Role: role, State: StateNoTable}
}

func (s *Session) editable() bool {
	return s.State == StateTableSelected || s.State == StateOrdering
}

// Total is the live cart total.
func (s *Session) Total() int64 { return s.Cart.Total() }
