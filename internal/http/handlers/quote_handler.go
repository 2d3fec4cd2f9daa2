// README: Quote handlers for detailed/simple quotes and lookup.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vanbook/internal/modules/pricing"
	"vanbook/internal/modules/quote"
	"vanbook/internal/types"
)

type QuoteHandler struct {
	quotes *quote.Service
}

func NewQuoteHandler(svc *quote.Service) *QuoteHandler {
	return &QuoteHandler{quotes: svc}
}

// Enum fields are free strings; unknown values fall back to safe defaults.
// Blank addresses are priced from the fallback estimate.
type createQuoteReq struct {
	PickupAddress   string     `json:"pickup_address" binding:"max=300"`
	DeliveryAddress string     `json:"delivery_address" binding:"max=300"`
	VanSize         string     `json:"van_size"`
	MoveAt          *time.Time `json:"move_at"`
	EstimatedHours  float64    `json:"estimated_hours" binding:"gte=0,lte=24"`
	Helpers         int        `json:"helpers" binding:"gte=0,lte=2"`
	PickupFloor     string     `json:"pickup_floor"`
	DeliveryFloor   string     `json:"delivery_floor"`
	PickupLift      bool       `json:"pickup_lift"`
	DeliveryLift    bool       `json:"delivery_lift"`
	Urgency         string     `json:"urgency"`
}

func (r createQuoteReq) toRequest() pricing.QuoteRequest {
	req := pricing.QuoteRequest{
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		VanSize:         pricing.ParseVanSize(r.VanSize),
		EstimatedHours:  r.EstimatedHours,
		Helpers:         r.Helpers,
		PickupFloor:     pricing.ParseFloorAccess(r.PickupFloor),
		DeliveryFloor:   pricing.ParseFloorAccess(r.DeliveryFloor),
		PickupLift:      r.PickupLift,
		DeliveryLift:    r.DeliveryLift,
		Urgency:         pricing.ParseUrgency(r.Urgency),
	}
	if r.MoveAt != nil {
		req.MoveAt = *r.MoveAt
	}
	return req
}

func (h *QuoteHandler) create(c *gin.Context) (*quote.Quote, bool) {
	var req createQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return nil, false
	}
	q, err := h.quotes.Create(c.Request.Context(), req.toRequest())
	if err != nil {
		writeQuoteError(c, err)
		return nil, false
	}
	return q, true
}

// Create returns the detailed quote: breakdown, line items, and estimate.
func (h *QuoteHandler) Create(c *gin.Context) {
	if q, ok := h.create(c); ok {
		writeJSON(c, http.StatusCreated, q)
	}
}

// CreateSimple returns only the headline price and duration of the same breakdown.
func (h *QuoteHandler) CreateSimple(c *gin.Context) {
	if q, ok := h.create(c); ok {
		writeJSON(c, http.StatusCreated, q.Simple())
	}
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	q, err := h.quotes.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}
