package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanbook/internal/modules/booking"
	"vanbook/internal/modules/distance"
	"vanbook/internal/modules/pricing"
	"vanbook/internal/modules/quote"
	"vanbook/internal/payment"
	"vanbook/internal/types"
)

type stubPayments struct {
	mu     sync.Mutex
	status string
	amount int64
}

func (p *stubPayments) CreateIntent(_ context.Context, id types.ID, amount types.Money) (payment.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.amount = amount.Amount
	return payment.Intent{ID: "pi_" + string(id), ClientSecret: "cs_test", Status: "requires_payment_method"}, nil
}

func (p *stubPayments) GetIntent(_ context.Context, id string) (payment.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return payment.Intent{ID: id, Status: p.status}, nil
}

func (p *stubPayments) CancelIntent(context.Context, string) error { return nil }

func newTestRouter(t *testing.T, pay booking.Payments) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tables, err := distance.DefaultTables()
	require.NoError(t, err)
	rates, err := pricing.DefaultRates()
	require.NoError(t, err)

	quotes := quote.NewService(distance.NewService(tables), pricing.NewEngine(rates), quote.NewMemoryStore(), nil)
	bookings := booking.NewService(booking.NewMemoryStore(), quotes, pay, nil)
	return NewRouter(Deps{Quotes: quotes, Bookings: bookings})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var londonToBirmingham = map[string]any{
	"pickup_address":   "10 Downing Street, London SW1A 2AA",
	"delivery_address": "1 Broad Street, Birmingham B1 2HF",
	"van_size":         "medium",
	"helpers":          1,
	"pickup_floor":     "second_floor",
	"urgency":          "standard",
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestQuoteDetailedAndSimpleAgree(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/quotes", londonToBirmingham)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	detailed := decode[quote.Quote](t, w)

	b := detailed.Breakdown
	assert.Equal(t, b.TotalWithVAT, b.DriverShare+b.PlatformFee+b.VATAmount)
	assert.Equal(t, b.Subtotal+b.VATAmount, b.TotalWithVAT)
	assert.Equal(t, distance.SourceExactTable, detailed.Estimate.Source)
	require.NotEmpty(t, b.Items)
	assert.Equal(t, "VAT (20%)", b.Items[len(b.Items)-1].Label)

	w = do(t, r, http.MethodPost, "/api/quotes/simple", londonToBirmingham)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	simple := decode[quote.Simple](t, w)
	assert.Equal(t, b.TotalWithVAT, simple.TotalWithVAT)
	assert.Equal(t, b.FormattedPrice, simple.FormattedPrice)
	assert.Equal(t, b.FormattedDuration, simple.FormattedDuration)
	assert.NotEqual(t, detailed.ID, simple.QuoteID)

	w = do(t, r, http.MethodGet, "/api/quotes/"+string(detailed.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[quote.Quote](t, w)
	assert.Equal(t, b.TotalWithVAT, stored.Breakdown.TotalWithVAT)
}

func TestQuoteRequestValidation(t *testing.T) {
	r := newTestRouter(t, nil)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/quotes", `{"pickup_address":`, http.StatusBadRequest},
		{"address too long", http.MethodPost, "/api/quotes", map[string]any{
			"pickup_address": strings.Repeat("a", 301), "delivery_address": "York",
		}, http.StatusBadRequest},
		{"too many helpers", http.MethodPost, "/api/quotes", map[string]any{
			"pickup_address": "Leeds", "delivery_address": "York", "helpers": 3,
		}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/quotes/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/quotes/" + string(types.NewID()), nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestQuoteBlankAddressesUseFallback(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, body := range []any{
		map[string]any{"van_size": "small"},
		map[string]any{"pickup_address": "", "delivery_address": "Leeds LS1 4AP"},
	} {
		w := do(t, r, http.MethodPost, "/api/quotes", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		q := decode[quote.Quote](t, w)
		assert.Equal(t, distance.SourceFallback, q.Estimate.Source)
		assert.Positive(t, q.Breakdown.TotalWithVAT)
	}
}

func TestQuoteUnknownEnumsUseDefaults(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(t, r, http.MethodPost, "/api/quotes", map[string]any{
		"pickup_address":   "Leeds LS1 4AP",
		"delivery_address": "York YO1 7HH",
		"van_size":         "spaceship",
		"urgency":          "yesterday",
		"pickup_floor":     "roof",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decode[quote.Quote](t, w)
	assert.Equal(t, pricing.VanMedium, q.VanSize)
	assert.Equal(t, pricing.UrgencyStandard, q.Urgency)
}

func TestBookingCheckoutFlow(t *testing.T) {
	pay := &stubPayments{}
	r := newTestRouter(t, pay)

	w := do(t, r, http.MethodPost, "/api/quotes", londonToBirmingham)
	require.Equal(t, http.StatusCreated, w.Code)
	q := decode[quote.Quote](t, w)

	w = do(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"quote_id":       q.ID,
		"customer_name":  "Sam Taylor",
		"customer_email": "sam@example.com",
		"customer_phone": "07700 900123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[booking.Booking](t, w)
	assert.Equal(t, booking.StatusPendingPayment, b.Status)
	assert.Equal(t, q.Breakdown.TotalWithVAT, b.AmountDue.Amount)

	base := "/api/bookings/" + string(b.ID)

	w = do(t, r, http.MethodPost, base+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, base+"/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	co := decode[booking.Checkout](t, w)
	assert.Equal(t, "cs_test", co.ClientSecret)
	assert.Equal(t, q.Breakdown.TotalWithVAT, pay.amount)

	w = do(t, r, http.MethodPost, base+"/confirm", nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	pay.mu.Lock()
	pay.status = "requires_capture"
	pay.mu.Unlock()

	w = do(t, r, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, booking.StatusConfirmed, decode[booking.Booking](t, w).Status)

	w = do(t, r, http.MethodPost, base+"/cancel", map[string]any{"reason": "changed plans"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StatusConfirmed, decode[booking.Booking](t, w).Status)
}

func TestBookingErrors(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/quotes", londonToBirmingham)
	require.Equal(t, http.StatusCreated, w.Code)
	q := decode[quote.Quote](t, w)

	w = do(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"quote_id": q.ID, "customer_name": "Sam", "customer_email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"quote_id": types.NewID(), "customer_name": "Sam", "customer_email": "sam@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/bookings/"+string(types.NewID()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"quote_id": q.ID, "customer_name": "Sam", "customer_email": "sam@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[booking.Booking](t, w)

	// No payment gateway configured.
	w = do(t, r, http.MethodPost, "/api/bookings/"+string(b.ID)+"/checkout", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodPost, "/api/bookings/"+string(b.ID)+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/bookings/"+string(b.ID)+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
