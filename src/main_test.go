package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pbs/src/common"
	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingGateway struct {
	captured  []string
	cancelled []string
}

func (g *recordingGateway) Authorize(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	return fmt.Sprintf("pi_test_%d", amount), nil
}
func (g *recordingGateway) Capture(ctx context.Context, reference string) error {
	g.captured = append(g.captured, reference)
	return nil
}
func (g *recordingGateway) Cancel(ctx context.Context, reference string) error {
	g.cancelled = append(g.cancelled, reference)
	return nil
}

type silentPublisher struct{}

func (silentPublisher) Publish(topic string, event string, payload types.JSONB) {}

type silentNotifier struct{}

func (silentNotifier) Notify(uid string, email string, title string, bodyText string) {}

// testAuthMiddleware stands in for the JWT middleware: the acting user id
// comes from a request header and the rest of the identity from the store.
func testAuthMiddleware(ctx *gin.Context) {
	idHeader := ctx.Request.Header.Get("X-Test-User")
	atoi, err := strconv.Atoi(idHeader)
	if err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	d := db.GetDb()
	var user models.User
	if err := d.
		Model(&models.User{}).
		Where(&models.User{ID: uint(atoi)}).
		First(&user).
		Error; err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
	ctx.Set("uid", user.UID)
	ctx.Set("role", user.Role)
}

type HandlerSuite struct {
	suite.Suite
	DB       *gorm.DB
	Router   *gin.Engine
	Gateway  *recordingGateway
	Customer *models.User
	Payee    *models.User
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	d, err := gorm.Open(sqlite.Open(":memory:"))
	s.Require().NoError(err)
	s.Require().NoError(d.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.Earning{},
		&models.EditingRequest{},
		&models.PhotoDelivery{},
	))
	db.NewDB(d)
	s.DB = d

	s.Gateway = &recordingGateway{}
	common.UseGateway(s.Gateway)
	common.UsePublisher(silentPublisher{})
	common.UseNotifier(silentNotifier{})

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
		v.RegisterValidation("clocktime", clockTimeValidatorFunc)
	}

	router := gin.New()
	authorized := router.Group(apiPrefix)
	authorized.Use(testAuthMiddleware)
	authorized = bookingHandlers(authorized)
	authorized = editingHandlers(authorized)
	authorized = earningHandlers(authorized)
	authorized = profileHandlers(authorized)
	s.Router = router

	customer := models.User{Name: "Cust", Role: models.ROLE_CUSTOMER}
	s.Require().NoError(d.Create(&customer).Error)
	s.Customer = &customer
	payee := models.User{
		Name:                "Photog",
		Role:                models.ROLE_PHOTOGRAPHER,
		HourlyRate:          decimal.NewFromInt(120),
		IsAvailable:         true,
		EditingEnabled:      true,
		EditingPricingModel: types.PRICING_FLAT,
		EditingFlatRate:     decimal.NewFromInt(60),
	}
	s.Require().NoError(d.Create(&payee).Error)
	s.Payee = &payee
}

func (s *HandlerSuite) request(method, path string, userId uint, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, apiPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", fmt.Sprint(userId))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) createBooking() uint {
	sessionDay := time.Now().Add(72 * time.Hour)
	w := s.request(http.MethodPost, "/bookings", s.Customer.ID, gin.H{
		"photographer_id": s.Payee.ID,
		"duration":        2,
		"location":        "Golden Gate Park",
		"scheduled_date":  sessionDay.Format("2006-01-02"),
		"scheduled_time":  "10:00",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return uint(gjson.Get(w.Body.String(), "data.id").Uint())
}

func (s *HandlerSuite) TestCreateBooking() {
	sessionDay := time.Now().Add(72 * time.Hour)
	w := s.request(http.MethodPost, "/bookings", s.Customer.ID, gin.H{
		"photographer_id": s.Payee.ID,
		"duration":        2,
		"location":        "Golden Gate Park",
		"scheduled_date":  sessionDay.Format("2006-01-02"),
		"scheduled_time":  "10:00",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	body := w.Body.String()
	s.Equal("pending", gjson.Get(body, "data.status").String())
	s.Equal("240", gjson.Get(body, "data.base_amount").String())
	s.Equal("24", gjson.Get(body, "data.customer_service_fee").String())
	s.Equal("264", gjson.Get(body, "data.total_amount").String())
	s.Equal("192", gjson.Get(body, "data.payee_earnings").String())
	s.False(gjson.Get(body, "data.payment_reference").Exists())
}

func (s *HandlerSuite) TestCreateBookingValidation() {
	w := s.request(http.MethodPost, "/bookings", s.Customer.ID, gin.H{
		"photographer_id": s.Payee.ID,
		"duration":        13,
		"location":        "Golden Gate Park",
		"scheduled_date":  "2020-01-01",
		"scheduled_time":  "10:00",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestClientMoneyFieldsIgnored() {
	sessionDay := time.Now().Add(72 * time.Hour)
	w := s.request(http.MethodPost, "/bookings", s.Customer.ID, gin.H{
		"photographer_id": s.Payee.ID,
		"duration":        1,
		"location":        "Golden Gate Park",
		"scheduled_date":  sessionDay.Format("2006-01-02"),
		"scheduled_time":  "10:00",
		"total_amount":    "1",
		"base_amount":     "1",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("120", gjson.Get(w.Body.String(), "data.base_amount").String())
	s.Equal("132", gjson.Get(w.Body.String(), "data.total_amount").String())
}

func (s *HandlerSuite) TestAcceptDeclineFlow() {
	bookingId := s.createBooking()

	w := s.request(http.MethodPut, fmt.Sprintf("/bookings/%d/accept", bookingId), s.Payee.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("confirmed", gjson.Get(w.Body.String(), "data.status").String())
	s.Len(s.Gateway.captured, 1)

	w = s.request(http.MethodPut, fmt.Sprintf("/bookings/%d/decline", bookingId), s.Payee.ID, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerSuite) TestDeclineByNonOwner() {
	bookingId := s.createBooking()

	w := s.request(http.MethodPut, fmt.Sprintf("/bookings/%d/decline", bookingId), s.Customer.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestListBookingsByRole() {
	s.createBooking()

	w := s.request(http.MethodGet, "/bookings", s.Customer.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
	s.Equal("upcoming", gjson.Get(w.Body.String(), "data.0.session_phase").String())

	w = s.request(http.MethodGet, "/bookings", s.Payee.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
}

func (s *HandlerSuite) TestDeliveryCompletesAndPaysOut() {
	bookingId := s.createBooking()
	w := s.request(http.MethodPut, fmt.Sprintf("/bookings/%d/accept", bookingId), s.Payee.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/bookings/%d/delivery", bookingId), s.Payee.ID, gin.H{
		"photo_urls": []string{"galleries/1/a.jpg"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.NotEmpty(gjson.Get(w.Body.String(), "data.share_slug").String())

	w = s.request(http.MethodGet, "/earnings?status=released", s.Payee.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
	s.Equal("192", gjson.Get(w.Body.String(), "data.0.net_amount").String())
}

func (s *HandlerSuite) TestEditingRequestFlow() {
	bookingId := s.createBooking()
	w := s.request(http.MethodPut, fmt.Sprintf("/bookings/%d/accept", bookingId), s.Payee.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.request(http.MethodPost, fmt.Sprintf("/bookings/%d/delivery", bookingId), s.Payee.ID, gin.H{
		"photo_urls": []string{"galleries/1/a.jpg"},
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodPost, "/editing-requests", s.Customer.ID, gin.H{
		"booking_id":     bookingId,
		"customer_notes": "brighten the skies",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	requestId := gjson.Get(w.Body.String(), "data.id").Uint()
	s.Equal("60", gjson.Get(w.Body.String(), "data.base_amount").String())

	w = s.request(http.MethodPost, "/editing-requests", s.Customer.ID, gin.H{"booking_id": bookingId})
	s.Equal(http.StatusConflict, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/editing-requests/%d/status", requestId), s.Payee.ID, gin.H{
		"status": "accepted",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPut, fmt.Sprintf("/editing-requests/%d/deliver", requestId), s.Payee.ID, gin.H{
		"edited_photos": []string{"edited/a.jpg"},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPut, fmt.Sprintf("/editing-requests/%d/revision", requestId), s.Customer.ID, gin.H{
		"revision_notes": "too dark",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(int64(1), gjson.Get(w.Body.String(), "data.revision_count").Int())

	w = s.request(http.MethodPut, fmt.Sprintf("/editing-requests/%d/deliver", requestId), s.Payee.ID, gin.H{
		"edited_photos": []string{"edited/a-v2.jpg"},
	})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/editing-requests/%d/complete", requestId), s.Customer.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("completed", gjson.Get(w.Body.String(), "data.status").String())
}

func (s *HandlerSuite) TestUpdateRates() {
	w := s.request(http.MethodPut, "/profile/rates", s.Payee.ID, gin.H{
		"hourly_rate":     "150.50",
		"is_available":    true,
		"editing_enabled": true,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodGet, fmt.Sprintf("/photographers/%d/rates", s.Payee.ID), s.Customer.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("150.5", gjson.Get(w.Body.String(), "data.hourly_rate").String())
}

func (s *HandlerSuite) TestUpdateRatesCustomerForbidden() {
	w := s.request(http.MethodPut, "/profile/rates", s.Customer.ID, gin.H{
		"hourly_rate": "10",
	})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestUpdateRatesRejectsBadDecimal() {
	w := s.request(http.MethodPut, "/profile/rates", s.Payee.ID, gin.H{
		"hourly_rate": "-5",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	w = s.request(http.MethodPut, "/profile/rates", s.Payee.ID, gin.H{
		"hourly_rate": "lots",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestStripeCanceledIntentExpiresPendingBooking() {
	ref := "pi_hook_1"
	booking := models.Booking{
		CustomerID:       s.Customer.ID,
		PayeeID:          s.Payee.ID,
		Status:           types.BOOKING_PENDING,
		PaymentReference: &ref,
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.DB.Create(&booking).Error)

	raw, err := json.Marshal(gin.H{"id": ref})
	s.Require().NoError(err)
	reconcileStripeEvent(stripe.Event{Type: "payment_intent.canceled", Data: &stripe.EventData{Raw: raw}})

	var stored models.Booking
	s.Require().NoError(s.DB.First(&stored, booking.ID).Error)
	s.Equal(types.BOOKING_EXPIRED, stored.Status)
}

func (s *HandlerSuite) TestStripeCanceledIntentKeepsResolvedBooking() {
	ref := "pi_hook_2"
	booking := models.Booking{
		CustomerID:       s.Customer.ID,
		PayeeID:          s.Payee.ID,
		Status:           types.BOOKING_CONFIRMED,
		PaymentReference: &ref,
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.DB.Create(&booking).Error)

	raw, err := json.Marshal(gin.H{"id": ref})
	s.Require().NoError(err)
	reconcileStripeEvent(stripe.Event{Type: "payment_intent.canceled", Data: &stripe.EventData{Raw: raw}})

	var stored models.Booking
	s.Require().NoError(s.DB.First(&stored, booking.ID).Error)
	s.Equal(types.BOOKING_CONFIRMED, stored.Status)
}

func (s *HandlerSuite) TestStripeAccountUpdateEnablesPayee() {
	payee := models.User{
		Name:            "Onboarding",
		Role:            models.ROLE_PHOTOGRAPHER,
		StripeAccountId: "acct_123",
	}
	s.Require().NoError(s.DB.Create(&payee).Error)

	raw, err := json.Marshal(gin.H{"id": "acct_123", "charges_enabled": true})
	s.Require().NoError(err)
	reconcileStripeEvent(stripe.Event{Type: "account.updated", Data: &stripe.EventData{Raw: raw}})

	var stored models.User
	s.Require().NoError(s.DB.First(&stored, payee.ID).Error)
	s.True(stored.IsAvailable)
}

func TestBookableDateValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("bookabledate", bookableDateValidatorFunc))

	today := time.Now().Format(config.DATE_PARSE_FORMAT)
	assert.NoError(t, v.Var(today, "bookabledate"))
	nextWeek := time.Now().AddDate(0, 0, 7).Format(config.DATE_PARSE_FORMAT)
	assert.NoError(t, v.Var(nextWeek, "bookabledate"))
	yesterday := time.Now().AddDate(0, 0, -1).Format(config.DATE_PARSE_FORMAT)
	assert.Error(t, v.Var(yesterday, "bookabledate"))
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}
