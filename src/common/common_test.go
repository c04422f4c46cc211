package common

import (
	"context"
	"fmt"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"
	"sync"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeGateway struct {
	mu           sync.Mutex
	authorized   []string
	captured     []string
	cancelled    []string
	authorizeErr error
	captureErr   error
}

func (f *fakeGateway) Authorize(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authorizeErr != nil {
		return "", f.authorizeErr
	}
	ref := fmt.Sprintf("pi_%s", uuid.NewString())
	f.authorized = append(f.authorized, ref)
	return ref, nil
}

func (f *fakeGateway) Capture(ctx context.Context, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captureErr != nil {
		return f.captureErr
	}
	f.captured = append(f.captured, reference)
	return nil
}

func (f *fakeGateway) Cancel(ctx context.Context, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, reference)
	return nil
}

func (f *fakeGateway) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancelled)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(topic string, event string, payload types.JSONB) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (f *fakeNotifier) Notify(uid string, email string, title string, bodyText string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
}

func openTestDB() *gorm.DB {
	d, err := gorm.Open(sqlite.Open(":memory:"))
	if err != nil {
		panic(err)
	}
	// One connection keeps every query on the same in-memory database and
	// serializes stragglers from earlier tests.
	sqlDB, err := d.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := d.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.Earning{},
		&models.EditingRequest{},
		&models.PhotoDelivery{},
	); err != nil {
		panic(err)
	}
	db.NewDB(d)
	return d
}

func seedCustomer(d *gorm.DB) *models.User {
	user := models.User{
		Name: faker.Name(),
		Role: models.ROLE_CUSTOMER,
	}
	if err := d.Create(&user).Error; err != nil {
		panic(err)
	}
	return &user
}

func seedPhotographer(d *gorm.DB, hourlyRate string) *models.User {
	rate, err := decimal.NewFromString(hourlyRate)
	if err != nil {
		panic(err)
	}
	user := models.User{
		Name:                faker.Name(),
		Role:                models.ROLE_PHOTOGRAPHER,
		HourlyRate:          rate,
		IsAvailable:         true,
		EditingEnabled:      true,
		EditingPricingModel: types.PRICING_FLAT,
		EditingFlatRate:     decimal.NewFromInt(50),
		EditingPerPhotoRate: decimal.NewFromInt(5),
	}
	if err := d.Create(&user).Error; err != nil {
		panic(err)
	}
	return &user
}

func bookingBody(payeeId uint) *types.CreateBookingRequestBody {
	sessionDay := time.Now().Add(72 * time.Hour)
	return &types.CreateBookingRequestBody{
		PhotographerID: payeeId,
		Duration:       2,
		Location:       "Pier 39, San Francisco",
		ScheduledDate:  sessionDay.Format("2006-01-02"),
		ScheduledTime:  "14:00",
		Notes:          "Golden hour preferred",
	}
}
