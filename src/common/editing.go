package common

import (
	"errors"
	"fmt"
	"log"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// editingTransitions maps each payee-settable target status to the source
// statuses it may be applied from.
var editingTransitions = map[types.EditingStatus][]types.EditingStatus{
	types.EDITING_ACCEPTED:    {types.EDITING_REQUESTED},
	types.EDITING_DECLINED:    {types.EDITING_REQUESTED},
	types.EDITING_IN_PROGRESS: {types.EDITING_ACCEPTED},
}

// CreateEditingRequest opens the paid post-processing workflow on a completed
// booking. Pricing comes from the photographer's configured editing rates,
// never from the request body, and one pending earning row is created with it.
func CreateEditingRequest(customerId uint, body *types.CreateEditingRequestBody) (*models.EditingRequest, error) {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: body.BookingID}).
		First(&booking).
		Error; err != nil {
		return nil, err
	}
	if booking.CustomerID != customerId {
		return nil, types.ErrNotOwner
	}
	if booking.Status != types.BOOKING_COMPLETED {
		return nil, types.ErrWrongSourceState
	}

	var payee models.User
	if err := d.
		Model(&models.User{}).
		Where(&models.User{ID: booking.PayeeID}).
		First(&payee).
		Error; err != nil {
		return nil, err
	}
	if !payee.EditingEnabled {
		return nil, types.ErrEditingDisabled
	}

	var count int64
	if err := d.
		Model(&models.EditingRequest{}).
		Where(&models.EditingRequest{BookingID: booking.ID}).
		Count(&count).
		Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.ErrDuplicateRequest
	}

	var rate decimal.Decimal
	var quantity int64
	switch payee.EditingPricingModel {
	case types.PRICING_PER_PHOTO:
		if body.PhotoCount == nil || *body.PhotoCount == 0 {
			return nil, types.ErrPhotoCountRequired
		}
		rate = payee.EditingPerPhotoRate
		quantity = int64(*body.PhotoCount)
	default:
		rate = payee.EditingFlatRate
		quantity = 1
	}
	fees := utils.ComputeFees(rate, quantity)

	request := models.EditingRequest{
		BookingID:          booking.ID,
		CustomerID:         customerId,
		PayeeID:            booking.PayeeID,
		PricingModel:       payee.EditingPricingModel,
		PhotoCount:         body.PhotoCount,
		BaseAmount:         fees.BaseAmount,
		CustomerServiceFee: fees.CustomerServiceFee,
		TotalAmount:        fees.TotalAmount,
		PlatformFee:        fees.PlatformFee,
		PayeeEarnings:      fees.PayeeEarnings,
		Status:             types.EDITING_REQUESTED,
		RequestedPhotoUrls: body.RequestedPhotoUrls,
		CustomerNotes:      body.CustomerNotes,
	}
	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		return createEditingEarning(tx, &request)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.ErrDuplicateRequest
		}
		return nil, err
	}

	PublishTransition("editing", "editing.requested", types.JSONB{
		"id":         request.ID,
		"booking_id": request.BookingID,
		"payee_id":   request.PayeeID,
	})
	NotifyUser(payee.UID, payee.Email, "New editing request",
		fmt.Sprintf("A customer requested editing on booking #%d.", booking.ID))
	return &request, nil
}

// UpdateEditingStatus applies a payee-side transition (accept, decline, start
// work) with a status compare-and-set.
func UpdateEditingStatus(payeeId uint, requestId uint, target types.EditingStatus) (*models.EditingRequest, error) {
	sources, ok := editingTransitions[target]
	if !ok {
		return nil, types.ErrWrongSourceState
	}
	d := db.GetDb()
	var request models.EditingRequest
	if err := d.
		Model(&models.EditingRequest{}).
		Where(&models.EditingRequest{ID: requestId}).
		First(&request).
		Error; err != nil {
		return nil, err
	}
	if request.PayeeID != payeeId {
		return nil, types.ErrNotOwner
	}

	res := d.
		Model(&models.EditingRequest{}).
		Where("id = ? AND status IN ?", requestId, sources).
		Update("status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrWrongSourceState
	}
	request.Status = target

	PublishTransition("editing", fmt.Sprintf("editing.%s", target), types.JSONB{
		"id":         request.ID,
		"booking_id": request.BookingID,
	})
	return &request, nil
}

// DeliverEdits attaches the edited set and moves the request to delivered.
// Redelivery after a revision request replaces the previous set wholesale.
func DeliverEdits(payeeId uint, requestId uint, body *types.DeliverEditsRequestBody) (*models.EditingRequest, error) {
	d := db.GetDb()
	var request models.EditingRequest
	if err := d.
		Model(&models.EditingRequest{}).
		Where(&models.EditingRequest{ID: requestId}).
		First(&request).
		Error; err != nil {
		return nil, err
	}
	if request.PayeeID != payeeId {
		return nil, types.ErrNotOwner
	}

	sources := []types.EditingStatus{types.EDITING_ACCEPTED, types.EDITING_IN_PROGRESS, types.EDITING_REVISION_REQUESTED}
	res := d.
		Model(&models.EditingRequest{}).
		Where("id = ? AND status IN ?", requestId, sources).
		Updates(map[string]any{
			"status":             types.EDITING_DELIVERED,
			"edited_photos":      types.StringList(body.EditedPhotos),
			"photographer_notes": body.PhotographerNotes,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrWrongSourceState
	}
	request.Status = types.EDITING_DELIVERED
	request.EditedPhotos = body.EditedPhotos
	request.PhotographerNotes = body.PhotographerNotes

	PublishTransition("editing", "editing.delivered", types.JSONB{
		"id":         request.ID,
		"booking_id": request.BookingID,
	})
	notifyEditingCustomer(&request, "Edits delivered",
		fmt.Sprintf("Your edited photos for booking #%d are ready for review.", request.BookingID))
	return &request, nil
}

// CompleteEditing is the customer's sign-off on delivered edits. It releases
// the linked earning.
func CompleteEditing(customerId uint, requestId uint) (*models.EditingRequest, error) {
	d := db.GetDb()
	var request models.EditingRequest
	if err := d.
		Model(&models.EditingRequest{}).
		Where(&models.EditingRequest{ID: requestId}).
		First(&request).
		Error; err != nil {
		return nil, err
	}
	if request.CustomerID != customerId {
		return nil, types.ErrNotOwner
	}

	res := d.
		Model(&models.EditingRequest{}).
		Where("id = ? AND status = ?", requestId, types.EDITING_DELIVERED).
		Update("status", types.EDITING_COMPLETED)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrWrongSourceState
	}
	request.Status = types.EDITING_COMPLETED

	if err := ReleaseEditingEarning(request.ID); err != nil {
		log.Printf("Error releasing earning for editing request %d: %s\n", request.ID, err.Error())
	}
	PublishTransition("editing", "editing.completed", types.JSONB{
		"id":         request.ID,
		"booking_id": request.BookingID,
	})
	return &request, nil
}

// RequestRevision sends delivered edits back with notes. Prior edited photos
// stay on the record until the next delivery replaces them.
func RequestRevision(customerId uint, requestId uint, body *types.RequestRevisionRequestBody) (*models.EditingRequest, error) {
	d := db.GetDb()
	var request models.EditingRequest
	if err := d.
		Model(&models.EditingRequest{}).
		Where(&models.EditingRequest{ID: requestId}).
		First(&request).
		Error; err != nil {
		return nil, err
	}
	if request.CustomerID != customerId {
		return nil, types.ErrNotOwner
	}

	res := d.
		Model(&models.EditingRequest{}).
		Where("id = ? AND status = ?", requestId, types.EDITING_DELIVERED).
		Updates(map[string]any{
			"status":         types.EDITING_REVISION_REQUESTED,
			"revision_count": gorm.Expr("revision_count + 1"),
			"revision_notes": body.RevisionNotes,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrWrongSourceState
	}
	request.Status = types.EDITING_REVISION_REQUESTED
	request.RevisionCount++
	request.RevisionNotes = body.RevisionNotes

	PublishTransition("editing", "editing.revision_requested", types.JSONB{
		"id":         request.ID,
		"booking_id": request.BookingID,
	})
	return &request, nil
}

// DismissEditingRequest soft-hides a terminally statused request from the
// acting party's list.
func DismissEditingRequest(actorId uint, requestId uint) error {
	d := db.GetDb()
	var request models.EditingRequest
	if err := d.
		Model(&models.EditingRequest{}).
		Where(&models.EditingRequest{ID: requestId}).
		First(&request).
		Error; err != nil {
		return err
	}
	if actorId != request.CustomerID && actorId != request.PayeeID {
		return types.ErrNotOwner
	}
	switch request.Status {
	case types.EDITING_DECLINED, types.EDITING_COMPLETED:
	default:
		return types.ErrWrongSourceState
	}
	column := "customer_dismissed_at"
	if actorId == request.PayeeID {
		column = "payee_dismissed_at"
	}
	now := time.Now()
	return d.
		Model(&models.EditingRequest{}).
		Where("id = ?", requestId).
		Update(column, &now).
		Error
}

// ListEditingRequests returns the party's non-dismissed requests, newest
// first.
func ListEditingRequests(actorId uint, asPayee bool) ([]models.EditingRequest, error) {
	d := db.GetDb()
	var requests []models.EditingRequest
	q := d.
		Model(&models.EditingRequest{}).
		Preload("Booking").
		Order("created_at DESC")
	if asPayee {
		q = q.Where(&models.EditingRequest{PayeeID: actorId}).Where("payee_dismissed_at IS NULL")
	} else {
		q = q.Where(&models.EditingRequest{CustomerID: actorId}).Where("customer_dismissed_at IS NULL")
	}
	err := q.Find(&requests).Error
	return requests, err
}

func notifyEditingCustomer(request *models.EditingRequest, title string, bodyText string) {
	d := db.GetDb()
	var customer models.User
	if err := d.
		Model(&models.User{}).
		Where(&models.User{ID: request.CustomerID}).
		First(&customer).
		Error; err != nil {
		log.Printf("Could not load customer %d for notification: %s\n", request.CustomerID, err.Error())
		return
	}
	NotifyUser(customer.UID, customer.Email, title, bodyText)
}
