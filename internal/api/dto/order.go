package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BuyNowRequest struct {
	ListingID       uuid.UUID      `json:"listing_id" binding:"required"`
	ShippingAddress datatypes.JSON `json:"shipping_address"`
}

type AttachPaymentSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// PaymentWebhookRequest carries the fields the payment provider posts back
// when a checkout session completes.
type PaymentWebhookRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	IntentID  string `json:"intent_id" binding:"required"`
}

type ShipOrderRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

type RefundOrderRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
