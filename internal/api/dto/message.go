package dto

import "github.com/google/uuid"

type SendMessageRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id" binding:"required"`
	ListingID   *uuid.UUID `json:"listing_id,omitempty"`
	Body        string     `json:"body" binding:"required"`
}
