package dto

import "github.com/google/uuid"

type MakeOfferRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Amount    float64   `json:"amount" binding:"required,gt=0"`
}

type CounterOfferRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
