package dto

import "github.com/google/uuid"

type AddFavoriteRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
}
