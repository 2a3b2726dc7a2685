package dto

import "gorm.io/datatypes"

type CreateListingRequest struct {
	Title        string         `json:"title" binding:"required"`
	Description  string         `json:"description"`
	Game         string         `json:"game" binding:"required"`
	CardName     string         `json:"card_name" binding:"required"`
	SetName      string         `json:"set_name"`
	Condition    string         `json:"condition" binding:"required,card_condition"`
	IsGraded     bool           `json:"is_graded"`
	GradeLevel   float64        `json:"grade_level"`
	GradeCompany string         `json:"grade_company"`
	Price        float64        `json:"price" binding:"required,gt=0"`
	Quantity     int            `json:"quantity"`
	ImageURLs    datatypes.JSON `json:"image_urls"`
	City         string         `json:"city"`
	State        string         `json:"state"`
}

type UpdateListingRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	CardName    *string  `json:"card_name,omitempty"`
	SetName     *string  `json:"set_name,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	City        *string  `json:"city,omitempty"`
	State       *string  `json:"state,omitempty"`
}

type BrowseListingsRequest struct {
	Game      string   `form:"game"`
	CardName  string   `form:"card_name"`
	Condition string   `form:"condition"`
	MinPrice  *float64 `form:"min_price"`
	MaxPrice  *float64 `form:"max_price"`
	State     string   `form:"state"`
	Search    string   `form:"search"`
	Page      int      `form:"page"`
	PageSize  int      `form:"page_size"`
}
