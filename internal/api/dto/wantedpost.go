package dto

type CreateWantedPostRequest struct {
	Game         string  `json:"game" binding:"required"`
	CardName     string  `json:"card_name" binding:"required"`
	SetName      string  `json:"set_name"`
	Description  string  `json:"description"`
	MinCondition string  `json:"min_condition"`
	MaxPrice     float64 `json:"max_price"`
	City         string  `json:"city"`
	State        string  `json:"state"`
}

type UpdateWantedPostRequest struct {
	CardName     *string  `json:"card_name,omitempty"`
	SetName      *string  `json:"set_name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	MinCondition *string  `json:"min_condition,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
}

type BrowseWantedPostsRequest struct {
	Game     string `form:"game"`
	CardName string `form:"card_name"`
	State    string `form:"state"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
