package handlers

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/user"
)

func UserToResponse(u *user.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
		Bio:           u.Bio,
		Location:      u.Location,
		Tier:          string(u.Tier),
		RatingAverage: u.RatingAverage,
		RatingCount:   u.RatingCount,
		CreatedAt:     u.CreatedAt,
	}
}

// PublicUserToResponse strips the email for profiles viewed by other users.
func PublicUserToResponse(u *user.User) *dto.UserResponse {
	resp := UserToResponse(u)
	if resp != nil {
		resp.Email = ""
	}
	return resp
}
