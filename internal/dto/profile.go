package dto

// UpdateProfileRequest is a partial update: nil = keep the current value.
type UpdateProfileRequest struct {
	Bio      *string `json:"bio" binding:"omitempty,max=1000"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Currency *string `json:"currency"`
}

type ProfileResponse struct {
	Bio      string `json:"bio"`
	Phone    string `json:"phone"`
	Currency string `json:"currency"`
}
