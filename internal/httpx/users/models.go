package users

// UserCreateRequest is the registration body
// swagger:model UserCreateRequest
type UserCreateRequest struct {
	Username    string `json:"username" example:"ana"`
	Email       string `json:"email" example:"ana@example.com"`
	DisplayName string `json:"display_name" example:"Ana"`
	Password    string `json:"password" example:"Secretp@ssw0rd"`
}

// PublicUser is the profile other users see.
// swagger:model PublicUser
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}
