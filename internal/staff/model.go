// File: internal/staff/model.go
package staff

type InviteRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Language  string  `json:"language" binding:"omitempty,oneof=en de"`
}
