package request

type PasswordUpdateRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=NewPassword"`
	Hint            string `json:"hint" binding:"max=64"`
}

type ContactRequest struct {
	Address       string `json:"address" binding:"required,address"`
	Name          string `json:"name" binding:"required,max=64"`
	Phone         string `json:"phone" binding:"max=32"`
	Email         string `json:"email" binding:"omitempty,email,max=128"`
	Notes         string `json:"notes" binding:"max=512"`
	IsBlackListed bool   `json:"is_black_listed"`
}

type ContactQuery struct {
	// BlackListed 为空时返回全部联系人
	BlackListed *bool `form:"black_listed"`
}
