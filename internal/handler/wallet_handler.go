package handler

import (
	"context"

	"desk-wallet/internal/handler/request"
	"desk-wallet/internal/handler/response"
	"desk-wallet/internal/model"

	"github.com/gin-gonic/gin"
)

// PasswordChanger 由 signer.KeystoreUnlocker 实现
type PasswordChanger interface {
	ChangePassword(oldPassword, newPassword, hint string) error
}

// ContactBook 由 contact.Service 实现
type ContactBook interface {
	List(ctx context.Context, blacklisted *bool) ([]model.Contact, error)
	Get(ctx context.Context, addr string) (*model.Contact, error)
	Save(ctx context.Context, c model.Contact) (*model.Contact, error)
	Remove(ctx context.Context, addr string) error
}

// WalletHandler 钱包设置与地址簿
type WalletHandler struct {
	passwords PasswordChanger
	contacts  ContactBook
}

func NewWalletHandler(passwords PasswordChanger, contacts ContactBook) *WalletHandler {
	return &WalletHandler{passwords: passwords, contacts: contacts}
}

// UpdatePassword 用旧密码解锁后以新密码重新加密 keystore
// @Summary 修改钱包密码
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body request.PasswordUpdateRequest true "旧密码与新密码"
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/password [post]
func (h *WalletHandler) UpdatePassword(c *gin.Context) {
	var req request.PasswordUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.passwords.ChangePassword(req.OldPassword, req.NewPassword, req.Hint); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListContacts
// @Summary 地址簿
// @Tags Wallet
// @Produce json
// @Param black_listed query bool false "只看 (不看) 黑名单"
// @Success 200 {object} response.Response{data=[]model.Contact}
// @Router /api/v1/contacts [get]
func (h *WalletHandler) ListContacts(c *gin.Context) {
	var q request.ContactQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	contacts, err := h.contacts.List(c.Request.Context(), q.BlackListed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, contacts)
}

// GetContact
// @Summary 查询联系人
// @Tags Wallet
// @Produce json
// @Param address path string true "地址"
// @Success 200 {object} response.Response{data=model.Contact}
// @Router /api/v1/contacts/{address} [get]
func (h *WalletHandler) GetContact(c *gin.Context) {
	contact, err := h.contacts.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, contact)
}

// SaveContact 地址已存在时覆盖
// @Summary 保存联系人
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body request.ContactRequest true "联系人"
// @Success 200 {object} response.Response{data=model.Contact}
// @Router /api/v1/contacts [put]
func (h *WalletHandler) SaveContact(c *gin.Context) {
	var req request.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	contact, err := h.contacts.Save(c.Request.Context(), model.Contact{
		Address:       req.Address,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Notes:         req.Notes,
		IsBlackListed: req.IsBlackListed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, contact)
}

// RemoveContact
// @Summary 删除联系人
// @Tags Wallet
// @Produce json
// @Param address path string true "地址"
// @Success 200 {object} response.Response
// @Router /api/v1/contacts/{address} [delete]
func (h *WalletHandler) RemoveContact(c *gin.Context) {
	if err := h.contacts.Remove(c.Request.Context(), c.Param("address")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
