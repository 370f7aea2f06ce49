// Package contact 本地地址簿
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/errno"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func normalize(addr string) (string, error) {
	a, err := address.Normalize(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errno.ErrInvalidAddress, addr)
	}
	return a, nil
}

// List 按名称排序; blacklisted 为 nil 时返回全部
func (s *Service) List(ctx context.Context, blacklisted *bool) ([]model.Contact, error) {
	q := s.db.WithContext(ctx).Order("name ASC, id ASC")
	if blacklisted != nil {
		q = q.Where("is_black_listed = ?", *blacklisted)
	}
	var contacts []model.Contact
	if err := q.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDatabase, err)
	}
	return contacts, nil
}

func (s *Service) Get(ctx context.Context, addr string) (*model.Contact, error) {
	a, err := normalize(addr)
	if err != nil {
		return nil, err
	}
	var c model.Contact
	err = s.db.WithContext(ctx).Where("address = ?", a).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: contact %s", errno.ErrNotFound, a)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDatabase, err)
	}
	return &c, nil
}

// Save 以地址为键新增或覆盖联系人
func (s *Service) Save(ctx context.Context, c model.Contact) (*model.Contact, error) {
	a, err := normalize(c.Address)
	if err != nil {
		return nil, err
	}
	c.Address = a
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, fmt.Errorf("%w: contact name is empty", errno.ErrValidation)
	}
	c.ID = 0
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "email", "notes", "is_black_listed", "updated_at"}),
	}).Create(&c).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDatabase, err)
	}
	return s.Get(ctx, a)
}

func (s *Service) Remove(ctx context.Context, addr string) error {
	a, err := normalize(addr)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("address = ?", a).Delete(&model.Contact{})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", errno.ErrDatabase, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: contact %s", errno.ErrNotFound, a)
	}
	return nil
}
