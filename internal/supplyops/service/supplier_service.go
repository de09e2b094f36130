package service

import (
	"context"
	"fmt"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/repository"
	"github.com/google/uuid"
)

type SupplierService struct {
	repo *repository.SupplierRepository
}

func NewSupplierService(repo *repository.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

func (s *SupplierService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

type CreateSupplierRequest struct {
	Name           string `json:"name" binding:"required"`
	ShortName      string `json:"short_name"`
	ContactName    string `json:"contact_name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	MarketLocation string `json:"market_location"`
	PaymentTerms   string `json:"payment_terms"`
	Notes          string `json:"notes"`
}

func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest, userID string) (*entity.Supplier, error) {
	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate supplier code: %w", err)
	}

	supplier := &entity.Supplier{
		ID:             uuid.New().String()[:32],
		Code:           code,
		Name:           req.Name,
		ShortName:      req.ShortName,
		Status:         entity.SupplierStatusActive,
		ContactName:    req.ContactName,
		Phone:          req.Phone,
		Address:        req.Address,
		MarketLocation: req.MarketLocation,
		PaymentTerms:   req.PaymentTerms,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

type UpdateSupplierRequest struct {
	Name           *string `json:"name"`
	ShortName      *string `json:"short_name"`
	Status         *string `json:"status"`
	ContactName    *string `json:"contact_name"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	MarketLocation *string `json:"market_location"`
	PaymentTerms   *string `json:"payment_terms"`
	Notes          *string `json:"notes"`
}

func (s *SupplierService) Update(ctx context.Context, id string, req UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ShortName != nil {
		supplier.ShortName = *req.ShortName
	}
	if req.Status != nil {
		switch *req.Status {
		case entity.SupplierStatusActive, entity.SupplierStatusInactive:
			supplier.Status = *req.Status
		default:
			return nil, fmt.Errorf("invalid supplier status: %s", *req.Status)
		}
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.MarketLocation != nil {
		supplier.MarketLocation = *req.MarketLocation
	}
	if req.PaymentTerms != nil {
		supplier.PaymentTerms = *req.PaymentTerms
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}
