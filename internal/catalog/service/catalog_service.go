package service

import (
	"context"
	"fmt"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/repository"
	ordersentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"github.com/google/uuid"
)

// CatalogService is a thin CRUD layer over the reference data. There are no
// cross-entity invariants to enforce here.
type CatalogService struct {
	repo *repository.CatalogRepository
}

func NewCatalogService(repo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// --- Listings ---

type ListingRequest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title" binding:"required"`
	Variant     string  `json:"variant"`
	Color       string  `json:"color"`
	SupplierID  *string `json:"supplier_id"`
	PricePublic float64 `json:"price_public" binding:"required,gt=0"`
	PriceCost   float64 `json:"price_cost"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
	Active      *bool   `json:"active"`
}

// ListingView is a listing plus its derived reseller price for display.
type ListingView struct {
	entity.CatalogListing
	PriceClienta float64 `json:"price_clienta"`
}

func (s *CatalogService) ListListings(ctx context.Context, page, pageSize int, filters map[string]string) ([]ListingView, int64, error) {
	items, total, err := s.repo.ListListings(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, err
	}
	views := make([]ListingView, 0, len(items))
	for _, item := range items {
		views = append(views, ListingView{
			CatalogListing: item,
			PriceClienta:   ordersentity.ResellerPrice(item.PricePublic),
		})
	}
	return views, total, nil
}

func (s *CatalogService) GetListing(ctx context.Context, id string) (*ListingView, error) {
	item, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ListingView{
		CatalogListing: *item,
		PriceClienta:   ordersentity.ResellerPrice(item.PricePublic),
	}, nil
}

func (s *CatalogService) UpsertListing(ctx context.Context, req ListingRequest) (*entity.CatalogListing, error) {
	item := &entity.CatalogListing{
		ID:          req.ID,
		Title:       req.Title,
		Variant:     req.Variant,
		Color:       req.Color,
		SupplierID:  req.SupplierID,
		PricePublic: req.PricePublic,
		PriceCost:   req.PriceCost,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Active:      true,
	}
	if item.ID == "" {
		item.ID = uuid.New().String()[:32]
	} else if existing, err := s.repo.GetListing(ctx, item.ID); err == nil {
		item.CreatedAt = existing.CreatedAt
		item.Active = existing.Active
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.repo.SaveListing(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}
	return item, nil
}

func (s *CatalogService) SetListingActive(ctx context.Context, id string, active bool) (*entity.CatalogListing, error) {
	item, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Active = active
	if err := s.repo.SaveListing(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return item, nil
}

// --- Customers ---

type CustomerRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name" binding:"required"`
	Phone      string  `json:"phone"`
	RouteID    *string `json:"route_id"`
	LocalityID *string `json:"locality_id"`
	Address    string  `json:"address"`
	Notes      string  `json:"notes"`
	Active     *bool   `json:"active"`
}

func (s *CatalogService) ListCustomers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Customer, int64, error) {
	return s.repo.ListCustomers(ctx, page, pageSize, filters)
}

func (s *CatalogService) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CatalogService) UpsertCustomer(ctx context.Context, req CustomerRequest) (*entity.Customer, error) {
	item := &entity.Customer{
		ID:         req.ID,
		Name:       req.Name,
		Phone:      req.Phone,
		RouteID:    req.RouteID,
		LocalityID: req.LocalityID,
		Address:    req.Address,
		Notes:      req.Notes,
		Active:     true,
	}
	if item.ID == "" {
		item.ID = uuid.New().String()[:32]
	} else if existing, err := s.repo.GetCustomer(ctx, item.ID); err == nil {
		item.CreatedAt = existing.CreatedAt
		item.Active = existing.Active
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.repo.SaveCustomer(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	return item, nil
}

// --- Routes ---

type RouteRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name" binding:"required"`
	Weekday string `json:"weekday"`
	Notes   string `json:"notes"`
	Active  *bool  `json:"active"`
}

func (s *CatalogService) ListRoutes(ctx context.Context, activeOnly bool) ([]entity.Route, error) {
	return s.repo.ListRoutes(ctx, activeOnly)
}

func (s *CatalogService) UpsertRoute(ctx context.Context, req RouteRequest) (*entity.Route, error) {
	item := &entity.Route{
		ID:      req.ID,
		Name:    req.Name,
		Weekday: req.Weekday,
		Notes:   req.Notes,
		Active:  true,
	}
	if item.ID == "" {
		item.ID = uuid.New().String()[:32]
	} else if existing, err := s.repo.GetRoute(ctx, item.ID); err == nil {
		item.CreatedAt = existing.CreatedAt
		item.Active = existing.Active
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.repo.SaveRoute(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}
	return item, nil
}

// --- Localities ---

type LocalityRequest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name" binding:"required"`
	RouteID *string `json:"route_id"`
	Active  *bool   `json:"active"`
}

func (s *CatalogService) ListLocalities(ctx context.Context, routeID string, activeOnly bool) ([]entity.Locality, error) {
	return s.repo.ListLocalities(ctx, routeID, activeOnly)
}

func (s *CatalogService) UpsertLocality(ctx context.Context, req LocalityRequest) (*entity.Locality, error) {
	item := &entity.Locality{
		ID:      req.ID,
		Name:    req.Name,
		RouteID: req.RouteID,
		Active:  true,
	}
	if item.ID == "" {
		item.ID = uuid.New().String()[:32]
	} else if existing, err := s.repo.GetLocality(ctx, item.ID); err == nil {
		item.CreatedAt = existing.CreatedAt
		item.Active = existing.Active
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.repo.SaveLocality(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save locality: %w", err)
	}
	return item, nil
}
