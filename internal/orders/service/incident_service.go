package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	ErrResolutionNoteRequired = errors.New("resolution note is required")
	ErrIncidentResolved       = errors.New("incident already resolved")
)

type IncidentService struct {
	repos       *repository.Repositories
	logger      *zap.Logger
	publisher   EventPublisher
	minioClient *minio.Client
	bucketName  string
	publicBase  string
}

func NewIncidentService(repos *repository.Repositories, logger *zap.Logger, publisher EventPublisher, minioClient *minio.Client, bucketName, publicBase string) *IncidentService {
	return &IncidentService{
		repos:       repos,
		logger:      logger,
		publisher:   publisher,
		minioClient: minioClient,
		bucketName:  bucketName,
		publicBase:  publicBase,
	}
}

type CreateIncidentRequest struct {
	Type        string   `json:"type" binding:"required"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	PackageID   *string  `json:"package_id"`
	ItemID      *string  `json:"item_id"`
	AssigneeID  *string  `json:"assignee_id"`
	Evidence    []string `json:"evidence_urls"`
}

// CreateIncident opens an incident and rebuilds the order's rollups from
// the incident table in the same transaction. A blocked workflow step calls
// this too, so the block leaves an auditable record.
func (s *IncidentService) CreateIncident(ctx context.Context, orderID string, req CreateIncidentRequest, userID string) (*entity.Incident, error) {
	if _, err := s.repos.Order.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	severity := req.Severity
	switch severity {
	case "":
		severity = entity.IncidentSeverityLow
	case entity.IncidentSeverityLow, entity.IncidentSeverityMedium, entity.IncidentSeverityHigh:
	default:
		return nil, fmt.Errorf("%w: severity %q", ErrInvalidState, severity)
	}

	inc := &entity.Incident{
		ID:           uuid.New().String()[:32],
		OrderID:      orderID,
		PackageID:    req.PackageID,
		ItemID:       req.ItemID,
		Type:         req.Type,
		Severity:     severity,
		Status:       entity.IncidentStatusOpen,
		AssigneeID:   req.AssigneeID,
		EvidenceURLs: entity.StringArray(req.Evidence),
		Description:  req.Description,
		CreatedBy:    userID,
	}

	if err := s.repos.Incident.CreateWithRollup(ctx, inc); err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "incident_open", "", "",
		fmt.Sprintf("Incidencia %s (%s)", inc.Type, inc.Severity),
		entity.JSONB{"incident_id": inc.ID}); err != nil {
		s.logger.Warn("failed to log incident open", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publishUpdate(orderID, "incident_open")
	return inc, nil
}

type UpdateIncidentRequest struct {
	Severity    *string `json:"severity"`
	Description *string `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
}

func (s *IncidentService) UpdateIncident(ctx context.Context, orderID, incidentID string, req UpdateIncidentRequest, userID string) (*entity.Incident, error) {
	inc, err := s.findOrderIncident(ctx, orderID, incidentID)
	if err != nil {
		return nil, err
	}

	if req.Severity != nil {
		switch *req.Severity {
		case entity.IncidentSeverityLow, entity.IncidentSeverityMedium, entity.IncidentSeverityHigh:
			inc.Severity = *req.Severity
		default:
			return nil, fmt.Errorf("%w: severity %q", ErrInvalidState, *req.Severity)
		}
	}
	if req.Description != nil {
		inc.Description = *req.Description
	}
	if req.AssigneeID != nil {
		inc.AssigneeID = req.AssigneeID
	}

	if err := s.repos.Incident.UpdateWithRollup(ctx, inc); err != nil {
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}

	s.publishUpdate(orderID, "incident_update")
	return inc, nil
}

type ResolveIncidentRequest struct {
	ResolutionNote string `json:"resolution_note" binding:"required"`
}

// ResolveIncident closes an incident. A resolution note is mandatory; the
// rollups come back down through the same recompute path as creation.
func (s *IncidentService) ResolveIncident(ctx context.Context, orderID, incidentID string, req ResolveIncidentRequest, userID string) (*entity.Incident, error) {
	if req.ResolutionNote == "" {
		return nil, ErrResolutionNoteRequired
	}

	inc, err := s.findOrderIncident(ctx, orderID, incidentID)
	if err != nil {
		return nil, err
	}
	if inc.Status == entity.IncidentStatusResolved {
		return nil, ErrIncidentResolved
	}

	now := time.Now()
	inc.Status = entity.IncidentStatusResolved
	inc.ResolutionNote = req.ResolutionNote
	inc.ResolvedBy = &userID
	inc.ResolvedAt = &now

	if err := s.repos.Incident.UpdateWithRollup(ctx, inc); err != nil {
		return nil, fmt.Errorf("failed to resolve incident: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "incident_resolve", "", "",
		fmt.Sprintf("Incidencia %s resuelta", inc.Type),
		entity.JSONB{"incident_id": inc.ID}); err != nil {
		s.logger.Warn("failed to log incident resolve", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publishUpdate(orderID, "incident_resolve")
	return inc, nil
}

func (s *IncidentService) ListIncidents(ctx context.Context, orderID string) ([]entity.Incident, error) {
	return s.repos.Incident.FindByOrder(ctx, orderID)
}

// UploadEvidence stores an evidence photo in object storage and appends its
// public URL to the incident.
func (s *IncidentService) UploadEvidence(ctx context.Context, orderID, incidentID string, reader io.Reader, fileName string, fileSize int64, contentType string, userID string) (*entity.Incident, error) {
	inc, err := s.findOrderIncident(ctx, orderID, incidentID)
	if err != nil {
		return nil, err
	}
	if s.minioClient == nil {
		return nil, errors.New("object storage is not configured")
	}

	objectName := fmt.Sprintf("incidents/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))
	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload evidence: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucketName, objectName)
	inc.EvidenceURLs = append(inc.EvidenceURLs, url)

	if err := s.repos.Incident.UpdateWithRollup(ctx, inc); err != nil {
		return nil, fmt.Errorf("failed to attach evidence: %w", err)
	}

	s.publishUpdate(orderID, "incident_evidence")
	return inc, nil
}

func (s *IncidentService) findOrderIncident(ctx context.Context, orderID, incidentID string) (*entity.Incident, error) {
	inc, err := s.repos.Incident.FindByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if inc.OrderID != orderID {
		return nil, repository.ErrNotFound
	}
	return inc, nil
}

func (s *IncidentService) publishUpdate(orderID, action string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishOrderUpdate(orderID, map[string]string{"order_id": orderID, "action": action})
}
