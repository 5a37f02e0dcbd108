package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/pkg/export"
)

const (
	exportPageSize = 100
	exportMaxRows  = 10000
	exportDate     = "2006-01-02"
)

type campaignLister interface {
	ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]models.RequestDetail, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders the back-office campaign report.
type ExportService struct {
	actors    actorResolver
	campaigns campaignLister
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// pkg/export implementations.
func NewExportService(actors actorResolver, campaigns campaignLister, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		actors:    actors,
		campaigns: campaigns,
		csv:       csv,
		pdf:       pdf,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Campaigns renders every campaign matching req as CSV or PDF.
func (s *ExportService) Campaigns(ctx context.Context, callerID string, req dto.CampaignExportRequest) (*dto.ExportFile, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid export request")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fieldValidation("invalid status filter", map[string]interface{}{"status": "is not a supported value"})
	}

	details, err := s.collect(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	dataset := campaignDataset(details)

	var content []byte
	var contentType string
	switch req.Format {
	case "csv":
		content, err = s.csv.Render(dataset)
		contentType = "text/csv"
	default:
		content, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("render campaign export", zap.String("format", req.Format), zap.Error(err))
		return nil, fmt.Errorf("render %s export: %w", req.Format, err)
	}

	s.logger.Info("campaign export generated",
		zap.String("admin_id", actor.UserID),
		zap.String("format", req.Format),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("campaigns_%s.%s", s.now().UTC().Format("20060102_150405"), req.Format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func (s *ExportService) collect(ctx context.Context, status *models.CampaignStatus) ([]models.RequestDetail, error) {
	var all []models.RequestDetail
	for page := 1; ; page++ {
		details, total, err := s.campaigns.ListCampaigns(ctx, models.CampaignFilter{Status: status, Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, storeFailure(s.logger, "list campaigns for export", err)
		}
		all = append(all, details...)
		if len(details) < exportPageSize || len(all) >= total {
			return all, nil
		}
		if len(all) >= exportMaxRows {
			s.logger.Warn("campaign export truncated", zap.Int("rows", len(all)), zap.Int("total", total))
			return all, nil
		}
	}
}

func campaignDataset(details []models.RequestDetail) export.Dataset {
	data := export.Dataset{
		Title:   "Campaigns",
		Headers: []string{"Campaign", "Business", "Creator", "Status", "Budget", "Start", "End", "Accepted", "Completed"},
		Rows:    make([][]string, 0, len(details)),
	}
	for _, detail := range details {
		view, ok := detail.CampaignView()
		if !ok {
			continue
		}
		data.Rows = append(data.Rows, []string{
			view.CampaignName,
			detail.Business.BrandName,
			detail.Creator.FullName,
			string(view.Status),
			deref(view.BudgetRange),
			formatDate(view.StartDate),
			formatDate(view.EndDate),
			formatDate(view.AcceptedAt),
			formatDate(view.CompletedAt),
		})
	}
	return data
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(exportDate)
}
