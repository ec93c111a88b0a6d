package handlers

import (
	"context"

	"go.uber.org/zap"

	"wolt-report-service/internal/config"
	"wolt-report-service/internal/report"
)

// ReportService is the slice of report.Service the HTTP layer needs.
type ReportService interface {
	Prepare(ctx context.Context, blobs [][]byte) (report.Prepared, error)
	Generate(ctx context.Context, blobs [][]byte) (*report.Report, error)
	Lookup(ctx context.Context, id string) (*report.Report, error)
	Open(ctx context.Context, id string) ([]byte, *report.Report, error)
}

type Handler struct {
	Logger  *zap.Logger
	Config  config.Config
	Reports ReportService
}
