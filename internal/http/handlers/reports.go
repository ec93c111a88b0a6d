package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/compose"
	"wolt-report-service/internal/middleware"
	"wolt-report-service/internal/orders"
	"wolt-report-service/pkg/response"
)

const summaryTopN = 5

type createReportResponse struct {
	GUID    string   `json:"guid"`
	Skipped []string `json:"skipped,omitempty"`
}

type rankedResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type summaryResponse struct {
	OrderCount int              `json:"orderCount"`
	Totals     []string         `json:"totals"`
	Averages   []string         `json:"averages"`
	TopVenues  []rankedResponse `json:"topVenues"`
	TopItems   []rankedResponse `json:"topItems"`
	Skipped    []string         `json:"skipped,omitempty"`
}

func (h *Handler) readDocuments(w http.ResponseWriter, r *http.Request) ([][]byte, error) {
	body, err := readBody(w, r, h.Config.MaxBodyBytes)
	if err != nil {
		return nil, err
	}
	return orders.SplitPayload(body)
}

// ReportCreate runs the whole pipeline on the posted order documents and
// answers with a bare {"guid": ...} object. Failures still use the error
// envelope.
func (h *Handler) ReportCreate(w http.ResponseWriter, r *http.Request) {
	docs, err := h.readDocuments(w, r)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	rep, err := h.Reports.Generate(r.Context(), docs)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	fields := []zap.Field{zap.String("guid", rep.ID), zap.String("requestId", middleware.GetRequestID(r.Context()))}
	if ac, ok := middleware.GetAuthContext(r.Context()); ok {
		fields = append(fields, zap.String("subject", ac.Subject))
	}
	h.Logger.Info("report created", fields...)

	response.JSON(w, http.StatusOK, createReportResponse{GUID: rep.ID, Skipped: rep.Skipped})
}

// ReportSummary returns the headline figures without rendering.
func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	docs, err := h.readDocuments(w, r)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	prepared, err := h.Reports.Prepare(r.Context(), docs)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	res := prepared.Result
	head := res.Headline()
	response.Success(w, summaryResponse{
		OrderCount: head.OrderCount,
		Totals:     amountStrings(head.Totals),
		Averages:   amountStrings(head.Averages),
		TopVenues:  rankedList(res.TopVenues(summaryTopN)),
		TopItems:   rankedList(res.TopItems(summaryTopN)),
		Skipped:    prepared.SkippedIDs(),
	})
}

func (h *Handler) ReportGet(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Reports.Lookup(r.Context(), readPathString(r, "guid"))
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	response.Success(w, rep)
}

func (h *Handler) ReportImage(w http.ResponseWriter, r *http.Request) {
	data, rep, err := h.Reports.Open(r.Context(), readPathString(r, "guid"))
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	response.Artifact(w, rep.Format.ContentType(), rep.ID+"."+rep.Format.Ext(), data)
}

func (h *Handler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	data, rep, err := h.Reports.Open(r.Context(), readPathString(r, "guid"))
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	pdf, err := compose.RenderPDF(data, rep.Format, compose.PDFMeta{
		ID:         rep.ID,
		OrderCount: rep.OrderCount,
		CreatedAt:  rep.CreatedAt,
	})
	if err != nil {
		h.Logger.Error("failed to render report pdf", zap.String("guid", rep.ID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render report PDF")
		return
	}
	response.Artifact(w, "application/pdf", rep.ID+".pdf", pdf.Bytes())
}

func amountStrings(in []aggregate.Amount) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, a.String())
	}
	return out
}

func rankedList(in []aggregate.Ranked) []rankedResponse {
	out := make([]rankedResponse, 0, len(in))
	for _, r := range in {
		out = append(out, rankedResponse{Name: r.Name, Amount: r.Amount().String()})
	}
	return out
}
