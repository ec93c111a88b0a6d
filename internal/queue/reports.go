package queue

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"wolt-report-service/internal/orders"
	"wolt-report-service/internal/report"
)

const (
	EventsExchange         = "wolt.events"
	ReportGeneratedRK      = "report.generated"
	RequestsExchange       = "wolt.report_requests"
	RequestsQueue          = "wolt.report_requests.process"
	RequestsDLQ            = "wolt.report_requests.dlq"
	RequestsRK             = "process"
	RequestsDeadRK         = "dead"
	defaultRequestRetries  = 3
	defaultRequestRetryGap = 5 * time.Second
)

type reportGeneratedEvent struct {
	Type       string    `json:"type"`
	GUID       string    `json:"guid"`
	Location   string    `json:"location"`
	OrderCount int       `json:"orderCount"`
	Currencies []string  `json:"currencies"`
	Skipped    []string  `json:"skipped,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EnsureReportTopology declares the events exchange and the request queue
// with its dead-letter queue.
func EnsureReportTopology(qc *Client) error {
	if err := qc.EnsureExchange(EventsExchange, "topic"); err != nil {
		return err
	}
	if err := qc.EnsureExchange(RequestsExchange, "direct"); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(RequestsDLQ, nil); err != nil {
		return err
	}
	if err := qc.BindQueue(RequestsDLQ, RequestsExchange, RequestsDeadRK); err != nil {
		return err
	}
	_, err := qc.EnsureQueue(RequestsQueue, amqp.Table{
		"x-dead-letter-exchange":    RequestsExchange,
		"x-dead-letter-routing-key": RequestsDeadRK,
	})
	if err != nil {
		return err
	}
	return qc.BindQueue(RequestsQueue, RequestsExchange, RequestsRK)
}

// Publisher sends report.generated events.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishReportGenerated(ctx context.Context, rep report.Report) error {
	return p.client.PublishJSON(ctx, EventsExchange, ReportGeneratedRK, newReportGeneratedEvent(rep))
}

func newReportGeneratedEvent(rep report.Report) reportGeneratedEvent {
	return reportGeneratedEvent{
		Type:       ReportGeneratedRK,
		GUID:       rep.ID,
		Location:   rep.Location,
		OrderCount: rep.OrderCount,
		Currencies: rep.Currencies,
		Skipped:    rep.Skipped,
		CreatedAt:  rep.CreatedAt,
	}
}

// Generator is the part of the report service the worker needs.
type Generator interface {
	Generate(ctx context.Context, blobs [][]byte) (*report.Report, error)
}

// ReportRequestHandler turns a queued order payload into a report. Bad
// payloads are not retried.
func ReportRequestHandler(gen Generator, logger *zap.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		blobs, err := orders.SplitPayload(body)
		if err == nil {
			var rep *report.Report
			rep, err = gen.Generate(ctx, blobs)
			if err == nil {
				logger.Info("queued report generated", zap.String("guid", rep.ID))
				return nil
			}
		}

		var malformed *orders.MalformedInputError
		if errors.As(err, &malformed) {
			logger.Warn("queued report rejected", zap.Error(err))
			return Permanent(err)
		}
		logger.Error("queued report failed", zap.Error(err))
		return err
	}
}

// RunReportWorker consumes report requests until ctx is done.
func RunReportWorker(ctx context.Context, qc *Client, gen Generator, logger *zap.Logger) error {
	if err := EnsureReportTopology(qc); err != nil {
		return errors.Wrap(err, "declare report topology")
	}
	return qc.ConsumeWithRetry(ctx, RequestsQueue, ReportRequestHandler(gen, logger), defaultRequestRetries, defaultRequestRetryGap)
}
