package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"

	"github.com/robfig/cron/v3"
)

// ReportSource supplies the day's figures.
type ReportSource interface {
	Stats(ctx context.Context, r queue.Range) (queue.Stats, error)
	Appointments(ctx context.Context, r queue.Range) ([]models.Appointment, error)
	DayRange(t time.Time) queue.Range
	Location() *time.Location
}

// TextSender delivers a plain text message, e.g. through Twilio.
type TextSender interface {
	SendText(ctx context.Context, body string) error
}

// ReportService builds daily reports and sends the end-of-day summary on a
// cron schedule.
type ReportService struct {
	source   ReportSource
	sender   TextSender
	currency string
	logger   *slog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewReportService(source ReportSource, sender TextSender, currency string, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		source:   source,
		sender:   sender,
		currency: currency,
		logger:   logger,
		now:      time.Now,
		cron:     cron.New(cron.WithLocation(source.Location())),
	}
}

// Daily collects the report for the local day containing day.
func (s *ReportService) Daily(ctx context.Context, day time.Time) (DailyReport, error) {
	r := s.source.DayRange(day)
	stats, err := s.source.Stats(ctx, r)
	if err != nil {
		return DailyReport{}, err
	}
	appts, err := s.source.Appointments(ctx, r)
	if err != nil {
		return DailyReport{}, err
	}
	return DailyReport{
		Day:          r.From,
		Stats:        stats,
		Appointments: appts,
		Currency:     s.currency,
		Location:     s.source.Location(),
	}, nil
}

// SendDailySummary sends today's summary. Without a sender it is only logged.
func (s *ReportService) SendDailySummary(ctx context.Context) error {
	report, err := s.Daily(ctx, s.now())
	if err != nil {
		return fmt.Errorf("build daily summary: %w", err)
	}
	s.logger.Info("daily summary",
		slog.Int64("served", report.Stats.TotalAppointments),
		slog.String("revenue", report.Stats.TotalRevenue.StringFixed(2)))
	if s.sender == nil {
		return nil
	}
	if err := s.sender.SendText(ctx, report.Summary()); err != nil {
		return fmt.Errorf("send daily summary: %w", err)
	}
	return nil
}

// StartScheduler registers the summary job on spec and starts the cron runner.
func (s *ReportService) StartScheduler(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.SendDailySummary(ctx); err != nil {
			s.logger.Error("daily summary failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("report scheduler started", slog.String("schedule", spec))
	return nil
}

// Stop waits for a running job to finish.
func (s *ReportService) Stop() {
	<-s.cron.Stop().Done()
}
