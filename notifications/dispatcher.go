package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"barberqueue-backend/models"
)

// Recorder stores the outcome of each delivery attempt.
type Recorder interface {
	Record(ctx context.Context, entry models.NotificationLog) error
}

// Dispatcher fans a completion out to every sink on background goroutines.
// Attempts are never retried and never block the caller.
type Dispatcher struct {
	sinks    []Sink
	timeout  time.Duration
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, recorder Recorder, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sinks:    sinks,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sinks names the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(appt models.Appointment) {
	payload := PayloadFromAppointment(appt)
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(sink Sink) {
			defer d.wg.Done()
			d.deliver(sink, appt, payload)
		}(sink)
	}
}

func (d *Dispatcher) deliver(sink Sink, appt models.Appointment, payload Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	entry := models.NotificationLog{
		AppointmentID: appt.ID,
		Sink:          sink.Name(),
		ClientName:    appt.ClientName,
		Status:        models.NotificationSent,
	}
	if err := sink.Send(ctx, payload); err != nil {
		entry.Status = models.NotificationFailed
		entry.ErrorMessage = err.Error()
		d.logger.Warn("notification failed",
			slog.String("sink", sink.Name()),
			slog.String("client", appt.ClientName),
			slog.String("error", err.Error()))
	} else {
		d.logger.Info("notification sent",
			slog.String("sink", sink.Name()),
			slog.String("client", appt.ClientName))
	}
	entry.SentAt = d.now()

	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(context.Background(), entry); err != nil {
		d.logger.Error("failed to record notification", slog.String("error", err.Error()))
	}
}

// Wait blocks until every dispatched attempt has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
