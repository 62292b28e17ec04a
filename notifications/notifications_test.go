package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"barberqueue-backend/models"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func sampleAppointment() models.Appointment {
	started := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	minutes := 25
	return models.Appointment{
		ID:              uuid.New(),
		ClientName:      "Alice",
		HaircutTypeName: "Fade",
		Price:           decimal.RequireFromString("35"),
		StartedAt:       &started,
		FinishedAt:      started.Add(25 * time.Minute),
		DurationMinutes: &minutes,
	}
}

func TestPayloadJSONShape(t *testing.T) {
	body, err := json.Marshal(PayloadFromAppointment(sampleAppointment()))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got["client_name"] != "Alice" || got["haircut_type"] != "Fade" {
		t.Fatalf("payload = %s", body)
	}
	if cost, ok := got["cost"].(float64); !ok || cost != 35 {
		t.Fatalf("cost should be a JSON number, got %s", body)
	}
	if got["timestamp"] != "2026-03-02T14:25:00Z" || got["duration"] != float64(25) {
		t.Fatalf("payload = %s", body)
	}

	a := sampleAppointment()
	a.DurationMinutes = nil
	body, _ = json.Marshal(PayloadFromAppointment(a))
	if !strings.Contains(string(body), `"duration":null`) {
		t.Fatalf("missing duration should be null: %s", body)
	}
}

func TestWebhookSink(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"accepted", http.StatusOK, `{"success":true,"message":"ok","data":{}}`, false},
		{"rejected", http.StatusOK, `{"success":false,"message":"sheet offline"}`, true},
		{"server error", http.StatusBadGateway, `bad gateway`, true},
		{"not json", http.StatusOK, `<html>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received Payload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
				}
				json.NewDecoder(r.Body).Decode(&received)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewWebhookSink(srv.URL, time.Second).Send(context.Background(), PayloadFromAppointment(sampleAppointment()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if received.ClientName != "Alice" {
				t.Fatalf("received = %+v", received)
			}
		})
	}
}

func TestWebhookSinkTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	err := NewWebhookSink(srv.URL, 50*time.Millisecond).Send(context.Background(), Payload{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestKafkaSink(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "appointments" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "Alice" {
			return errors.New("wrong key " + string(key))
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sink := NewKafkaSink(producer, "appointments")
	p := PayloadFromAppointment(sampleAppointment())
	if err := sink.Send(context.Background(), p); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := sink.Send(context.Background(), p); err == nil {
		t.Fatal("second send should fail")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type fakeMessages struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSink(t *testing.T) {
	fake := &fakeMessages{}
	sink := &TwilioSink{api: fake, from: "+15550001", to: "whatsapp:+5511999990000", currency: "R$", loc: time.UTC}

	if err := sink.Send(context.Background(), PayloadFromAppointment(sampleAppointment())); err != nil {
		t.Fatalf("send: %v", err)
	}
	if *fake.params.To != "whatsapp:+5511999990000" || *fake.params.From != "+15550001" {
		t.Fatalf("params = %+v", fake.params)
	}
	for _, want := range []string{"Alice", "Fade", "R$ 35.00", "25 min"} {
		if !strings.Contains(*fake.params.Body, want) {
			t.Fatalf("body %q missing %q", *fake.params.Body, want)
		}
	}

	fake.err = errors.New("unauthorized")
	if err := sink.Send(context.Background(), Payload{}); err == nil {
		t.Fatal("expected error")
	}
}

type stubSink struct {
	name  string
	err   error
	delay time.Duration
}

func (s stubSink) Name() string { return s.name }

func (s stubSink) Send(ctx context.Context, p Payload) error {
	select {
	case <-time.After(s.delay):
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []models.NotificationLog
}

func (m *memoryRecorder) Record(ctx context.Context, entry models.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func TestDispatcherDoesNotBlockAndRecordsOutcome(t *testing.T) {
	rec := &memoryRecorder{}
	d := NewDispatcher(nil, rec, 100*time.Millisecond,
		stubSink{name: "ok", delay: 10 * time.Millisecond},
		stubSink{name: "broken", err: errors.New("boom")},
		stubSink{name: "slow", delay: time.Second},
	)

	start := time.Now()
	d.Dispatch(sampleAppointment())
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("Dispatch blocked for %v", elapsed)
	}
	d.Wait()

	status := map[string]string{}
	for _, e := range rec.entries {
		status[e.Sink] = e.Status
	}
	want := map[string]string{
		"ok":     models.NotificationSent,
		"broken": models.NotificationFailed,
		"slow":   models.NotificationFailed,
	}
	for sink, s := range want {
		if status[sink] != s {
			t.Errorf("%s status = %q, want %q", sink, status[sink], s)
		}
	}
}
