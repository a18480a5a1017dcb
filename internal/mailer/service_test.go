package mailer

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detoxsabeho/orders-backend/internal/orders"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	"github.com/detoxsabeho/orders-backend/pkg/enums"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

type stubSender struct {
	requests  []*resend.SendEmailRequest
	failUntil int
	calls     int
}

func (s *stubSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	s.calls++
	if s.calls <= s.failUntil {
		return nil, fmt.Errorf("resend 5xx")
	}
	s.requests = append(s.requests, params)
	return &resend.SendEmailResponse{Id: fmt.Sprintf("email-%d", s.calls)}, nil
}

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		FromDomain:   "detoxsabeho.com",
		FromName:     "Detox Sabeho",
		MaxRetries:   3,
		DashboardURL: "https://detoxsabeho.com/admin",
	}
}

func testOrder() *orders.Order {
	ts := time.Date(2026, 3, 1, 14, 30, 0, 0, time.FixedZone("-05", -5*60*60))
	return &orders.Order{
		ID:          "ORD-1770000000-A1B2",
		OrderNumber: 42,
		Timestamp:   ts,
		Status:      enums.OrderStatusPending,
		Product: orders.ProductSnapshot{
			ID: 1, Name: "Kit Individual", Quantity: 2, Price: 90000, Shipping: 0, Total: 180000,
		},
		Customer: orders.CustomerSnapshot{
			Name: "Ana Ruiz", Phone: "3001234567", Email: "ana@example.com",
			Department: "Cundinamarca", City: "Bogotá", Address: "Calle 123 #45-67",
			Observations: "dejar en portería",
		},
		Metadata: orders.RequestMetadata{IP: "181.49.10.20", UserAgent: "Mozilla/5.0"},
	}
}

func newTestService(t *testing.T, sender emailSender) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := newService(sender, testEmailConfig(), config.AdminConfig{Email: "admin@detoxsabeho.com", PasswordHash: "x"}, logg)
	require.NoError(t, err)
	return svc
}

func TestSendCustomerConfirmation(t *testing.T) {
	sender := &stubSender{}
	svc := newTestService(t, sender)

	require.NoError(t, svc.SendCustomerConfirmation(context.Background(), testOrder()))
	require.Len(t, sender.requests, 1)

	req := sender.requests[0]
	assert.Equal(t, "Detox Sabeho <pedidos@detoxsabeho.com>", req.From)
	assert.Equal(t, []string{"ana@example.com"}, req.To)
	assert.Equal(t, "¡Gracias por tu pedido! - Pedido #42", req.Subject)
	assert.Equal(t, "admin@detoxsabeho.com", req.ReplyTo)
	assert.Contains(t, req.Html, "Ana Ruiz")
	assert.Contains(t, req.Html, "Pedido #42")
	assert.Contains(t, req.Html, "$180.000")
	assert.Contains(t, req.Html, "GRATIS", "zero shipping renders as free")
	assert.Contains(t, req.Html, "dejar en portería")
}

func TestSendAdminNotification(t *testing.T) {
	sender := &stubSender{}
	svc := newTestService(t, sender)

	require.NoError(t, svc.SendAdminNotification(context.Background(), testOrder()))
	require.Len(t, sender.requests, 1)

	req := sender.requests[0]
	assert.Equal(t, []string{"admin@detoxsabeho.com"}, req.To)
	assert.Equal(t, "🔔 Nuevo Pedido #42 - Ana Ruiz", req.Subject)
	assert.Equal(t, "ana@example.com", req.ReplyTo)
	assert.Contains(t, req.Html, "ORD-1770000000-A1B2")
	assert.Contains(t, req.Html, "181.49.10.20")
	assert.Contains(t, req.Html, "01/03/2026 14:30:00")
}

func TestSendBackupAttachesLedger(t *testing.T) {
	sender := &stubSender{}
	svc := newTestService(t, sender)

	payload := []byte(`{"orders":[]}`)
	require.NoError(t, svc.SendBackup(context.Background(), "Backup diario", "Adjunto el backup.", payload))
	require.Len(t, sender.requests, 1)

	req := sender.requests[0]
	assert.Equal(t, "Sistema Detox Sabeho <sistema@detoxsabeho.com>", req.From)
	assert.Equal(t, "Backup diario", req.Subject)
	assert.Equal(t, "Adjunto el backup.", req.Text)
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, payload, req.Attachments[0].Content)
	assert.Regexp(t, `^orders_backup_\d{4}-\d{2}-\d{2}_\d{6}\.json$`, req.Attachments[0].Filename)
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	sender := &stubSender{failUntil: 1}
	svc := newTestService(t, sender)

	require.NoError(t, svc.SendCustomerConfirmation(context.Background(), testOrder()))
	assert.Equal(t, 2, sender.calls)
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	sender := &stubSender{failUntil: 10}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := newService(sender, config.EmailConfig{
		FromDomain: "detoxsabeho.com",
		FromName:   "Detox Sabeho",
		MaxRetries: 1,
	}, config.AdminConfig{Email: "admin@detoxsabeho.com", PasswordHash: "x"}, logg)
	require.NoError(t, err)

	err = svc.SendAdminNotification(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, 1, sender.calls)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0", formatPrice(0))
	assert.Equal(t, "$900", formatPrice(900))
	assert.Equal(t, "$90.000", formatPrice(90000))
	assert.Equal(t, "$1.250.000", formatPrice(1250000))
}
