package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sethvargo/go-retry"

	"github.com/detoxsabeho/orders-backend/internal/orders"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// emailSender is the slice of the Resend client the service depends on.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Service sends the transactional mail around order intake. Every method is
// best-effort with bounded retry; callers run them after the HTTP response
// and only log failures.
type Service interface {
	SendCustomerConfirmation(ctx context.Context, order *orders.Order) error
	SendAdminNotification(ctx context.Context, order *orders.Order) error
	SendBackup(ctx context.Context, subject, text string, ledgerJSON []byte) error
}

type service struct {
	sender     emailSender
	emailCfg   config.EmailConfig
	adminEmail string
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the mail service on top of a Resend client.
func NewService(emailCfg config.EmailConfig, adminCfg config.AdminConfig, logg *logger.Logger) (Service, error) {
	if emailCfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	client := resend.NewClient(emailCfg.ResendAPIKey)
	return newService(client.Emails, emailCfg, adminCfg, logg)
}

func newService(sender emailSender, emailCfg config.EmailConfig, adminCfg config.AdminConfig, logg *logger.Logger) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if adminCfg.Email == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		sender:     sender,
		emailCfg:   emailCfg,
		adminEmail: adminCfg.Email,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// SendCustomerConfirmation mails the order summary to the buyer.
func (s *service) SendCustomerConfirmation(ctx context.Context, order *orders.Order) error {
	html, err := renderTemplate("customer.html.tmpl", s.buildTemplateData(order))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render customer email")
	}

	return s.sendWithRetry(ctx, "customer", &resend.SendEmailRequest{
		From:    s.emailCfg.FromAddress(),
		To:      []string{order.Customer.Email},
		Subject: fmt.Sprintf("¡Gracias por tu pedido! - Pedido #%d", order.OrderNumber),
		Html:    html,
		ReplyTo: s.adminEmail,
	})
}

// SendAdminNotification mails the fulfillment alert to the operator.
func (s *service) SendAdminNotification(ctx context.Context, order *orders.Order) error {
	html, err := renderTemplate("admin.html.tmpl", s.buildTemplateData(order))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render admin email")
	}

	return s.sendWithRetry(ctx, "admin", &resend.SendEmailRequest{
		From:    s.emailCfg.FromAddress(),
		To:      []string{s.adminEmail},
		Subject: fmt.Sprintf("🔔 Nuevo Pedido #%d - %s", order.OrderNumber, order.Customer.Name),
		Html:    html,
		ReplyTo: order.Customer.Email,
	})
}

// SendBackup mails the raw ledger JSON to the operator as an attachment.
func (s *service) SendBackup(ctx context.Context, subject, text string, ledgerJSON []byte) error {
	filename := fmt.Sprintf("orders_backup_%s.json", s.now().Format("2006-01-02_150405"))
	return s.sendWithRetry(ctx, "backup", &resend.SendEmailRequest{
		From:    s.emailCfg.SystemAddress(),
		To:      []string{s.adminEmail},
		Subject: subject,
		Text:    text,
		Attachments: []*resend.Attachment{
			{
				Filename: filename,
				Content:  ledgerJSON,
			},
		},
	})
}

// sendWithRetry attempts delivery up to MaxRetries times with exponential
// backoff between attempts.
func (s *service) sendWithRetry(ctx context.Context, kind string, req *resend.SendEmailRequest) error {
	maxRetries := s.emailCfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(maxRetries-1), retry.NewExponential(2*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		sent, err := s.sender.SendWithContext(ctx, req)
		if err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"email_kind": kind,
				"attempt":    attempt,
			}), "email delivery failed")
			return retry.RetryableError(err)
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"email_kind": kind,
			"attempt":    attempt,
			"email_id":   sent.Id,
		}), "email delivered")
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("sending %s email", kind))
	}
	return nil
}
