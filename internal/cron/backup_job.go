package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/detoxsabeho/orders-backend/internal/orders"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// ledgerReader is the slice of the order store the backup job needs.
type ledgerReader interface {
	Read(ctx context.Context) (*orders.Ledger, error)
}

// backupSender delivers the ledger snapshot.
type backupSender interface {
	SendBackup(ctx context.Context, subject, text string, ledgerJSON []byte) error
}

// BackupJobParams configure the ledger backup job.
type BackupJobParams struct {
	Logger *logger.Logger
	Store  ledgerReader
	Mailer backupSender
}

// NewBackupJob mails the full ledger to the operator as a JSON attachment so
// a lost or corrupted data file can be restored from the inbox.
func NewBackupJob(params BackupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &backupJob{
		logg:   params.Logger,
		store:  params.Store,
		mailer: params.Mailer,
		now:    time.Now,
	}, nil
}

type backupJob struct {
	logg   *logger.Logger
	store  ledgerReader
	mailer backupSender
	now    func() time.Time
}

func (j *backupJob) Name() string { return "ledger-backup" }

func (j *backupJob) Run(ctx context.Context) error {
	ledger, err := j.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	encoded, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	subject := fmt.Sprintf("Backup de Pedidos - %s", j.now().Format("2006-01-02 15:04:05"))
	text := "Backup automático del archivo de pedidos adjunto."
	if err := j.mailer.SendBackup(ctx, subject, text, encoded); err != nil {
		return fmt.Errorf("send backup: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"orders":     ledger.Metadata.TotalOrders,
		"size_bytes": len(encoded),
	})
	j.logg.Info(logCtx, "ledger backup delivered")
	return nil
}
