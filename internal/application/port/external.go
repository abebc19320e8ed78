package port

import (
	"context"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// MailMessage is one reminder email ready to send.
type MailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MailSender delivers reminder emails. Best effort: a failed send returns an
// error and nothing else; the caller owns retry policy.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}

// ChatSender posts a reminder to a chat channel (incoming webhook). Best
// effort, independently configured and independently failing from mail.
type ChatSender interface {
	Send(ctx context.Context, title, text string) error
}

// ReportSink consumes a finalized report and produces the physical artifact
// (workbook file). The core only guarantees the structure and numbers it
// hands over; formatting, naming and transport belong to the sink.
type ReportSink interface {
	Write(ctx context.Context, report *entity.Report, filter entity.BalanceFilter) (path string, err error)
}
