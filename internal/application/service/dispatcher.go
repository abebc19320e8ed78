package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// Channel identifies one delivery channel.
type Channel string

const (
	ChannelMail Channel = "mail"
	ChannelChat Channel = "chat"
)

// ChannelOutcome records one channel's attempt for one action.
type ChannelOutcome struct {
	OK     bool
	Reason string
}

// Overall is the dispatch verdict across all configured channels.
type Overall string

const (
	OverallSent    Overall = "sent"
	OverallPartial Overall = "partially_sent"
	OverallFailed  Overall = "failed"
)

// DispatchResult is the per-channel outcome record of one dispatch.
type DispatchResult struct {
	Outcomes map[Channel]ChannelOutcome
	Overall  Overall
}

// PrimarySucceeded reports whether the primary channel (mail) went through.
// Only then may the action be marked sent.
func (r DispatchResult) PrimarySucceeded() bool {
	return r.Outcomes[ChannelMail].OK
}

// DispatcherConfig holds the delivery parameters for reminder content.
type DispatcherConfig struct {
	Recipient      string        // commercial follow-up inbox
	PortalURL      string        // link embedded in reminder bodies
	ChannelTimeout time.Duration // per-channel send bound
}

// Dispatcher sends one due action's reminder through the configured channels.
// Channels are attempted independently; one failing never aborts the others.
// Mail is the primary channel, chat is best effort and may be absent.
type Dispatcher struct {
	mail   port.MailSender
	chat   port.ChatSender // nil when the chat channel is not configured
	config DispatcherConfig
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher. chat may be nil.
func NewDispatcher(mail port.MailSender, chat port.ChatSender, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if config.ChannelTimeout <= 0 {
		config.ChannelTimeout = 15 * time.Second
	}
	return &Dispatcher{mail: mail, chat: chat, config: config, logger: logger}
}

// Dispatch attempts every configured channel for the action and records each
// outcome. client carries the enrichment for the reminder body; a zero-value
// client renders with placeholders.
func (d *Dispatcher) Dispatch(ctx context.Context, action *entity.FollowUpAction, client entity.Client) DispatchResult {
	result := DispatchResult{Outcomes: make(map[Channel]ChannelOutcome)}

	clientName := client.Name
	if clientName == "" {
		clientName = entity.UnknownClientName
	}
	subject := fmt.Sprintf("[Gestion Facturas] Accion (%s) - Cliente %s", action.Kind, clientName)

	result.Outcomes[ChannelMail] = d.sendMail(ctx, action, clientName, subject)
	if d.chat != nil {
		result.Outcomes[ChannelChat] = d.sendChat(ctx, action, clientName, subject)
	}

	succeeded, attempted := 0, 0
	for channel, outcome := range result.Outcomes {
		attempted++
		if outcome.OK {
			succeeded++
		} else {
			d.logger.Warn("Channel delivery failed",
				zap.Int64("action_id", action.ID),
				zap.String("channel", string(channel)),
				zap.String("reason", outcome.Reason))
		}
	}
	// Overall reports delivery across every attempted channel: sent only when
	// all succeeded, so mail-ok/chat-failed reads partially_sent. The sent
	// flag follows PrimarySucceeded alone, whatever Overall says.
	switch {
	case succeeded == attempted:
		result.Overall = OverallSent
	case succeeded > 0:
		result.Overall = OverallPartial
	default:
		result.Overall = OverallFailed
	}

	return result
}

func (d *Dispatcher) sendMail(ctx context.Context, action *entity.FollowUpAction, clientName, subject string) ChannelOutcome {
	sendCtx, cancel := context.WithTimeout(ctx, d.config.ChannelTimeout)
	defer cancel()

	msg := port.MailMessage{
		To:       d.config.Recipient,
		Subject:  subject,
		TextBody: d.textBody(action, clientName),
		HTMLBody: d.htmlBody(action, clientName),
	}
	if err := d.mail.Send(sendCtx, msg); err != nil {
		return ChannelOutcome{Reason: err.Error()}
	}
	return ChannelOutcome{OK: true}
}

func (d *Dispatcher) sendChat(ctx context.Context, action *entity.FollowUpAction, clientName, title string) ChannelOutcome {
	sendCtx, cancel := context.WithTimeout(ctx, d.config.ChannelTimeout)
	defer cancel()

	if err := d.chat.Send(sendCtx, title, d.textBody(action, clientName)); err != nil {
		return ChannelOutcome{Reason: err.Error()}
	}
	return ChannelOutcome{OK: true}
}

func (d *Dispatcher) textBody(action *entity.FollowUpAction, clientName string) string {
	body := fmt.Sprintf(
		"Accion de seguimiento pendiente.\n\nCliente: %s (tercero %s)\nFactura: %s\nTipo de accion: %s\nDescripcion: %s\nRegistrada por: %s\n",
		clientName, action.Tercero, action.InvoiceRef(), action.Kind, action.Description, action.Author,
	)
	if action.RemindAt != nil {
		body += fmt.Sprintf("Fecha de aviso: %s\n", action.RemindAt.Format("2006-01-02"))
	}
	if d.config.PortalURL != "" {
		body += fmt.Sprintf("\nGestion de facturas: %s\n", d.config.PortalURL)
	}
	return body
}

func (d *Dispatcher) htmlBody(action *entity.FollowUpAction, clientName string) string {
	remindAt := ""
	if action.RemindAt != nil {
		remindAt = action.RemindAt.Format("2006-01-02")
	}
	body := fmt.Sprintf(`<p>Accion de seguimiento pendiente.</p>
<ul>
<li><b>Cliente:</b> %s (tercero %s)</li>
<li><b>Factura:</b> %s</li>
<li><b>Tipo de accion:</b> %s</li>
<li><b>Descripcion:</b> %s</li>
<li><b>Registrada por:</b> %s</li>
<li><b>Fecha de aviso:</b> %s</li>
</ul>`,
		html.EscapeString(clientName),
		html.EscapeString(action.Tercero),
		html.EscapeString(action.InvoiceRef()),
		html.EscapeString(action.Kind),
		html.EscapeString(action.Description),
		html.EscapeString(action.Author),
		remindAt,
	)
	if d.config.PortalURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">Gestion de facturas</a></p>`, d.config.PortalURL)
	}
	return body
}
