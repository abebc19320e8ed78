package service

import (
	"context"
	"sync"
	"time"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// mockInvoiceRepo serves a fixture through the criteria predicate, simulating
// the repository's SQL pushdown.
type mockInvoiceRepo struct {
	invoices  []entity.Invoice
	queryFunc func(ctx context.Context, criteria entity.Criteria, now time.Time) ([]entity.Invoice, error)
}

func (m *mockInvoiceRepo) Query(ctx context.Context, criteria entity.Criteria, now time.Time) ([]entity.Invoice, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, criteria, now)
	}
	var out []entity.Invoice
	for i := range m.invoices {
		if criteria.Matches(&m.invoices[i], now) {
			out = append(out, m.invoices[i])
		}
	}
	return out, nil
}

type mockClientRepo struct {
	clients      map[string]entity.Client
	getByIDsFunc func(ctx context.Context, ids []string) (map[string]entity.Client, error)
}

func (m *mockClientRepo) GetByIDs(ctx context.Context, ids []string) (map[string]entity.Client, error) {
	if m.getByIDsFunc != nil {
		return m.getByIDsFunc(ctx, ids)
	}
	out := make(map[string]entity.Client)
	for _, id := range ids {
		if c, ok := m.clients[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// mockActionRepo keeps sent state so idempotence across runs is observable.
type mockActionRepo struct {
	mu           sync.Mutex
	actions      []entity.FollowUpAction
	markSentFunc func(ctx context.Context, id int64, at time.Time) error
}

func (m *mockActionRepo) ListDue(ctx context.Context, cutoff time.Time) ([]entity.FollowUpAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []entity.FollowUpAction
	for _, action := range m.actions {
		if action.Due(cutoff) {
			due = append(due, action)
		}
	}
	return due, nil
}

func (m *mockActionRepo) MarkSent(ctx context.Context, id int64, at time.Time) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.actions {
		if m.actions[i].ID == id {
			m.actions[i].Sent = true
			sentAt := at
			m.actions[i].SentAt = &sentAt
		}
	}
	return nil
}

type mockMailSender struct {
	mu       sync.Mutex
	sent     []port.MailMessage
	sendFunc func(ctx context.Context, msg port.MailMessage) error
}

func (m *mockMailSender) Send(ctx context.Context, msg port.MailMessage) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailSender) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockChatSender struct {
	mu       sync.Mutex
	sent     []string
	sendFunc func(ctx context.Context, title, text string) error
}

func (m *mockChatSender) Send(ctx context.Context, title, text string) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, title, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, title)
	return nil
}

type mockReportSink struct {
	writeFunc func(ctx context.Context, report *entity.Report, filter entity.BalanceFilter) (string, error)
}

func (m *mockReportSink) Write(ctx context.Context, report *entity.Report, filter entity.BalanceFilter) (string, error) {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, report, filter)
	}
	return "informes/test.xlsx", nil
}
