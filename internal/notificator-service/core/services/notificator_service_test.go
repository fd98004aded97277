package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hatbazar/internal/mylogger"
	"hatbazar/internal/notificator-service/core/domain/dto"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func testService(t *testing.T, mailer *fakeMailer) *NotificatorService {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewNotificatorService(context.Background(), log, nil, mailer)
}

func TestRenderAccepted(t *testing.T) {
	subject, body, err := Render(dto.DemandNotification{
		Type:         dto.TypeDemandAccepted,
		DemandId:     "d-1",
		Username:     "indro",
		VendorName:   "ravi",
		BusinessName: "Ravi Plumbing",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "accepted") || !strings.Contains(subject, "Ravi Plumbing") {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "indro") || !strings.Contains(body, "d-1") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestRenderDeliveredIncludesDistance(t *testing.T) {
	_, body, err := Render(dto.DemandNotification{
		Type:         dto.TypeDemandDelivered,
		DemandId:     "d-2",
		Username:     "indro",
		VendorName:   "ravi",
		BusinessName: "Ravi Plumbing",
		DistanceM:    42.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "42.5 meters") {
		t.Fatalf("body must carry the delivery distance: %s", body)
	}
}

func TestRenderUnknownType(t *testing.T) {
	if _, _, err := Render(dto.DemandNotification{Type: "demand_exploded"}); err == nil {
		t.Fatal("unknown type must be rejected")
	}
}

func TestHandleSkipsEmptyRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	svc := testService(t, mailer)

	err := svc.Handle(dto.DemandNotification{Type: dto.TypeDemandAccepted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("no mail may be sent without a recipient")
	}
}

func TestHandleSendsMail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := testService(t, mailer)

	err := svc.Handle(dto.DemandNotification{
		Type:      dto.TypeDemandAccepted,
		Recipient: "indro@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "indro@example.com" {
		t.Fatalf("expected one mail to indro@example.com, got %v", mailer.sent)
	}
}

func TestHandlePropagatesMailerFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := testService(t, mailer)

	err := svc.Handle(dto.DemandNotification{
		Type:      dto.TypeDemandAccepted,
		Recipient: "indro@example.com",
	})
	if err == nil {
		t.Fatal("mailer failure must surface so the delivery is nacked")
	}
}
