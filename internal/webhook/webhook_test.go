package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"testing"

	"github.com/shaiso/Langsync/internal/domain"
)

// --- VerifySignature ---

func sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"action":"update"}`)

	if err := VerifySignature(secret, body, sign(secret, body)); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
}

func TestVerifySignature_TamperedBody(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"action":"update"}`)
	signature := sign(secret, body)

	tampered := []byte(`{"action":"delete"}`)
	if err := VerifySignature(secret, tampered, signature); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	body := []byte(`{}`)
	signature := sign([]byte("right"), body)

	if err := VerifySignature([]byte("wrong"), body, signature); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignature_MalformedHeader(t *testing.T) {
	secret := []byte("s")
	body := []byte(`{}`)

	// Отклоняется до вычисления HMAC
	malformed := []string{
		"",
		"zz",
		"abc",                // нечётная длина
		"deadbeef",           // слишком коротко
		sign(secret, body)[:62] + "q!", // не hex
	}
	for _, sig := range malformed {
		if err := VerifySignature(secret, body, sig); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("signature %q: expected ErrInvalidSignature, got %v", sig, err)
		}
	}
}

// --- ParseLinearEvent ---

func TestParseLinearEvent_IssueUpdate(t *testing.T) {
	body := []byte(`{"action":"update","type":"Issue","organizationId":"org-1","data":{"id":"issue-42"}}`)

	event, workspaceID, err := ParseLinearEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workspaceID != "org-1" {
		t.Errorf("expected workspace org-1, got %s", workspaceID)
	}
	if event == nil {
		t.Fatal("expected event")
	}
	if event.Integration != domain.IntegrationLinear {
		t.Errorf("expected linear, got %s", event.Integration)
	}
	if event.Change.Action != domain.ChangeActionUpdate {
		t.Errorf("expected update, got %s", event.Change.Action)
	}
	if event.Change.DocumentID != "issue-42" {
		t.Errorf("expected issue-42, got %s", event.Change.DocumentID)
	}
	if event.Change.DocumentType != domain.LinearDocumentTypeIssue {
		t.Errorf("expected issue, got %s", event.Change.DocumentType)
	}
}

func TestParseLinearEvent_RemoveMapsToDelete(t *testing.T) {
	body := []byte(`{"action":"remove","type":"Issue","organizationId":"org-1","data":{"id":"issue-1"}}`)

	event, _, err := ParseLinearEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Change.Action != domain.ChangeActionDelete {
		t.Errorf("remove should map to delete, got %s", event.Change.Action)
	}
}

func TestParseLinearEvent_UnknownActionIsNoop(t *testing.T) {
	body := []byte(`{"action":"restore","type":"Issue","organizationId":"org-1","data":{"id":"issue-1"}}`)

	event, workspaceID, err := ParseLinearEvent(body)
	if err != nil {
		t.Fatalf("unknown action should not error: %v", err)
	}
	if event != nil {
		t.Error("unknown action should produce no event")
	}
	if workspaceID != "org-1" {
		t.Errorf("workspace id should still be returned, got %s", workspaceID)
	}
}

func TestParseLinearEvent_NonIssueTypeIsNoop(t *testing.T) {
	body := []byte(`{"action":"update","type":"Comment","organizationId":"org-1","data":{"id":"c-1"}}`)

	event, _, err := ParseLinearEvent(body)
	if err != nil {
		t.Fatalf("non-issue type should not error: %v", err)
	}
	if event != nil {
		t.Error("non-issue type should produce no event")
	}
}

func TestParseLinearEvent_Malformed(t *testing.T) {
	if _, _, err := ParseLinearEvent([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
	if _, _, err := ParseLinearEvent([]byte(`{"action":"update","type":"Issue"}`)); err == nil {
		t.Error("expected error for payload without organizationId")
	}
}

// --- Router ---

type fakeConnStore struct {
	conns []domain.IntegrationConnection
	err   error
}

func (s *fakeConnStore) ListConnections(_ context.Context, _ domain.Integration, _ string) ([]domain.IntegrationConnection, error) {
	return s.conns, s.err
}

type fakeDispatcher struct {
	dispatched []string
	failFor    map[string]error
	runsPer    int
}

func (d *fakeDispatcher) DispatchChangeEvent(_ context.Context, accountID string, _ domain.IntegrationChangeEvent) ([]*domain.PipelineRun, error) {
	if err := d.failFor[accountID]; err != nil {
		return nil, err
	}
	d.dispatched = append(d.dispatched, accountID)
	runs := make([]*domain.PipelineRun, d.runsPer)
	for i := range runs {
		runs[i] = &domain.PipelineRun{}
	}
	return runs, nil
}

func testEvent() domain.IntegrationChangeEvent {
	return domain.IntegrationChangeEvent{
		Integration: domain.IntegrationLinear,
		Change: domain.DocumentChange{
			Action:     domain.ChangeActionUpdate,
			DocumentID: "doc-1",
		},
	}
}

func TestRouter_FansOutToAllConnections(t *testing.T) {
	store := &fakeConnStore{conns: []domain.IntegrationConnection{
		{Account: "acc-1", WorkspaceID: "org-1"},
		{Account: "acc-2", WorkspaceID: "org-1"},
	}}
	dispatcher := &fakeDispatcher{runsPer: 1}
	r := NewRouter(store, dispatcher, slog.Default())

	total, err := r.Route(context.Background(), "org-1", testEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 runs, got %d", total)
	}
	if len(dispatcher.dispatched) != 2 {
		t.Errorf("expected both accounts dispatched, got %v", dispatcher.dispatched)
	}
}

func TestRouter_FailureOfOneAccountDoesNotBlockOthers(t *testing.T) {
	store := &fakeConnStore{conns: []domain.IntegrationConnection{
		{Account: "acc-bad", WorkspaceID: "org-1"},
		{Account: "acc-good", WorkspaceID: "org-1"},
	}}
	dispatcher := &fakeDispatcher{
		runsPer: 1,
		failFor: map[string]error{"acc-bad": errors.New("db down")},
	}
	r := NewRouter(store, dispatcher, slog.Default())

	total, err := r.Route(context.Background(), "org-1", testEvent())
	if err != nil {
		t.Fatalf("per-account failure should not propagate: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 run from healthy account, got %d", total)
	}
	if len(dispatcher.dispatched) != 1 || dispatcher.dispatched[0] != "acc-good" {
		t.Errorf("expected acc-good dispatched, got %v", dispatcher.dispatched)
	}
}

func TestRouter_NoConnectionsIsNoop(t *testing.T) {
	r := NewRouter(&fakeConnStore{}, &fakeDispatcher{}, slog.Default())

	total, err := r.Route(context.Background(), "org-unknown", testEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 runs, got %d", total)
	}
}
