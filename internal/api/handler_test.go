package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Langsync/internal/dispatch"
	"github.com/shaiso/Langsync/internal/domain"
	"github.com/shaiso/Langsync/internal/mq"
	"github.com/shaiso/Langsync/internal/quota"
	"github.com/shaiso/Langsync/internal/repo"
)

// --- Fakes ---

type fakeStorage struct {
	accounts  map[string]*domain.Account
	pipelines map[string]*domain.Pipeline // key: account + "/" + id
	runs      map[string][]domain.PipelineRun
	steps     map[string][]domain.PipelineRunStep

	updatedWith []*domain.RunWithSteps
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		accounts:  map[string]*domain.Account{},
		pipelines: map[string]*domain.Pipeline{},
		runs:      map[string][]domain.PipelineRun{},
		steps:     map[string][]domain.PipelineRunStep{},
	}
}

func (s *fakeStorage) FindAccount(_ context.Context, id string) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return a, nil
}

func (s *fakeStorage) GetPipeline(_ context.Context, account, id string) (*domain.Pipeline, error) {
	p, ok := s.pipelines[account+"/"+id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStorage) ListPipelines(_ context.Context, account string) ([]domain.Pipeline, error) {
	var out []domain.Pipeline
	for key, p := range s.pipelines {
		if key == account+"/"+p.ID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStorage) UpdatePipelineWithRun(_ context.Context, p *domain.Pipeline, rws *domain.RunWithSteps) error {
	s.pipelines[p.Account+"/"+p.ID] = p
	s.updatedWith = append(s.updatedWith, rws)
	return nil
}

func (s *fakeStorage) GetRun(_ context.Context, pipeline, id string) (*domain.PipelineRun, error) {
	for _, run := range s.runs[pipeline] {
		if run.ID == id {
			return &run, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *fakeStorage) ListRuns(_ context.Context, pipeline string, limit int) ([]domain.PipelineRun, error) {
	runs := s.runs[pipeline]
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *fakeStorage) ListRunSteps(_ context.Context, pipeline, runID string) ([]domain.PipelineRunStep, error) {
	return s.steps[pipeline+"/"+runID], nil
}

func (s *fakeStorage) CreateSchedule(_ context.Context, _ *domain.SyncSchedule) error { return nil }
func (s *fakeStorage) ListSchedules(_ context.Context, _ string) ([]domain.SyncSchedule, error) {
	return nil, nil
}
func (s *fakeStorage) DeleteSchedule(_ context.Context, _ uuid.UUID) error { return nil }

type fakeDispatcher struct {
	run        *domain.PipelineRun
	err        error
	prepared   *domain.RunWithSteps
	prepareErr error
	published  [][]mq.IndexMessage
}

func (d *fakeDispatcher) DispatchFullPipeline(_ context.Context, _ *domain.Pipeline, _ domain.RunTrigger) (*domain.PipelineRun, error) {
	return d.run, d.err
}

func (d *fakeDispatcher) PrepareFullRun(_ context.Context, p *domain.Pipeline, trigger domain.RunTrigger) (*domain.RunWithSteps, []mq.IndexMessage, error) {
	if d.prepareErr != nil {
		return nil, nil, d.prepareErr
	}
	if d.prepared == nil {
		run := &domain.PipelineRun{ID: "run-prep", Pipeline: p.ID, Trigger: trigger, SyncMode: domain.SyncModeFullIndex}
		d.prepared = &domain.RunWithSteps{Run: run}
	}
	return d.prepared, []mq.IndexMessage{mq.NewIndexMessage("acc", p.ID, d.prepared.Run.ID, "ds-1")}, nil
}

func (d *fakeDispatcher) Publish(_ context.Context, messages []mq.IndexMessage) error {
	d.published = append(d.published, messages)
	return nil
}

type fakeRouter struct {
	workspaceID string
	runs        int
	err         error
}

func (r *fakeRouter) Route(_ context.Context, workspaceID string, _ domain.IntegrationChangeEvent) (int, error) {
	r.workspaceID = workspaceID
	return r.runs, r.err
}

const testSecret = "test-webhook-secret"

func newTestHandler(storage *fakeStorage, dispatcher *fakeDispatcher, router *fakeRouter) http.Handler {
	h := NewHandler(Config{
		Storage:       storage,
		Dispatcher:    dispatcher,
		WebhookRouter: router,
		Auth:          HeaderAuth{},
		WebhookSecret: []byte(testSecret),
		Logger:        slog.Default(),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func authedRequest(method, path string, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r.Header.Set(AccountHeader, "acc-1")
	return r
}

// --- TriggerPipeline ---

func TestTriggerPipeline_Success(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: true}
	dispatcher := &fakeDispatcher{run: &domain.PipelineRun{ID: "run-1", Pipeline: "pipe-1", Trigger: domain.RunTriggerManual, SyncMode: domain.SyncModeFullIndex}}
	mux := newTestHandler(storage, dispatcher, &fakeRouter{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("POST", "/api/v1/pipelines/pipe-1/trigger", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data RunResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Data.ID != "run-1" || resp.Data.Trigger != domain.RunTriggerManual {
		t.Errorf("unexpected run payload: %+v", resp.Data)
	}
}

func TestTriggerPipeline_UnknownPipeline(t *testing.T) {
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, &fakeRouter{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("POST", "/api/v1/pipelines/nope/trigger", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestTriggerPipeline_ForeignPipelineLooksMissing(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-2/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-2", IsEnabled: true}
	mux := newTestHandler(storage, &fakeDispatcher{}, &fakeRouter{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("POST", "/api/v1/pipelines/pipe-1/trigger", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign pipeline should look missing, got %d", rec.Code)
	}
}

func TestTriggerPipeline_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"disabled pipeline", dispatch.ErrPipelineDisabled, http.StatusBadRequest, ErrCodeBadRequest},
		{"quota exceeded", quota.ErrQuotasExceeded, http.StatusTooManyRequests, ErrCodeQuotaExceeded},
		{"suspended", quota.ErrAccountSuspended, http.StatusForbidden, ErrCodeForbidden},
		{"publish failed", &mq.PublishError{FailedIDs: []string{"a"}}, http.StatusBadGateway, ErrCodePublishFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newFakeStorage()
			storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: true}
			mux := newTestHandler(storage, &fakeDispatcher{err: tt.err}, &fakeRouter{})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, authedRequest("POST", "/api/v1/pipelines/pipe-1/trigger", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestTriggerPipeline_Unauthenticated(t *testing.T) {
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, &fakeRouter{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/pipelines/pipe-1/trigger", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// --- UpdatePipeline ---

func TestUpdatePipeline_EnableDispatchesInSameUpdate(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: false}
	dispatcher := &fakeDispatcher{}
	mux := newTestHandler(storage, dispatcher, &fakeRouter{})

	body := []byte(`{"is_enabled":true}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("PATCH", "/api/v1/pipelines/pipe-1", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(storage.updatedWith) != 1 {
		t.Fatalf("expected 1 update, got %d", len(storage.updatedWith))
	}
	// Run передан в то же обновление, что и pipeline
	if storage.updatedWith[0] == nil {
		t.Fatal("enable transition should carry a run into the update")
	}
	if storage.updatedWith[0].Run.Trigger != domain.RunTriggerSystem {
		t.Errorf("expected system trigger, got %s", storage.updatedWith[0].Run.Trigger)
	}
	// Публикация после коммита
	if len(dispatcher.published) != 1 {
		t.Errorf("expected publish after update, got %d", len(dispatcher.published))
	}
}

func TestUpdatePipeline_NoTransitionNoDispatch(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: true}
	dispatcher := &fakeDispatcher{}
	mux := newTestHandler(storage, dispatcher, &fakeRouter{})

	// true → true: не переход
	body := []byte(`{"is_enabled":true,"name":"renamed"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("PATCH", "/api/v1/pipelines/pipe-1", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(storage.updatedWith) != 1 || storage.updatedWith[0] != nil {
		t.Error("no run should be attached when enabled state does not transition")
	}
	if len(dispatcher.published) != 0 {
		t.Error("nothing should be published")
	}
}

func TestUpdatePipeline_DisableDoesNotDispatch(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: true}
	dispatcher := &fakeDispatcher{}
	mux := newTestHandler(storage, dispatcher, &fakeRouter{})

	body := []byte(`{"is_enabled":false}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("PATCH", "/api/v1/pipelines/pipe-1", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if storage.updatedWith[0] != nil {
		t.Error("disabling should not create a run")
	}
}

func TestUpdatePipeline_EnableQuotaRejectionRollsBack(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: false}
	dispatcher := &fakeDispatcher{prepareErr: quota.ErrQuotasExceeded}
	mux := newTestHandler(storage, dispatcher, &fakeRouter{})

	body := []byte(`{"is_enabled":true}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("PATCH", "/api/v1/pipelines/pipe-1", body))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if len(storage.updatedWith) != 0 {
		t.Error("update should not happen when quota check fails")
	}
}

// --- GetRun ---

func TestGetRun_DerivesState(t *testing.T) {
	storage := newFakeStorage()
	storage.pipelines["acc-1/pipe-1"] = &domain.Pipeline{ID: "pipe-1", Account: "acc-1", IsEnabled: true}
	storage.runs["pipe-1"] = []domain.PipelineRun{{ID: "run-1", Pipeline: "pipe-1", SyncMode: domain.SyncModeFullIndex}}
	storage.steps["pipe-1/run-1"] = []domain.PipelineRunStep{
		{Pipeline: "pipe-1", PipelineRun: "run-1", DataSource: "ds-1", Status: domain.StepStatusCompleted},
		{Pipeline: "pipe-1", PipelineRun: "run-1", DataSource: "ds-2", Status: domain.StepStatusFailed},
	}
	mux := newTestHandler(storage, &fakeDispatcher{}, &fakeRouter{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest("GET", "/api/v1/pipelines/pipe-1/runs/run-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data RunDetailResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Data.State != domain.RunStateFailed {
		t.Errorf("expected failed state, got %s", resp.Data.State)
	}
	if len(resp.Data.Steps) != 2 {
		t.Errorf("expected 2 steps, got %d", len(resp.Data.Steps))
	}
}

// --- LinearWebhook ---

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestLinearWebhook_ValidSignatureRoutes(t *testing.T) {
	router := &fakeRouter{runs: 2}
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, router)

	body := []byte(`{"action":"update","type":"Issue","organizationId":"org-1","data":{"id":"issue-1"}}`)
	req := httptest.NewRequest("POST", "/api/v1/webhooks/linear", bytes.NewReader(body))
	req.Header.Set("Linear-Signature", signBody(body))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if router.workspaceID != "org-1" {
		t.Errorf("expected routing for org-1, got %q", router.workspaceID)
	}
}

func TestLinearWebhook_MissingSignature(t *testing.T) {
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, &fakeRouter{})

	body := []byte(`{"action":"update","type":"Issue","organizationId":"org-1","data":{"id":"i"}}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/webhooks/linear", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLinearWebhook_TamperedBody(t *testing.T) {
	router := &fakeRouter{}
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, router)

	body := []byte(`{"action":"update","type":"Issue","organizationId":"org-1","data":{"id":"i"}}`)
	signature := signBody(body)
	tampered := bytes.Replace(body, []byte("update"), []byte("remove"), 1)

	req := httptest.NewRequest("POST", "/api/v1/webhooks/linear", bytes.NewReader(tampered))
	req.Header.Set("Linear-Signature", signature)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if router.workspaceID != "" {
		t.Error("tampered payload must not be routed")
	}
}

func TestLinearWebhook_RoutingFailureStillReturns200(t *testing.T) {
	router := &fakeRouter{err: errors.New("db down")}
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, router)

	body := []byte(`{"action":"update","type":"Issue","organizationId":"org-1","data":{"id":"i"}}`)
	req := httptest.NewRequest("POST", "/api/v1/webhooks/linear", bytes.NewReader(body))
	req.Header.Set("Linear-Signature", signBody(body))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// После проверки подписи внутренние сбои провайдеру не видны
	if rec.Code != http.StatusOK {
		t.Errorf("internal failure must not leak to the provider, got %d", rec.Code)
	}
	if router.workspaceID != "org-1" {
		t.Errorf("expected routing attempt for org-1, got %q", router.workspaceID)
	}
}

func TestLinearWebhook_IgnoredActionIs200(t *testing.T) {
	router := &fakeRouter{}
	mux := newTestHandler(newFakeStorage(), &fakeDispatcher{}, router)

	body := []byte(`{"action":"restore","type":"Issue","organizationId":"org-1","data":{"id":"i"}}`)
	req := httptest.NewRequest("POST", "/api/v1/webhooks/linear", bytes.NewReader(body))
	req.Header.Set("Linear-Signature", signBody(body))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ignored action should still be 200, got %d", rec.Code)
	}
	if router.workspaceID != "" {
		t.Error("ignored action must not be routed")
	}
}
