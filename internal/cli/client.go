package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// PipelineResponse — pipeline из API.
type PipelineResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	IsEnabled bool           `json:"is_enabled"`
	IsDefault bool           `json:"is_default"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

// RunResponse — run из API.
type RunResponse struct {
	ID          string         `json:"id"`
	Pipeline    string         `json:"pipeline"`
	Trigger     string         `json:"trigger"`
	SyncMode    string         `json:"sync_mode"`
	ChangeEvent map[string]any `json:"integration_change_event,omitempty"`
	State       string         `json:"state,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

// RunDetailResponse — run с шагами и производным состоянием.
type RunDetailResponse struct {
	RunResponse
	State string         `json:"state"`
	Steps []StepResponse `json:"steps"`
}

// StepResponse — шаг run'а из API.
type StepResponse struct {
	DataSource  string         `json:"data_source"`
	Status      string         `json:"status"`
	Error       map[string]any `json:"error,omitempty"`
	CreatedAt   string         `json:"created_at"`
	StartedAt   string         `json:"started_at,omitempty"`
	CompletedAt string         `json:"completed_at,omitempty"`
}

// ScheduleResponse — расписание из API.
type ScheduleResponse struct {
	ID          string `json:"id"`
	Pipeline    string `json:"pipeline"`
	Name        string `json:"name,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone"`
	Enabled     bool   `json:"enabled"`
	NextDueAt   string `json:"next_due_at,omitempty"`
	LastRunAt   string `json:"last_run_at,omitempty"`
	LastRunID   string `json:"last_run_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ServiceProgress — прогресс по одной квоте.
type ServiceProgress struct {
	Current int     `json:"current"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
}

// QuotaResponse — прогресс квот аккаунта из API.
type QuotaResponse struct {
	TotalIndexedDocuments      ServiceProgress `json:"totalIndexedDocuments"`
	TotalIndexedDocumentTokens ServiceProgress `json:"totalIndexedDocumentTokens"`
}

// --- Request types ---

// UpdatePipelineRequest — частичное обновление pipeline.
type UpdatePipelineRequest struct {
	Name      *string `json:"name,omitempty"`
	IsEnabled *bool   `json:"is_enabled,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// CreateScheduleRequest — создание расписания.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Langsync API.
type Client struct {
	baseURL    string
	accountID  string
	httpClient *http.Client
}

// NewClient создаёт клиент для API от имени аккаунта.
func NewClient(baseURL, accountID string) *Client {
	return &Client{
		baseURL:   baseURL,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Pipelines ---

// ListPipelines возвращает pipelines аккаунта.
func (c *Client) ListPipelines() ([]PipelineResponse, error) {
	var pipelines []PipelineResponse
	err := c.list("/api/v1/pipelines", nil, &pipelines)
	return pipelines, err
}

// GetPipeline возвращает pipeline по ID.
func (c *Client) GetPipeline(id string) (*PipelineResponse, error) {
	var p PipelineResponse
	err := c.get("/api/v1/pipelines/"+id, &p)
	return &p, err
}

// UpdatePipeline частично обновляет pipeline.
func (c *Client) UpdatePipeline(id string, req UpdatePipelineRequest) (*PipelineResponse, error) {
	var p PipelineResponse
	err := c.patch("/api/v1/pipelines/"+id, req, &p)
	return &p, err
}

// TriggerPipeline запускает полную индексацию вручную.
func (c *Client) TriggerPipeline(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/pipelines/"+id+"/trigger", nil, &run)
	return &run, err
}

// --- Runs ---

// ListRuns возвращает последние runs pipeline.
func (c *Client) ListRuns(pipelineID string, limit int) ([]RunResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var runs []RunResponse
	err := c.list("/api/v1/pipelines/"+pipelineID+"/runs", params, &runs)
	return runs, err
}

// GetRun возвращает run с шагами и состоянием.
func (c *Client) GetRun(pipelineID, runID string) (*RunDetailResponse, error) {
	var run RunDetailResponse
	err := c.get("/api/v1/pipelines/"+pipelineID+"/runs/"+runID, &run)
	return &run, err
}

// ListSteps возвращает шаги run'а.
func (c *Client) ListSteps(pipelineID, runID string) ([]StepResponse, error) {
	var steps []StepResponse
	err := c.list("/api/v1/pipelines/"+pipelineID+"/runs/"+runID+"/steps", nil, &steps)
	return steps, err
}

// --- Schedules ---

// ListSchedules возвращает расписания pipeline.
func (c *Client) ListSchedules(pipelineID string) ([]ScheduleResponse, error) {
	var schedules []ScheduleResponse
	err := c.list("/api/v1/pipelines/"+pipelineID+"/schedules", nil, &schedules)
	return schedules, err
}

// CreateSchedule создаёт расписание для pipeline.
func (c *Client) CreateSchedule(pipelineID string, req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/pipelines/"+pipelineID+"/schedules", req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет расписание pipeline.
func (c *Client) DeleteSchedule(pipelineID, scheduleID string) error {
	return c.delete("/api/v1/pipelines/" + pipelineID + "/schedules/" + scheduleID)
}

// --- Quotas ---

// GetQuotas возвращает использование квот аккаунта.
func (c *Client) GetQuotas() (*QuotaResponse, error) {
	var q QuotaResponse
	err := c.get("/api/v1/quotas", &q)
	return &q, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) patch(path string, body any, result any) error {
	return c.doData(http.MethodPatch, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if lr.Data == nil {
		return nil
	}
	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accountID != "" {
		req.Header.Set("X-Account-Id", c.accountID)
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
