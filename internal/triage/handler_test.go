package triage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"dot-triage/internal/ledger"
	"dot-triage/internal/report"
	"dot-triage/internal/triage"
)

type fakeLLM struct {
	response  string
	err       error
	gotSystem string
	gotUser   string
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.gotSystem = system
	f.gotUser = user
	return f.response, f.err
}

type write struct {
	recordID string
	next     int
}

type fakeStore struct {
	records   map[string]*ledger.ClientRecord
	writes    []write
	failWrite bool
}

func (f *fakeStore) FindByCode(ctx context.Context, code string) (*ledger.ClientRecord, error) {
	record, ok := f.records[code]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeStore) UpdateNextNumber(ctx context.Context, recordID string, next int) error {
	if f.failWrite {
		return context.DeadlineExceeded
	}
	f.writes = append(f.writes, write{recordID: recordID, next: next})
	return nil
}

func setupTriageRouter(t *testing.T, client *fakeLLM, store *fakeStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &triage.Service{
		LLM:           client,
		Ledger:        ledger.NewService(store, []string{"HUN", "TBC"}),
		Renderer:      report.NewRenderer(""),
		Prompt:        "triage prompt",
		RenderLocally: true,
	}
	r := gin.New()
	triage.NewHandler(svc).RegisterRoutes(r)
	return r
}

func postTriage(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/triage", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestTriageMissingContent(t *testing.T) {
	client := &fakeLLM{}
	router := setupTriageRouter(t, client, &fakeStore{})

	resp := postTriage(t, router, map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "No email content provided" {
		t.Fatalf("unexpected error message %q", body.Error)
	}
	if client.calls != 0 {
		t.Fatalf("expected no model call for empty content, got %d", client.calls)
	}
}

func TestTriageEndToEnd(t *testing.T) {
	client := &fakeLLM{
		response: "```json\n{\"clientCode\":\"TOW\",\"jobName\":\"Landing Page\",\"questions\":[\"Launch date?\"]}\n```",
	}
	store := &fakeStore{
		records: map[string]*ledger.ClientRecord{
			"TOW": {RecordID: "rec123", ClientCode: "TOW", ClientName: "Tower Co", TeamsID: "19:chan", SharepointURL: "https://example.sharepoint.com/tow", NextNumber: 5},
		},
	}
	router := setupTriageRouter(t, client, store)

	resp := postTriage(t, router, map[string]string{
		"emailContent": "Client TOW needs a landing page by March",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body triage.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.JobNumber != "TOW 005" {
		t.Fatalf("expected jobNumber TOW 005, got %q", body.JobNumber)
	}
	if body.JobName != "Landing Page" {
		t.Fatalf("expected jobName Landing Page, got %q", body.JobName)
	}
	if body.ClientCode != "TOW" {
		t.Fatalf("expected clientCode TOW, got %q", body.ClientCode)
	}
	if body.TeamID == nil || *body.TeamID != "19:chan" {
		t.Fatalf("expected teamId 19:chan, got %v", body.TeamID)
	}
	if body.SharepointURL == nil || *body.SharepointURL != "https://example.sharepoint.com/tow" {
		t.Fatalf("expected sharepointUrl, got %v", body.SharepointURL)
	}
	if !strings.Contains(body.EmailBody, "TOW 005") {
		t.Fatalf("expected emailBody to contain job number")
	}
	if !strings.Contains(body.EmailBody, "Launch date?") {
		t.Fatalf("expected emailBody to contain the question")
	}
	if body.FullAnalysis["jobName"] != "Landing Page" {
		t.Fatalf("expected fullAnalysis to carry parsed fields, got %v", body.FullAnalysis)
	}

	if len(store.writes) != 1 {
		t.Fatalf("expected exactly one ledger write, got %d", len(store.writes))
	}
	if store.writes[0] != (write{recordID: "rec123", next: 6}) {
		t.Fatalf("expected Next # set to 6 on rec123, got %+v", store.writes[0])
	}

	if client.gotUser != "Email content:\n\nClient TOW needs a landing page by March" {
		t.Fatalf("unexpected user message %q", client.gotUser)
	}
	if client.gotSystem != "triage prompt" {
		t.Fatalf("unexpected system prompt %q", client.gotSystem)
	}
}

func TestTriageUnknownClient(t *testing.T) {
	client := &fakeLLM{
		response: `{"clientCode":"XYZ","jobName":"Mystery Job","questions":[]}`,
	}
	store := &fakeStore{records: map[string]*ledger.ClientRecord{}}
	router := setupTriageRouter(t, client, store)

	resp := postTriage(t, router, map[string]string{"emailContent": "something new"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body triage.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.JobNumber != "XYZ TBC" {
		t.Fatalf("expected XYZ TBC, got %q", body.JobNumber)
	}
	if body.TeamID != nil || body.SharepointURL != nil {
		t.Fatalf("expected null metadata for unknown client")
	}
	if len(store.writes) != 0 {
		t.Fatalf("expected zero ledger writes, got %d", len(store.writes))
	}
}

func TestTriageMalformedCompletion(t *testing.T) {
	client := &fakeLLM{
		response: "```\nI think this is a job for TOW but I am not sure.\n```",
	}
	router := setupTriageRouter(t, client, &fakeStore{})

	resp := postTriage(t, router, map[string]string{"emailContent": "hello"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}

	var body struct {
		Error       string `json:"error"`
		Details     string `json:"details"`
		RawResponse string `json:"raw_response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "Claude returned invalid JSON" {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if body.Details == "" {
		t.Fatalf("expected parse details")
	}
	if body.RawResponse != "I think this is a job for TOW but I am not sure." {
		t.Fatalf("expected exact fence-stripped raw response, got %q", body.RawResponse)
	}
}

func TestTriageCompletionFailure(t *testing.T) {
	client := &fakeLLM{err: context.DeadlineExceeded}
	router := setupTriageRouter(t, client, &fakeStore{})

	resp := postTriage(t, router, map[string]string{"emailContent": "hello"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "Internal server error" {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if body.Details == "" {
		t.Fatalf("expected details")
	}
}

func TestTriageInvalidBody(t *testing.T) {
	router := setupTriageRouter(t, &fakeLLM{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/triage", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
