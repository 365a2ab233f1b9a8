package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/handlers"
	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/services"
	"github.com/propscan/audit-backend/internal/types"
)

type stubBucket struct {
	mu      sync.Mutex
	uploads []string
}

func (s *stubBucket) UploadFile(_ context.Context, key string, _ io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *stubBucket) DeleteFile(_ context.Context, _ string) error { return nil }
func (s *stubBucket) GetPublicURL(key string) string               { return "https://cdn.test/" + key }
func (s *stubBucket) SignURL(key string, _ time.Duration) (string, error) {
	return "https://signed.test/" + key, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "router_test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Property{},
		&types.Audit{},
		&types.AuditStep{},
		&types.AuditMedia{},
		&types.AuditFinding{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	propertyRepo := repos.NewPropertyRepo(db, log)
	auditRepo := repos.NewAuditRepo(db, log)
	stepRepo := repos.NewAuditStepRepo(db, log)
	mediaRepo := repos.NewAuditMediaRepo(db, log)
	findingRepo := repos.NewAuditFindingRepo(db, log)

	bucket := &stubBucket{}
	stepService := services.NewStepService(db, log, stepRepo)
	mediaService := services.NewMediaService(db, log, mediaRepo, stepRepo, stepService, bucket, false, time.Hour)
	auditService := services.NewAuditService(db, log, auditRepo, stepRepo, propertyRepo, mediaService)
	propertyService := services.NewPropertyService(db, log, propertyRepo, bucket, false, time.Hour)
	findingService := services.NewFindingService(db, log, findingRepo, stepRepo)
	chatService := services.NewChatService(log)

	router := NewRouter(RouterConfig{
		PropertyHandler: handlers.NewPropertyHandler(log, propertyService),
		AuditHandler:    handlers.NewAuditHandler(log, auditService, mediaService),
		StepHandler:     handlers.NewStepHandler(log, stepService, mediaService, findingService),
		MediaHandler:    handlers.NewMediaHandler(log, mediaService),
		ChatHandler:     handlers.NewChatHandler(log, chatService),
	})
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createProperty(t *testing.T, router *gin.Engine) uuid.UUID {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/properties", gin.H{
		"street": "12 Maple St", "city": "Burlington", "state": "VT", "zip_code": "05401",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property: status %d body %s", rec.Code, rec.Body.String())
	}
	var property types.Property
	decodeBody(t, rec, &property)
	return property.ID
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestCreateAuditWithoutPropertyIsRejected(t *testing.T) {
	router, db := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/audits", gin.H{"notes": "walkthrough"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "missing property_id" {
		t.Fatalf("unexpected error message %q", body["error"])
	}

	var n int64
	if err := db.Model(&types.Audit{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected create must not leave audit rows, got %d", n)
	}
}

func TestCreateAuditNestedUnderProperty(t *testing.T) {
	router, _ := newTestRouter(t)
	propertyID := createProperty(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/audits", propertyID), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	var audit types.Audit
	decodeBody(t, rec, &audit)
	if audit.PropertyID != propertyID {
		t.Fatalf("audit bound to wrong property: %s", audit.PropertyID)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/properties/%s/audit", propertyID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by property: status %d", rec.Code)
	}
}

func TestStepUpsertStatusCodes(t *testing.T) {
	router, _ := newTestRouter(t)
	propertyID := createProperty(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/audits", propertyID), nil)
	var audit types.Audit
	decodeBody(t, rec, &audit)

	path := fmt.Sprintf("/api/audits/%s/steps", audit.ID)
	rec = doJSON(t, router, http.MethodPost, path, gin.H{"step_type": "exterior", "label": "North Side"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first upsert: expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	var first types.AuditStep
	decodeBody(t, rec, &first)

	rec = doJSON(t, router, http.MethodPost, path, gin.H{"step_type": "exterior", "label": "North Side", "is_completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("second upsert: expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	var second types.AuditStep
	decodeBody(t, rec, &second)
	if second.ID != first.ID {
		t.Fatalf("second upsert must hit the same step")
	}
	if !second.IsCompleted {
		t.Fatalf("second upsert must apply the patch")
	}

	rec = doJSON(t, router, http.MethodPost, path, gin.H{"label": "North Side"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing step_type: expected 400, got %d", rec.Code)
	}
}

func TestPatchStepRequiresIsCompleted(t *testing.T) {
	router, _ := newTestRouter(t)
	propertyID := createProperty(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/audits", propertyID), nil)
	var audit types.Audit
	decodeBody(t, rec, &audit)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/audits/%s/steps", audit.ID), gin.H{"step_type": "exterior", "label": "Roof"})
	var step types.AuditStep
	decodeBody(t, rec, &step)

	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/steps/%s", step.ID), gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without is_completed, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/steps/%s", step.ID), gin.H{"is_completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/steps/%s", uuid.New()), gin.H{"is_completed": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown step, got %d", rec.Code)
	}
}

func TestUploadMediaByLabel(t *testing.T) {
	router, db := newTestRouter(t)
	propertyID := createProperty(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/audits", propertyID), nil)
	var audit types.Audit
	decodeBody(t, rec, &audit)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "north.jpg")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := io.Copy(fw, strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if err := mw.WriteField("step_type", "exterior"); err != nil {
		t.Fatalf("field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/audits/%s/steps/North%%20Side/upload", audit.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	if out.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d body %s", out.Code, out.Body.String())
	}

	var stepCount, mediaCount int64
	if err := db.Model(&types.AuditStep{}).Count(&stepCount).Error; err != nil {
		t.Fatalf("count steps: %v", err)
	}
	if err := db.Model(&types.AuditMedia{}).Count(&mediaCount).Error; err != nil {
		t.Fatalf("count media: %v", err)
	}
	if stepCount != 1 || mediaCount != 1 {
		t.Fatalf("expected upload to create one step and one media row, got %d/%d", stepCount, mediaCount)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/audits/%s/steps", audit.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list steps: status %d", rec.Code)
	}
	var steps []struct {
		Label string `json:"label"`
		Media []struct {
			URL string `json:"url"`
		} `json:"media"`
	}
	decodeBody(t, rec, &steps)
	if len(steps) != 1 || len(steps[0].Media) != 1 {
		t.Fatalf("expected one step with one media, got %+v", steps)
	}
	if !strings.HasPrefix(steps[0].Media[0].URL, "https://cdn.test/") {
		t.Fatalf("expected public locator, got %q", steps[0].Media[0].URL)
	}
}

func TestDeletePropertyEndpointCascades(t *testing.T) {
	router, db := newTestRouter(t)
	propertyID := createProperty(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/properties/%s/audits", propertyID), nil)
	var audit types.Audit
	decodeBody(t, rec, &audit)
	doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/audits/%s/steps", audit.ID), gin.H{"step_type": "exterior", "label": "Roof"})

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/properties/%s", propertyID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body.String())
	}

	for _, m := range []interface{}{&types.Property{}, &types.Audit{}, &types.AuditStep{}} {
		var n int64
		if err := db.Model(m).Count(&n).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected cascade to clear %T, %d rows remain", m, n)
		}
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/properties/%s", propertyID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}
