package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "audit_test.db") + "?_foreign_keys=on"
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
	return db
}

// fakeBucket records uploads and mints a distinct signed URL on every SignURL
// call so tests can tell fresh locators from replayed ones.
type fakeBucket struct {
	mu        sync.Mutex
	uploads   []string
	uploadErr error
	signCalls int
}

func (f *fakeBucket) UploadFile(_ context.Context, key string, _ io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeBucket) DeleteFile(_ context.Context, _ string) error { return nil }

func (f *fakeBucket) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeBucket) SignURL(key string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signCalls++
	return fmt.Sprintf("https://signed.test/%s?sig=%d", key, f.signCalls), nil
}

type testEnv struct {
	db       *gorm.DB
	bucket   *fakeBucket
	stepRepo repos.AuditStepRepo
	steps    StepService
	media    MediaService
	audits   AuditService
	props    PropertyService
	findings FindingService
}

func newTestEnv(t *testing.T, bucketPrivate bool) *testEnv {
	t.Helper()
	db := openTestDB(t)
	log := logger.NewNop()

	propertyRepo := repos.NewPropertyRepo(db, log)
	auditRepo := repos.NewAuditRepo(db, log)
	stepRepo := repos.NewAuditStepRepo(db, log)
	mediaRepo := repos.NewAuditMediaRepo(db, log)
	findingRepo := repos.NewAuditFindingRepo(db, log)

	bucket := &fakeBucket{}
	stepService := NewStepService(db, log, stepRepo)
	mediaService := NewMediaService(db, log, mediaRepo, stepRepo, stepService, bucket, bucketPrivate, time.Hour)
	auditService := NewAuditService(db, log, auditRepo, stepRepo, propertyRepo, mediaService)
	propertyService := NewPropertyService(db, log, propertyRepo, bucket, bucketPrivate, time.Hour)
	findingService := NewFindingService(db, log, findingRepo, stepRepo)

	return &testEnv{
		db:       db,
		bucket:   bucket,
		stepRepo: stepRepo,
		steps:    stepService,
		media:    mediaService,
		audits:   auditService,
		props:    propertyService,
		findings: findingService,
	}
}

func (e *testEnv) seedProperty(t *testing.T) *types.Property {
	t.Helper()
	property, err := e.props.Create(context.Background(), PropertyInput{
		Street:  "12 Maple St",
		City:    "Burlington",
		State:   "VT",
		ZipCode: "05401",
	})
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return property
}

func (e *testEnv) seedAudit(t *testing.T, propertyID uuid.UUID) *types.Audit {
	t.Helper()
	audit, err := e.audits.Create(context.Background(), CreateAuditInput{PropertyID: propertyID})
	if err != nil {
		t.Fatalf("seed audit: %v", err)
	}
	return audit
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
