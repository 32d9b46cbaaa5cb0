package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/domain"
	"github.com/medibook/medibook-api/pkg/metrics"
)

func TestAuditServiceFlushesOnShutdown(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil, zap.NewNop())

	const n = 50
	for i := 0; i < n; i++ {
		svc.LogAsync(context.Background(), AuditEntry{
			UserID:       uuid.New(),
			UserRole:     "patient",
			Action:       "create",
			ResourceType: "appointment",
			ResourceID:   uuid.NewString(),
		})
	}

	svc.Shutdown()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.entries, n)
	for _, e := range repo.entries {
		assert.Equal(t, domain.ActionCreate, e.Action)
		assert.Equal(t, "appointment", e.ResourceType)
	}
}

// blockingAuditRepo holds the worker inside Create until released, so the
// buffer can be filled deterministically.
type blockingAuditRepo struct {
	release chan struct{}
	mu      sync.Mutex
	count   int
}

func (r *blockingAuditRepo) Create(_ context.Context, _ *domain.AuditLog) error {
	<-r.release
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	return nil
}

func TestAuditServiceCountsPersistedAndDropped(t *testing.T) {
	repo := &blockingAuditRepo{release: make(chan struct{})}
	collector := metrics.NewCollector("medibook_audit_test")
	svc := NewAuditService(repo, collector, zap.NewNop())

	// The worker stalls on its first Create, so at most one entry leaves
	// the buffer; the overflow past the buffer size must be dropped.
	const total = auditBufferSize + 5
	for i := 0; i < total; i++ {
		svc.LogAsync(context.Background(), AuditEntry{Action: "create", ResourceType: "appointment"})
	}
	close(repo.release)
	svc.Shutdown()

	persisted := testutil.ToFloat64(collector.AuditEntriesTotal)
	dropped := testutil.ToFloat64(collector.AuditBufferDropped)
	assert.GreaterOrEqual(t, dropped, float64(4))
	assert.Equal(t, float64(total), persisted+dropped)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, int(persisted), repo.count)
}
