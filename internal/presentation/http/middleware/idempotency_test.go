package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsuite/pharmacare-api/internal/domain/entity"
)

type fakeIdempotencyRepo struct {
	keys map[string]*entity.IdempotencyKey
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *fakeIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	ikey, ok := r.keys[key+"|"+userID.String()]
	if !ok {
		return nil, nil
	}
	return ikey, nil
}

func (r *fakeIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.keys[ikey.Key+"|"+ikey.UserID.String()] = ikey
	return nil
}

func (r *fakeIdempotencyRepo) DeleteExpired(_ context.Context) error { return nil }

// newIdempotencyRouter wires a POST route behind IdempotencyRequired. The
// handler body simulates the settlement endpoint and counts invocations.
func newIdempotencyRouter(repo *fakeIdempotencyRepo, userID uuid.UUID, calls *int, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bills",
		func(c *gin.Context) { c.Set("user_id", userID) },
		IdempotencyRequired(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) {
			*calls++
			handler(c)
		},
	)
	return router
}

func postBill(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRequiredRejectsMissingKey(t *testing.T) {
	calls := 0
	router := newIdempotencyRouter(newFakeIdempotencyRepo(), uuid.New(), &calls, func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})

	w := postBill(router, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotencyReplaysCommittedSettlement(t *testing.T) {
	calls := 0
	billID := uuid.New().String()
	router := newIdempotencyRouter(newFakeIdempotencyRepo(), uuid.New(), &calls, func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    gin.H{"status": "committed", "bill_id": billID},
		})
	})

	first := postBill(router, "key-1")
	second := postBill(router, "key-1")

	assert.Equal(t, 1, calls, "handler must run once per idempotency key")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotencyReplaysPartialSuccessSettlement(t *testing.T) {
	// A post-commit decrement failure returns an error status but the bill
	// already exists and stock has moved. The retry must replay that outcome
	// rather than run the settlement again and mint a second bill.
	calls := 0
	billID := uuid.New().String()
	router := newIdempotencyRouter(newFakeIdempotencyRepo(), uuid.New(), &calls, func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"data": gin.H{
				"status":               "failed",
				"bill_id":              billID,
				"compensation_applied": true,
			},
		})
	})

	first := postBill(router, "key-2")
	second := postBill(router, "key-2")

	assert.Equal(t, 1, calls, "a settlement with a committed bill must never re-run")
	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Contains(t, second.Body.String(), billID)
}

func TestIdempotencyAllowsRetryAfterPreCommitFailure(t *testing.T) {
	calls := 0
	router := newIdempotencyRouter(newFakeIdempotencyRepo(), uuid.New(), &calls, func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"data":    gin.H{"status": "failed", "error_kind": "INSUFFICIENT_INVENTORY"},
		})
	})

	first := postBill(router, "key-3")
	second := postBill(router, "key-3")

	require.Equal(t, http.StatusUnprocessableEntity, first.Code)
	assert.Equal(t, 2, calls, "a failure with no committed bill stays retryable")
	assert.Empty(t, second.Header().Get("X-Idempotency-Replayed"))
}
