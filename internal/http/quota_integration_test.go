package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"ecotravel/internal/ai"
	httptransport "ecotravel/internal/http"
	"ecotravel/internal/http/middleware"
	"ecotravel/internal/modules/aiusage"
	"ecotravel/internal/modules/estimate"
)

// TestEstimateQuotaGuard seeds a caller with one token left, then expects one estimate to
// succeed and the next to be refused even under a new X-Client-ID. Requires Postgres via ECO_TEST_DSN.
func TestEstimateQuotaGuard(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("ECO_TEST_DSN"))
	if dsn == "" {
		t.Skip("ECO_TEST_DSN not set")
	}
	t.Logf("using postgres dsn: %s", redactedDSN(dsn))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	store := aiusage.NewStore(db, aiusage.DefaultTokens)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure ai_usage table: %v", err)
	}

	peerIP := fmt.Sprintf("198.51.100.%d", time.Now().UnixNano()%250+1)
	uid := "ip:" + peerIP
	month := time.Now().UTC().Format("2006-01")
	if _, err := db.Exec(ctx, `
		INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, 1, $2)
		ON CONFLICT (uid) DO UPDATE SET
			tokens_remaining = EXCLUDED.tokens_remaining,
			last_reset_month = EXCLUDED.last_reset_month
	`, uid, month); err != nil {
		t.Fatalf("seed ai_usage: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		_, _ = db.Exec(cleanupCtx, "DELETE FROM ai_usage WHERE uid = $1", uid)
	})

	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)
	usage := aiusage.NewService(store)
	provider := &stubProvider{models: []string{"models/gemini-2.0-flash"}, text: validEstimate}
	srv := httptransport.NewServer(httptransport.ServerDeps{
		Estimate: estimate.NewService(ai.NewAcquirer(provider, logger), logger, estimate.WithQuota(usage)),
		Usage:    usage,
		Logger:   logger,
	})
	handler := srv.Routes()

	call := func(method, path, body, clientID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.RemoteAddr = peerIP + ":40000"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ClientIDHeader, clientID)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}
	body := `{"origin":"Bangalore","destination":"Mysore","travelers":2}`

	if w := call(http.MethodPost, "/api/v1/estimates", body, "first"); w.Code != http.StatusOK {
		t.Fatalf("first call: expected %d, got %d, body=%s", http.StatusOK, w.Code, w.Body.String())
	}

	w := call(http.MethodPost, "/api/v1/estimates", body, "second")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second call: expected %d, got %d, body=%s", http.StatusTooManyRequests, w.Code, w.Body.String())
	}
	var errResp errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("second call: unmarshal response: %v, raw=%s", err, w.Body.String())
	}
	if errResp.Error.Code != middleware.ErrCodeInsufficientTokens {
		t.Fatalf("second call: expected code %q, got %q", middleware.ErrCodeInsufficientTokens, errResp.Error.Code)
	}

	w = call(http.MethodGet, "/api/v1/usage", "", "third")
	if w.Code != http.StatusOK {
		t.Fatalf("usage: expected %d, got %d", http.StatusOK, w.Code)
	}
	var got aiusage.Usage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("usage: unmarshal: %v", err)
	}
	if got.UID != uid || got.TokensRemaining != 0 || got.Month != month {
		t.Fatalf("usage: unexpected %+v", got)
	}
}

func redactedDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
