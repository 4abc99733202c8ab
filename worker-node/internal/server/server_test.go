package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskgrid/pkg/types"
	"taskgrid/worker-node/internal/executor"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postExecute(t *testing.T, r *gin.Engine, req types.ExecutionRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("serializando request: %v", err)
	}

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func TestExecuteAcceptsValidRequest(t *testing.T) {
	exec := executor.New("w-test")
	r := NewRouter(exec)

	w := postExecute(t, r, types.ExecutionRequest{TaskID: 7, Name: "informe", Priority: 2.0})

	assert.Equal(t, http.StatusOK, w.Code)

	var ack types.ExecutionAck
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, "Task accepted for execution", ack.Message)
	assert.Equal(t, "w-test", ack.WorkerID)
}

func TestExecuteRejectsNonPositivePriority(t *testing.T) {
	exec := executor.New("w-test")
	r := NewRouter(exec)

	for _, p := range []float64{0, -2.5} {
		w := postExecute(t, r, types.ExecutionRequest{TaskID: 7, Name: "informe", Priority: p})
		assert.Equal(t, http.StatusBadRequest, w.Code, "priority %v", p)
	}
}

func TestExecuteRejectsMalformedPayload(t *testing.T) {
	exec := executor.New("w-test")
	r := NewRouter(exec)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewReader([]byte("{no es json")))
	r.ServeHTTP(w, httpReq)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthReportsWorker(t *testing.T) {
	exec := executor.New("w-health")
	r := NewRouter(exec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "w-health", body["worker_id"])
}
