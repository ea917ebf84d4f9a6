package reminder

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotify/internal/logger"
	"tasknotify/internal/taskapi"
)

func setupHandler(jobs *fakeJobs, pub *fakePublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tasks := taskapi.NewClient(&fakeTaskRPC{title: "Water plants"}, "backend", nil, logger.NopLogger())
	svc := NewService(jobs, tasks, pub, logger.NopLogger())
	svc.now = func() time.Time { return testNow }

	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTaskCreatedIngressSchedules(t *testing.T) {
	jobs := &fakeJobs{}
	router := setupHandler(jobs, &fakePublisher{})

	reminderAt := testNow.Add(time.Hour).Unix()
	w := post(router, "/events/task-created", fmt.Sprintf(`{
		"type": "task.created",
		"id": "evt-1",
		"data": {"taskId": 42, "userId": "u1", "title": "Water plants", "reminderAt": %d}
	}`, reminderAt))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, jobs.ops, 1)
	assert.Equal(t, "reminder-42", jobs.ops[0].name)
}

func TestTaskDeletedIngressCancels(t *testing.T) {
	jobs := &fakeJobs{}
	router := setupHandler(jobs, &fakePublisher{})

	w := post(router, "/events/task-deleted", `{
		"type": "task.deleted",
		"id": "evt-2",
		"data": {"taskId": 42, "userId": "u1", "deletedAt": 1748779200}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, jobs.ops, 1)
	assert.Equal(t, "cancel", jobs.ops[0].op)
}

func TestIngressAcksUnusableDeliveries(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "malformed envelope",
			path: "/events/task-created",
			body: `{not json`,
		},
		{
			name: "envelope without data",
			path: "/events/task-updated",
			body: `{"type":"task.updated","id":"evt-3"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{}
			router := setupHandler(jobs, &fakePublisher{})

			w := post(router, tt.path, tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, jobs.ops)
		})
	}
}

func TestJobCallbackPublishes(t *testing.T) {
	pub := &fakePublisher{}
	router := setupHandler(&fakeJobs{}, pub)

	w := post(router, "/job/reminder-42", `{
		"data": {"taskId": 42, "userId": "u1", "title": "Water plants", "reminderAt": 1748779200}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.triggered, 1)
	assert.Equal(t, int64(42), pub.triggered[0].TaskID)
	assert.Equal(t, "u1", pub.triggered[0].UserID)
}

func TestJobCallbackAcksMalformed(t *testing.T) {
	pub := &fakePublisher{}
	router := setupHandler(&fakeJobs{}, pub)

	w := post(router, "/job/reminder-42", `{not json`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, pub.triggered)
}
