package tests

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	httpapi "restaurant-ordering/ordering-svc/internal/api/http"
	"restaurant-ordering/ordering-svc/internal/domain"
	"restaurant-ordering/ordering-svc/internal/service"
	"restaurant-ordering/ordering-svc/internal/storage"
	"restaurant-ordering/ordering-svc/internal/upload"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	store     *memoryStore
	uploadDir string
	handler   http.Handler
}

func newApp(t *testing.T, opts httpapi.RouterOptions) *app {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	store := newMemoryStore()
	dir := t.TempDir()
	sink := upload.NewDiskSink(dir)

	h := &httpapi.Handler{
		Orders:        service.NewOrderService(store, service.DefaultQRGenerator{BaseURL: "http://localhost:3000"}, nil, logger),
		Dishes:        service.NewDishService(store, logger),
		Ratings:       service.NewRatingService(store, store, nil, nil, logger),
		Chefs:         service.NewChefService(store, store, logger),
		DishUploads:   upload.NewIngestor(sink, upload.DishImages(), logger),
		RatingUploads: upload.NewIngestor(sink, upload.RatingImages(), logger),
		Log:           logger,
	}
	opts.UploadDir = dir
	return &app{store: store, uploadDir: dir, handler: httpapi.NewRouter(h, opts)}
}

func (a *app) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

const orderO1 = `{"id":"O1","items":[{"id":1,"name":"A","price":10,"quantity":2}],"totalAmount":20,"tableNumber":"A1","customerName":"X"}`

func TestFlow_orderLifecycle(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})

	rec := a.do(t, "POST", "/api/orders", orderO1)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", decodeBody(t, rec)["status"])

	rec = a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"processing"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decodeBody(t, rec)["completeTime"])

	rec = a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody(t, rec)["completeTime"])

	rec = a.do(t, "DELETE", "/api/orders/O1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "conflict", decodeBody(t, rec)["error"])

	// the refused delete left the order as it was
	order, err := a.store.GetOrder(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, order.Status)
}

func TestFlow_statusNeverMovesBackward(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/orders", orderO1).Code)

	assert.Equal(t, http.StatusBadRequest, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"pending"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"done"}`).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, "PATCH", "/api/orders/nope/status", `{"status":"processing"}`).Code)

	require.Equal(t, http.StatusOK, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"processing"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"pending"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, "DELETE", "/api/orders/O1", "").Code)
}

func TestFlow_deletePendingOrder(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/orders", orderO1).Code)

	assert.Equal(t, http.StatusOK, a.do(t, "DELETE", "/api/orders/O1", "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, "DELETE", "/api/orders/O1", "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, "GET", "/api/orders/O1", "").Code)
}

func TestFlow_listGroupsByStatus(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"O1", "O2", "O3"} {
		body := fmt.Sprintf(`{"id":%q,"items":[{"id":1,"name":"A","price":10,"quantity":1}],"totalAmount":10,"tableNumber":"T","customerName":"C","createTime":%q}`,
			id, base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/orders", body).Code)
	}
	require.Equal(t, http.StatusOK, a.do(t, "PATCH", "/api/orders/O2/status", `{"status":"processing"}`).Code)

	rec := a.do(t, "GET", "/api/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var grouped domain.GroupedOrders
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grouped))

	require.Len(t, grouped.Pending, 2)
	assert.Equal(t, "O3", grouped.Pending[0].ID)
	assert.Equal(t, "O1", grouped.Pending[1].ID)
	require.Len(t, grouped.Processing, 1)
	assert.Empty(t, grouped.Completed)
}

func TestFlow_ratingOncePerOrder(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/orders", orderO1).Code)

	rec := a.do(t, "POST", "/api/ratings", `{"orderId":"O1","rating":5,"content":"good","images":["/uploads/a.png"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, "POST", "/api/ratings", `{"orderId":"O1","rating":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "conflict", decodeBody(t, rec)["error"])
	assert.Equal(t, 1, a.store.ratingCount())
}

func TestFlow_ratingForMissingOrder(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})

	rec := a.do(t, "POST", "/api/ratings", `{"orderId":"ghost","rating":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, a.store.ratingCount())

	rec = a.do(t, "POST", "/api/ratings", `{"orderId":"ghost","rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlow_dishGuard(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/dishes/init", "").Code)
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/orders", orderO1).Code)

	rec := a.do(t, "DELETE", "/api/dishes/1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"O1"}, decodeBody(t, rec)["orderIds"])

	rec = a.do(t, "DELETE", "/api/dishes/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["id"])
	assert.Equal(t, http.StatusNotFound, a.do(t, "DELETE", "/api/dishes/2", "").Code)

	var dishes []domain.Dish
	require.NoError(t, json.Unmarshal(a.do(t, "GET", "/api/dishes", "").Body.Bytes(), &dishes))
	require.Len(t, dishes, 4)
	for _, d := range dishes {
		assert.NotEqual(t, 2, d.ID)
	}

	// once the blocking order is finished the dish may go
	require.Equal(t, http.StatusOK, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"processing"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, "DELETE", "/api/dishes/1", "").Code)
	require.Equal(t, http.StatusOK, a.do(t, "PATCH", "/api/orders/O1/status", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusOK, a.do(t, "DELETE", "/api/dishes/1", "").Code)
}

func TestFlow_createDishAssignsNextID(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})
	require.Equal(t, http.StatusCreated, a.do(t, "POST", "/api/dishes/init", "").Code)

	rec := a.do(t, "POST", "/api/dishes", `{"name":"饺子","price":18,"category":"主食"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(6), body["id"])
	assert.Equal(t, "on", body["status"])

	var dishes []domain.Dish
	require.NoError(t, json.Unmarshal(a.do(t, "GET", "/api/dishes/category/all", "").Body.Bytes(), &dishes))
	assert.Len(t, dishes, 6)
	require.NoError(t, json.Unmarshal(a.do(t, "GET", "/api/dishes/category/%E4%B8%BB%E9%A3%9F", "").Body.Bytes(), &dishes))
	assert.Len(t, dishes, 2)
}

var flowPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAACklEQVR4nGMAAQAABQABDQottAAAAABJRU5ErkJggg==")

func uploadRequest(t *testing.T, path, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func filesUnder(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return err
	})
	require.NoError(t, err)
	return files
}

func TestFlow_uploadAndServe(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{MaxRequestSize: 50 << 20})

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, uploadRequest(t, "/api/dishes/upload", "dish.png", "image/png", flowPNG))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	url := body["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/dishes/"))

	served := a.do(t, "GET", url, "")
	require.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, flowPNG, served.Body.Bytes())

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, uploadRequest(t, "/api/ratings/upload", "r.png", "image/png", flowPNG))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeBody(t, rec), "success")

	assert.Equal(t, http.StatusNotFound, a.do(t, "GET", "/uploads/", "").Code)
}

func TestFlow_uploadRejectionsLeaveNoFiles(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{MaxRequestSize: 50 << 20})

	tests := []struct {
		name        string
		path        string
		filename    string
		contentType string
		data        []byte
	}{
		{name: "dish_over_2mb", path: "/api/dishes/upload", filename: "big.png", contentType: "image/png", data: append(flowPNG, make([]byte, 2<<20)...)},
		{name: "rating_over_5mb", path: "/api/ratings/upload", filename: "big.jpg", contentType: "image/jpeg", data: make([]byte, 5<<20+1)},
		{name: "gif_for_dish", path: "/api/dishes/upload", filename: "a.gif", contentType: "image/gif", data: []byte("GIF89a")},
		{name: "pdf_as_rating", path: "/api/ratings/upload", filename: "a.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4")},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.handler.ServeHTTP(rec, uploadRequest(t, testCase.path, testCase.filename, testCase.contentType, testCase.data))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Empty(t, filesUnder(t, a.uploadDir))
		})
	}
}

func TestFlow_unknownRoute(t *testing.T) {
	a := newApp(t, httpapi.RouterOptions{})

	rec := a.do(t, "GET", "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", decodeBody(t, rec)["message"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestFlow_rateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter := storage.NewRateLimiter(client)
	fixed := time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)
	limiter.Now = func() time.Time { return fixed }

	a := newApp(t, httpapi.RouterOptions{
		Limiter: limiter,
		RateRules: []httpapi.RateRule{
			{Name: "orders", Prefix: "/api/orders", Limit: 2, Window: time.Minute, Message: "slow down"},
			{Name: "api", Prefix: "/api", Limit: 3, Window: time.Minute, Message: "slow down overall"},
		},
	})

	assert.Equal(t, http.StatusOK, a.do(t, "GET", "/api/orders", "").Code)
	assert.Equal(t, http.StatusOK, a.do(t, "GET", "/api/orders", "").Code)

	rec := a.do(t, "GET", "/api/orders", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "slow down", body["message"])
	assert.Contains(t, body, "retryAfter")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// the orders rule blocked before the general one counted the third call
	assert.Equal(t, http.StatusOK, a.do(t, "GET", "/api/dishes", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, a.do(t, "GET", "/api/dishes", "").Code)

	// outside /api nothing is limited
	assert.Equal(t, http.StatusOK, a.do(t, "GET", "/health", "").Code)
}

func TestFlow_rateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	a := newApp(t, httpapi.RouterOptions{
		Limiter:   storage.NewRateLimiter(client),
		RateRules: []httpapi.RateRule{{Name: "api", Prefix: "/api", Limit: 1, Window: time.Minute}},
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, a.do(t, "GET", "/api/orders", "").Code)
	}
}
