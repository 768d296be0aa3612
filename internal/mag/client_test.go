// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestauk/ai-research/internal/httputil"
	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testClient(url string) *Client {
	return &Client{
		BaseURL:         url,
		SubscriptionKey: "secret-key",
		HTTP:            &http.Client{Timeout: 5 * time.Second},
		MaxRetries:      2,
	}
}

func TestRequestBody(t *testing.T) {
	r := Request{
		Expr:       "expr=OR(Id=1,Id=2)",
		Attributes: []string{"Id", "Ti"},
		Count:      1000,
		Offset:     2000,
	}
	assert.Equal(t, "expr=OR(Id=1,Id=2)&count=1000&offset=2000&model=latest&attributes=Id,Ti", r.Body())
}

func TestClientQuery_SendsFormPost(t *testing.T) {
	var gotBody, gotKey, gotType, gotMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		fmt.Fprint(w, `{"expr":"x","entities":[{"logprob":-17.1,"prob":3.7e-8,"Id":2157025439,"Ti":"deep residual learning","Y":2016,"CC":42}]}`)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	page, err := c.Query(context.Background(), Request{
		Expr:       "expr=OR(Id=2157025439)",
		Attributes: []string{"Id", "Ti", "Y", "CC"},
		Count:      10,
		Offset:     0,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "expr=OR(Id=2157025439)&count=10&offset=0&model=latest&attributes=Id,Ti,Y,CC", gotBody)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)

	require.Len(t, page.Entities, 1)
	e := page.Entities[0]
	assert.Equal(t, int64(2157025439), *e.ID)
	assert.Equal(t, "deep residual learning", *e.Title)
	assert.Equal(t, 2016, *e.Year)
	assert.Equal(t, 42, *e.Citations)
	assert.Nil(t, e.DOI)
	assert.Equal(t, 0, page.Offset)
}

func TestClientQuery_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"Unauthorized"}}`)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Query(context.Background(), Request{Expr: "expr=OR(Id=1)", Count: 10})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "Unauthorized")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientQuery_TransientRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if !strings.HasPrefix(string(b), "expr=OR(Id=1)&") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"entities":[{"Id":1}]}`)
	}))
	defer ts.Close()

	reg := prometheus.NewRegistry()
	c := testClient(ts.URL)
	c.Metrics = observability.NewMetrics(reg)

	page, err := c.Query(context.Background(), Request{Expr: "expr=OR(Id=1)", Count: 10})
	require.NoError(t, err)
	assert.Len(t, page.Entities, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.MAGRequests.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.MAGPages))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics.MAGEntities))
}

func TestClientQuery_RetriesExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Query(context.Background(), Request{Expr: "expr=OR(Id=1)", Count: 10})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, reqErr.Retryable())
}

func TestClientQuery_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing entities", `{"expr":"x"}`},
		{"entity without id", `{"entities":[{"Ti":"no id"}]}`},
		{"wrong type", `{"entities":[{"Id":"abc"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := testClient(ts.URL).Query(context.Background(), Request{Expr: "e", Count: 1})
			require.Error(t, err)
			assert.True(t, IsMalformed(err), "got %v", err)
		})
	}
}

func TestFetchAll_OverHTTP(t *testing.T) {
	const pageSize = 3
	total := 3*pageSize + 2
	var offsets []int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var offset int
		for _, kv := range strings.Split(string(b), "&") {
			if v, ok := strings.CutPrefix(kv, "offset="); ok {
				offset, _ = strconv.Atoi(v)
			}
		}
		offsets = append(offsets, offset)

		var ids []string
		for id := offset; id < total && id < offset+pageSize; id++ {
			ids = append(ids, fmt.Sprintf(`{"Id":%d}`, id))
		}
		fmt.Fprintf(w, `{"entities":[%s]}`, strings.Join(ids, ","))
	}))
	defer ts.Close()

	cfg := types.DefaultPipelineConfig().MAG
	cfg.BaseURL = ts.URL
	cfg.RateLimit = 0
	c := NewClient(cfg, nil)

	stats, err := FetchAll(context.Background(), c, FetchRequest{Expr: "expr=OR(Id=1)", PageSize: pageSize}, func(Page) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 6, 9}, offsets)
	assert.Equal(t, FetchStats{Pages: 4, Entities: total}, stats)
}
