package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neil-justice/lda-sub000/core/gibbs"
)

func TestCyclesRecord(t *testing.T) {
	cs := new(Cycles)
	assert.Equal(t, "[]", cs.String())

	cs.Record(gibbs.CycleStats{Cycle: 1, Moves: 10, Duration: time.Second})
	cs.Record(gibbs.CycleStats{Cycle: 2, Moves: 5, Perplexity: 7.5})

	var decoded []gibbs.CycleStats
	require.NoError(t, json.Unmarshal([]byte(cs.String()), &decoded))
	assert.Equal(t, cs.Snapshot(), decoded)
	assert.Len(t, decoded, 2)
}

func TestProgressFigures(t *testing.T) {
	cs := new(Cycles)
	mux := http.NewServeMux()
	cs.Register(mux)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusNotFound, get("/progress/perplexity").Code)
	assert.Equal(t, http.StatusNotFound, get("/progress/duration").Code)

	for c := 1; c <= 5; c++ {
		s := gibbs.CycleStats{Cycle: c, Duration: time.Duration(c) * time.Millisecond}
		if c%2 == 0 {
			s.Perplexity = 10 - float64(c)
		}
		cs.Record(s)
	}

	pngMagic := []byte("\x89PNG")
	for _, path := range []string{"/progress/perplexity", "/progress/duration"} {
		rec := get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"), path)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngMagic), path)
	}
}
