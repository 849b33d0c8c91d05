package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/logger"
)

const rankPage = `<html><body>
<table id="rank-table">
  <thead>
    <tr><th>排名</th><th>用户</th><th>昵称</th><th>A</th><th>B</th><th>C</th></tr>
  </thead>
  <tbody>
    <tr><td>1</td><td>2510000001</td><td>小明</td><td>0:45:10 </td><td>1:02:00</td><td></td></tr>
    <tr><td>2</td><td>2510000002</td><td>小红</td><td>-3</td><td></td><td>2:10:33</td></tr>
    <tr><td>3</td><td>admin</td><td>admin</td><td>0:01:00</td><td>0:02:00</td><td>0:03:00</td></tr>
    <tr><td>4</td><td>9910000003</td><td>other</td><td>0:05:00</td><td></td><td></td></tr>
  </tbody>
</table>
</body></html>`

func newTestSource(t *testing.T, handler http.HandlerFunc) (*HUSTOJSource, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := NewHUSTOJSource(HUSTOJConfig{
		BaseURL:  srv.URL,
		Problems: []string{"A", "B", "C"},
		IDPrefix: "2510",
		IDLength: 10,
	}, logger.Development("test"))

	return src, srv
}

func TestFetch_ParsesTrackedRows(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contestrank.php", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("cid"))
		w.Write([]byte(rankPage))
	})

	results, err := src.Fetch(context.Background(), 42)
	require.NoError(t, err)

	// The admin row and the foreign-prefix row are filtered out.
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, "2510000001", first.ID)
	assert.Equal(t, "小明", first.Name)
	assert.Equal(t, "0:45:10", first.Markers["A"])
	assert.Equal(t, "1:02:00", first.Markers["B"])
	assert.Equal(t, "", first.Markers["C"], "untouched problem keeps the empty marker")

	second := results[1]
	assert.Equal(t, "2510000002", second.ID)
	assert.Equal(t, "-", second.Markers["A"], "failed attempts collapse to the not-solved marker")
	assert.Equal(t, "", second.Markers["B"])
	assert.Equal(t, "2:10:33", second.Markers["C"])
}

func TestFetch_MissingTableIsAnError(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>maintenance</p></body></html>`))
	})

	_, err := src.Fetch(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSourceFetch))
}

func TestFetch_HTTPErrorIsAnError(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := src.Fetch(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSourceFetch))
}

func TestNormalizeMarker(t *testing.T) {
	assert.Equal(t, "", normalizeMarker(""))
	assert.Equal(t, "-", normalizeMarker("-2"))
	assert.Equal(t, "-", normalizeMarker("-"))
	assert.Equal(t, "0:45:10", normalizeMarker("0:45:10"))
	// Long timing text keeps only the trailing marker characters.
	assert.Equal(t, "12:34:56", normalizeMarker("3 112:34:56"))
}
