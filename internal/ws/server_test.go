package ws

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signworks/dmsview/internal/app"
	"github.com/signworks/dmsview/internal/config"
	diag "github.com/signworks/dmsview/internal/diagnostics"
	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/render"
)

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	c := config.Default()
	c.Sign = config.Sign{
		FaceWidthMM: 100, FaceHeightMM: 50,
		HPitchMM: 10, VPitchMM: 10,
		WidthPix: 4, HeightPix: 2,
	}
	c.Viewport = config.Viewport{Width: 100, Height: 50}
	core, err := app.NewCore(c, app.Options{Clock: clockwork.NewFakeClock()})
	require.NoError(t, err)

	s := NewServer(core, 0, nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = core.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestHealth(t *testing.T) {
	s, ts := newServer(t)
	require.NoError(t, s.core.Eng.RenderOnce())

	res, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var h Health
	require.NoError(t, json.NewDecoder(res.Body).Decode(&h))
	assert.Equal(t, "status", h.Type)
	assert.Equal(t, uint64(1), h.FrameID)
	assert.Equal(t, 4, h.Sign.WidthPix)
	assert.Equal(t, render.Viewport{Width: 100, Height: 50}, h.Viewport)
	assert.Equal(t, 2, h.Render.Commands)
}

func TestPostAndGetPages(t *testing.T) {
	s, ts := newServer(t)

	body := `{"pages":[{"on_ms":1000,"rows":["#...","...."]},{"on_ms":1000,"off_ms":200,"rows":["....","...#"]}]}`
	res, err := http.Post(ts.URL+"/pages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, 1, s.core.Eng.Raster().LitCount())
	assert.Equal(t, 2, s.core.Seq.Status().Pages)

	res, err = http.Get(ts.URL + "/pages")
	require.NoError(t, err)
	defer res.Body.Close()
	var got struct {
		Pages []struct {
			OnMS  int      `json:"on_ms"`
			OffMS int      `json:"off_ms"`
			Rows  []string `json:"rows"`
		} `json:"pages"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Len(t, got.Pages, 2)
	assert.Equal(t, 200, got.Pages[1].OffMS)
	assert.Equal(t, "...#", got.Pages[1].Rows[1])
}

var TestRejectedPages = []string{
	`not json`,
	`{"pages":[]}`,
	`{"pages":[{"on_ms":-1,"rows":["#"]}]}`,
	`{"pages":[{"on_ms":1000,"rows":["##","#"]}]}`,
}

func TestPostPagesRejects(t *testing.T) {
	_, ts := newServer(t)
	for k, v := range TestRejectedPages {
		t.Run("Given body"+strconv.Itoa(k), func(t *testing.T) {
			res, err := http.Post(ts.URL+"/pages", "application/json", strings.NewReader(v))
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
}

func TestControlSocketRunsTest(t *testing.T) {
	s, ts := newServer(t)
	conn := dial(t, ts, "/control")

	require.NoError(t, conn.WriteJSON(Control{RunTest: "all_on"}))
	var h Health
	readJSON(t, conn, &h)
	assert.Equal(t, "status", h.Type)
	assert.Equal(t, 8, s.core.Eng.Raster().LitCount())

	require.NoError(t, conn.WriteJSON(Control{Clear: true}))
	readJSON(t, conn, &h)
	assert.Equal(t, 0, s.core.Eng.Raster().LitCount())
}

func TestControlSocketSurvivesBadJSON(t *testing.T) {
	_, ts := newServer(t)
	conn := dial(t, ts, "/control")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, conn.WriteJSON(Control{Stop: true}))
	var h Health
	readJSON(t, conn, &h)
	assert.Equal(t, "status", h.Type)
}

func TestFrameSocket(t *testing.T) {
	s, ts := newServer(t)
	conn := dial(t, ts, "/ws")

	// status first, sent once the client is registered
	var h Health
	readJSON(t, conn, &h)
	require.Equal(t, "status", h.Type)

	require.NoError(t, s.core.Eng.RenderOnce())
	var f struct {
		Type    string `json:"type"`
		FrameID uint64 `json:"frame_id"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
		PNG     string `json:"png"`
	}
	readJSON(t, conn, &f)
	assert.Equal(t, "frame", f.Type)
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, 100, f.Width)

	raw, err := base64.StdEncoding.DecodeString(f.PNG)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestDiagSocket(t *testing.T) {
	s, ts := newServer(t)
	conn := dial(t, ts, "/diag")
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.diagClients) == 1
	}, time.Second, time.Millisecond)

	assert.Error(t, s.Apply(Control{RunTest: "strobe"}))
	var d diag.Diagnostic
	readJSON(t, conn, &d)
	assert.Equal(t, "TEST.UNKNOWN", d.Code)
	assert.Equal(t, diag.Warn, d.Severity)
}

func TestApplyPersistsDisplaySettings(t *testing.T) {
	s, _ := newServer(t)
	s.ConfigPath = filepath.Join(t.TempDir(), "dmsview.yaml")

	on := true
	require.NoError(t, s.Apply(Control{
		Viewport:    &render.Viewport{Width: 200, Height: 80},
		Calibration: &on,
		Fault:       &on,
	}))
	assert.Equal(t, render.Viewport{Width: 200, Height: 80}, s.core.Eng.Viewport())
	assert.True(t, s.core.Eng.Options().Calibration)
	assert.Equal(t, render.FaultFilter, s.core.Eng.Options().Filter)

	c, err := config.Load(s.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 200, c.Viewport.Width)
	assert.True(t, c.Render.Calibration)
}

func TestApplyIgnoresInvalidViewport(t *testing.T) {
	s, _ := newServer(t)
	require.NoError(t, s.Apply(Control{Viewport: &render.Viewport{Width: 0, Height: 10}}))
	assert.Equal(t, render.Viewport{Width: 100, Height: 50}, s.core.Eng.Viewport())
}

var TestOrigins = []struct {
	Allowed []string
	Origin  string
	Expect  bool
}{
	{nil, "http://anywhere", true},
	{[]string{"http://localhost:5173"}, "http://localhost:5173", true},
	{[]string{"http://localhost:5173"}, "http://evil.example", false},
	{[]string{"http://localhost:5173"}, "", true},
	{[]string{"*"}, "http://evil.example", true},
}

func TestCheckOrigin(t *testing.T) {
	for k, v := range TestOrigins {
		t.Run("Given origin"+strconv.Itoa(k), func(t *testing.T) {
			s := &Server{origins: v.Allowed}
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if v.Origin != "" {
				r.Header.Set("Origin", v.Origin)
			}
			assert.Equal(t, v.Expect, s.checkOrigin(r))
		})
	}
}

func TestApplyClearsFault(t *testing.T) {
	s, _ := newServer(t)
	s.ConfigPath = filepath.Join(t.TempDir(), "dmsview.yaml")

	on, off := true, false
	require.NoError(t, s.Apply(Control{Fault: &on}))
	c, err := config.Load(s.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", c.Render.Filter)
	assert.Equal(t, 0x40, c.Render.FilterAlpha)

	require.NoError(t, s.Apply(Control{Fault: &off}))
	assert.Zero(t, s.core.Eng.Options().Filter.A)
	c, err = config.Load(s.ConfigPath)
	require.NoError(t, err)
	assert.Empty(t, c.Render.Filter)
}

func TestApplyPersistsSign(t *testing.T) {
	s, _ := newServer(t)
	s.ConfigPath = filepath.Join(t.TempDir(), "dmsview.yaml")

	sign := layout.Sign{
		FaceWidthMM: 200, FaceHeightMM: 50,
		HPitchMM: 10, VPitchMM: 10,
		WidthPix: 8, HeightPix: 2,
	}
	require.NoError(t, s.Apply(Control{Sign: &sign}))
	assert.Equal(t, 8, s.core.Eng.Sign().WidthPix)

	c, err := config.Load(s.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Sign.WidthPix)
	assert.Equal(t, 200.0, c.Sign.FaceWidthMM)
}
