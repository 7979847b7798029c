package aurora

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient returns an http.Client whose dials are rewired to the test
// server, so device URLs like http://1.2.3.4:16021 resolve locally.
func testClient(server *httptest.Server) *http.Client {
	return &http.Client{
		Timeout: 2 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return (&net.Dialer{Timeout: time.Second}).
					DialContext(ctx, network, strings.TrimPrefix(server.URL, "http://"))
			},
		},
	}
}

func TestBrightnessRoundtrip(t *testing.T) {
	var gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method == http.MethodGet {
			io.WriteString(w, "65")
			return
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dev := New("10.0.0.2", "leaf", "ab:cd", "secret", testClient(server))

	level, err := dev.Brightness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 65, level)
	assert.Equal(t, "/api/v1/secret/state/brightness/value", gotPath)

	require.NoError(t, dev.SetBrightness(context.Background(), 150))
	assert.JSONEq(t, `{"brightness":{"value":100}}`, string(gotBody), "brightness is clamped to 100")
}

func TestEffectsParsesAnimationsSorted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Write map[string]string `json:"write"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding effects payload: %v", err)
		}
		assert.Equal(t, "requestAll", payload.Write["command"])

		io.WriteString(w, `{"animations": [
			{"animName": "Zebra", "palette": [{"hue": 120, "saturation": 100, "brightness": 100}]},
			{"animName": "Aurora", "palette": [{"hue": 0, "saturation": 0, "brightness": 50}]}
		]}`)
	}))
	defer server.Close()

	dev := New("10.0.0.2", "leaf", "ab:cd", "secret", testClient(server))
	effects, err := dev.Effects(context.Background())
	require.NoError(t, err)

	require.Len(t, effects, 2)
	assert.Equal(t, "Aurora", effects[0].Name)
	assert.Equal(t, "Zebra", effects[1].Name)
	require.Len(t, effects[1].Palette, 1)
	assert.Equal(t, 120, effects[1].Palette[0].Hue)
}

func TestPanelIDsSkipsRhythmModule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"numPanels": 4, "positionData": [
			{"panelId": 107}, {"panelId": 0}, {"panelId": 93}, {"panelId": 12}
		]}`)
	}))
	defer server.Close()

	dev := New("10.0.0.2", "leaf", "ab:cd", "secret", testClient(server))
	ids, err := dev.PanelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{107, 93, 12}, ids)

	count, err := dev.PanelCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUnauthorizedStatusMapsToUnauthorized(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		dev := New("10.0.0.2", "leaf", "ab:cd", "revoked", testClient(server))

		err := dev.SetOn(context.Background(), true)
		assert.True(t, IsUnauthorized(err), "status %d must classify as unauthorized", status)
		server.Close()
	}
}

func TestBadRequestMapsToRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	dev := New("10.0.0.2", "leaf", "ab:cd", "secret", testClient(server))
	err := dev.WriteEffect(context.Background(), EffectCommand{Command: "add"})
	assert.True(t, IsRejected(err))
	assert.False(t, IsUnreachable(err))
}

func TestNetworkFailureMapsToUnreachable(t *testing.T) {
	// A server that is already closed refuses connections.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	dev := New("10.0.0.2", "leaf", "ab:cd", "secret", testClient(server))
	err := dev.SetOn(context.Background(), true)
	assert.True(t, IsUnreachable(err))
}

func TestMissingTokenFailsWithoutNetwork(t *testing.T) {
	dev := New("10.0.0.2", "leaf", "ab:cd", "", nil)
	err := dev.SetOn(context.Background(), true)
	assert.True(t, IsUnauthorized(err))
}

func TestGenerateToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/new", r.URL.Path)
		io.WriteString(w, `{"auth_token": "fresh-token"}`)
	}))
	defer server.Close()

	dev := New("10.0.0.2", "leaf", "ab:cd", "", testClient(server))
	require.NoError(t, dev.GenerateToken(context.Background()))
	assert.Equal(t, "fresh-token", dev.Token)
}

func TestEffectColorRGB(t *testing.T) {
	r, g, b := EffectColor{Hue: 0, Saturation: 100, Brightness: 100}.RGB()
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})

	r, g, b = EffectColor{Hue: 120, Saturation: 100, Brightness: 100}.RGB()
	assert.Equal(t, [3]uint8{0, 255, 0}, [3]uint8{r, g, b})

	assert.Equal(t, "#ff0000", EffectColor{Hue: 0, Saturation: 100, Brightness: 100}.Hex())
}
