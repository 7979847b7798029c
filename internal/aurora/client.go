package aurora

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Port is the TCP port the Aurora's REST API listens on.
const Port = 16021

const defaultTimeout = 10 * time.Second

// Aurora is a single Nanoleaf Aurora device reachable on the local network.
type Aurora struct {
	IP    string
	Name  string
	MAC   string
	Token string

	client *http.Client
}

// New creates a device handle. If client is nil a default client with a
// request timeout is used. Token may be empty until pairing has run.
func New(ip, name, mac, token string, client *http.Client) *Aurora {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Aurora{
		IP:     ip,
		Name:   name,
		MAC:    mac,
		Token:  token,
		client: client,
	}
}

func (a *Aurora) String() string {
	token := "not paired"
	if a.Token != "" {
		token = "paired"
	}
	return fmt.Sprintf("<Aurora %q (IP: %s, MAC: %s, %s)>", a.Name, a.IP, a.MAC, token)
}

// GenerateToken pairs with the device and stores the returned auth token.
// The device only hands out tokens while its power button has been held for
// ~5 seconds and the LED is flashing.
func (a *Aurora) GenerateToken(ctx context.Context) error {
	var res struct {
		AuthToken string `json:"auth_token"`
	}
	if err := a.do(ctx, http.MethodPost, "new", false, nil, &res); err != nil {
		return err
	}
	if res.AuthToken == "" {
		return &DeviceError{Kind: ErrorRejected, Op: "new", Err: errors.New("device returned an empty auth token")}
	}
	a.Token = res.AuthToken
	return nil
}

// Info returns the raw device info document. Useful for debugging.
func (a *Aurora) Info(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := a.do(ctx, http.MethodGet, "", true, nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// On reports whether the panels are currently lit.
func (a *Aurora) On(ctx context.Context) (bool, error) {
	var on bool
	err := a.do(ctx, http.MethodGet, "state/on/value", true, nil, &on)
	return on, err
}

// SetOn turns the panels on or off.
func (a *Aurora) SetOn(ctx context.Context, on bool) error {
	return a.do(ctx, http.MethodPut, "state", true, map[string]any{"on": on}, nil)
}

// Brightness returns the device brightness in [0,100].
func (a *Aurora) Brightness(ctx context.Context) (int, error) {
	var level int
	err := a.do(ctx, http.MethodGet, "state/brightness/value", true, nil, &level)
	return level, err
}

// SetBrightness sets the device brightness, clamped to [0,100].
func (a *Aurora) SetBrightness(ctx context.Context, level int) error {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	payload := map[string]any{"brightness": map[string]int{"value": level}}
	return a.do(ctx, http.MethodPut, "state", true, payload, nil)
}

// Identify briefly flashes the panels so the device can be told apart from
// its siblings.
func (a *Aurora) Identify(ctx context.Context) error {
	return a.do(ctx, http.MethodPut, "identify", true, map[string]any{}, nil)
}

// ActiveEffectName returns the name of the effect currently displayed.
func (a *Aurora) ActiveEffectName(ctx context.Context) (string, error) {
	var name string
	err := a.do(ctx, http.MethodGet, "effects/select", true, nil, &name)
	return name, err
}

// SelectEffect switches the device to the named effect.
func (a *Aurora) SelectEffect(ctx context.Context, name string) error {
	return a.do(ctx, http.MethodPut, "effects", true, map[string]string{"select": name}, nil)
}

// Effects fetches every animation stored on the device, sorted by name.
func (a *Aurora) Effects(ctx context.Context) ([]Effect, error) {
	payload := map[string]any{"write": map[string]string{"command": "requestAll"}}
	var res struct {
		Animations []Effect `json:"animations"`
	}
	if err := a.do(ctx, http.MethodPut, "effects", true, payload, &res); err != nil {
		return nil, err
	}
	sort.Slice(res.Animations, func(i, j int) bool {
		return res.Animations[i].Name < res.Animations[j].Name
	})
	return res.Animations, nil
}

// EffectNames returns the names of all stored effects, sorted.
func (a *Aurora) EffectNames(ctx context.Context) ([]string, error) {
	effects, err := a.Effects(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(effects))
	for _, e := range effects {
		names = append(names, e.Name)
	}
	return names, nil
}

// DeleteEffect removes the named effect from the device. Not reversible.
func (a *Aurora) DeleteEffect(ctx context.Context, name string) error {
	payload := map[string]any{"write": map[string]string{"command": "delete", "animName": name}}
	return a.do(ctx, http.MethodPut, "effects", true, payload, nil)
}

// WriteEffect sends a raw effect command. With command "add" the device
// upserts the animation under its animName.
func (a *Aurora) WriteEffect(ctx context.Context, cmd EffectCommand) error {
	return a.do(ctx, http.MethodPut, "effects", true, map[string]any{"write": cmd}, nil)
}

// PanelIDs returns the IDs of all light panels in layout order. The Rhythm
// module reports ID 0 and is skipped since it carries no LEDs.
func (a *Aurora) PanelIDs(ctx context.Context) ([]int, error) {
	var layout struct {
		NumPanels    int `json:"numPanels"`
		PositionData []struct {
			PanelID int `json:"panelId"`
		} `json:"positionData"`
	}
	if err := a.do(ctx, http.MethodGet, "panelLayout/layout", true, nil, &layout); err != nil {
		return nil, err
	}
	ids := make([]int, 0, layout.NumPanels)
	for _, p := range layout.PositionData {
		if p.PanelID == 0 {
			continue
		}
		ids = append(ids, p.PanelID)
	}
	return ids, nil
}

// PanelCount returns the number of light panels the device reports.
func (a *Aurora) PanelCount(ctx context.Context) (int, error) {
	ids, err := a.PanelIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// do runs one REST call against the device and decodes the response into
// out when both are non-nil. All failures come back as *DeviceError.
func (a *Aurora) do(ctx context.Context, method, endpoint string, authed bool, payload, out any) error {
	if authed && a.Token == "" {
		return &DeviceError{
			Kind: ErrorUnauthorized,
			Op:   endpoint,
			Err:  errors.New("device has no auth token, run `auri device setup` first"),
		}
	}

	url := fmt.Sprintf("http://%s:%d/api/v1", a.IP, Port)
	if authed {
		url += "/" + a.Token
	}
	if endpoint != "" {
		url += "/" + endpoint
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &DeviceError{Kind: ErrorRejected, Op: endpoint, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &DeviceError{Kind: ErrorRejected, Op: endpoint, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := a.client.Do(req)
	if err != nil {
		return &DeviceError{Kind: ErrorUnreachable, Op: endpoint, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return &DeviceError{
			Kind: ErrorUnauthorized,
			Op:   endpoint,
			Err: errors.New("token not valid; re-run setup or hold the power button " +
				"for ~5 seconds until the LED flashes"),
		}
	case res.StatusCode >= 400:
		return &DeviceError{
			Kind: ErrorRejected,
			Op:   endpoint,
			Err:  fmt.Errorf("unexpected status code %d", res.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &DeviceError{Kind: ErrorUnreachable, Op: endpoint, Err: err}
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DeviceError{Kind: ErrorRejected, Op: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
