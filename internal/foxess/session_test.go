package foxess

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestSession(baseURL, apiKey string) *Session {
	cfg := Config{APIKey: apiKey, BaseURL: baseURL, Timezone: "UTC"}
	return NewSession(cfg, NewClient(cfg, zerolog.Nop()))
}

func TestSessionRequiresAuthentication(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("unauthenticated session reached the network")
	}))
	defer server.Close()

	session := newTestSession(server.URL, "KEY1")

	if _, err := session.ListDevices(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("ListDevices() error = %v, want ErrNotAuthenticated", err)
	}
	if _, err := session.FetchRealtime(context.Background(), "SN001"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("FetchRealtime() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestSessionListDevices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/op/v0/device/list" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			CurrentPage int `json:"currentPage"`
			PageSize    int `json:"pageSize"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.CurrentPage != 1 || body.PageSize != 10 {
			t.Errorf("pagination = %+v, want page 1 size 10", body)
		}
		if got := r.Header.Get("token"); got != "KEY1" {
			t.Errorf("token header = %q, want KEY1", got)
		}
		_, _ = io.WriteString(w, `{"errno":0,"result":{"currentPage":1,"pageSize":10,"total":1,"data":[
			{"deviceSN":"SN001","stationName":"Home","stationID":"st-1","moduleSN":"M1","deviceType":"H1-5.0-E","hasPV":true,"hasBattery":true}
		]}}`)
	}))
	defer server.Close()

	session := newTestSession(server.URL, "KEY1")
	session.Authenticate()

	devices, err := session.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("ListDevices() returned %d devices, want 1", len(devices))
	}
	device := devices[0]
	if device.SerialNumber != "SN001" || device.StationName != "Home" || !device.HasBattery || !device.HasPV {
		t.Errorf("unexpected device: %+v", device)
	}
}

func TestSessionFetchRealtimeMatchesSerial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/op/v0/device/real/query" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			DeviceSN  string   `json:"deviceSN"`
			Variables []string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.DeviceSN != "B" {
			t.Errorf("deviceSN = %q, want B", body.DeviceSN)
		}
		if len(body.Variables) != len(RealtimeVariables) {
			t.Errorf("requested %d variables, want %d", len(body.Variables), len(RealtimeVariables))
		}
		// block for the requested serial is deliberately not first
		_, _ = io.WriteString(w, `{"errno":0,"result":[
			{"deviceSN":"A","datas":[{"variable":"loadsPower","value":1,"name":"Load Power","unit":"kW"}]},
			{"deviceSN":"B","datas":[{"variable":"loadsPower","value":0.5,"name":"Load Power","unit":"kW"}]}
		]}`)
	}))
	defer server.Close()

	session := newTestSession(server.URL, "KEY1")
	session.Authenticate()

	points, err := session.FetchRealtime(context.Background(), "B")
	if err != nil {
		t.Fatalf("FetchRealtime() error = %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if got, ok := points.Float("loadsPower"); !ok || got != 0.5 {
		t.Errorf("loadsPower = %v, %v, want 0.5 from device B's block", got, ok)
	}
}

func TestSessionFetchRealtimeDeviceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errno":0,"result":[
			{"deviceSN":"A","datas":[{"variable":"loadsPower","value":1,"name":"Load Power","unit":"kW"}]}
		]}`)
	}))
	defer server.Close()

	session := newTestSession(server.URL, "KEY1")
	session.Authenticate()

	_, err := session.FetchRealtime(context.Background(), "B")
	var notFound DeviceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("FetchRealtime() error = %v, want DeviceNotFoundError", err)
	}
	if notFound.SerialNumber != "B" {
		t.Errorf("SerialNumber = %q, want B", notFound.SerialNumber)
	}
}

func TestSessionTestAuthentication(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"errno":0,"result":{"data":[]}}`)
		}))
		defer server.Close()

		session := newTestSession(server.URL, "KEY1")
		if !session.TestAuthentication(context.Background()) {
			t.Error("TestAuthentication() = false, want true")
		}
	})

	t.Run("rejected key reports false, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"errno":40256,"result":null}`)
		}))
		defer server.Close()

		session := newTestSession(server.URL, "bad-key")
		if session.TestAuthentication(context.Background()) {
			t.Error("TestAuthentication() = true for a rejected key")
		}
	})

	t.Run("unreachable server reports false", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		session := newTestSession(server.URL, "KEY1")
		if session.TestAuthentication(context.Background()) {
			t.Error("TestAuthentication() = true against an unreachable server")
		}
	})
}

func TestSessionRealtimeDynamicValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errno":0,"result":[
			{"deviceSN":"SN001","datas":[
				{"variable":"generationPower","value":0.01,"name":"Output Power","unit":"kW"},
				{"variable":"SoC","value":80,"name":"SoC","unit":"%"},
				{"variable":"runningState","value":"on-grid","name":"Running State","unit":""},
				{"variable":"meterPower2","value":null,"name":"Meter2 Power","unit":"kW"},
				{"variable":"batTemperature","value":23.4,"name":"batTemperature","unit":"°C"}
			]}
		]}`)
	}))
	defer server.Close()

	session := newTestSession(server.URL, "KEY1")
	session.Authenticate()

	points, err := session.FetchRealtime(context.Background(), "SN001")
	if err != nil {
		t.Fatalf("FetchRealtime() error = %v", err)
	}

	if got, ok := points.Float("generationPower"); !ok || got != 0.01 {
		t.Errorf("generationPower = %v, %v, want 0.01", got, ok)
	}
	if got, ok := points.Float("soc"); !ok || got != 80 {
		t.Errorf("case-insensitive soc = %v, %v, want 80", got, ok)
	}
	state, ok := points.Lookup("runningState")
	if !ok || state.Value.Kind() != ValueString {
		t.Errorf("runningState = %+v, %v, want a string value", state, ok)
	}
	meter, ok := points.Lookup("meterPower2")
	if !ok || meter.Value.Kind() != ValueUnknown {
		t.Errorf("meterPower2 = %+v, %v, want an unknown value", meter, ok)
	}
	if got := points.Unit("batTemperature"); got != "C" {
		t.Errorf("Unit(batTemperature) = %q, want C", got)
	}
}
