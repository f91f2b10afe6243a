package foxess

import "context"

const (
	deviceListPath    = "/op/v0/device/list"
	realtimeQueryPath = "/op/v0/device/real/query"

	deviceListPageSize = 10
)

// RealtimeVariables is the fixed set of variables every realtime
// query asks for.
var RealtimeVariables = []string{
	"generationPower", "feedinPower", "gridConsumptionPower", "loadsPower",
	"batChargePower", "batDischargePower", "SoC", "batTemperature",
	"ambientTemperation", "invTemperation", "meterPower2", "pvPower",
}

// Session sequences the FoxESS cloud calls for one account. It owns
// the credential; independent sessions can coexist. A session starts
// unauthenticated and domain calls fail with ErrNotAuthenticated
// until Authenticate has run.
type Session struct {
	apiKey string
	client *Client
	authed bool
}

// NewSession builds a session around its own client.
func NewSession(cfg Config, client *Client) *Session {
	return &Session{apiKey: cfg.APIKey, client: client}
}

// Authenticate installs the API key as the request token. The vendor
// treats the raw key as the bearer token, so there is no network
// handshake and this cannot fail.
func (s *Session) Authenticate() {
	s.client.setToken(s.apiKey)
	s.authed = true
}

// TestAuthentication authenticates and issues a device-list round
// trip. Any failure, a rejected key and an unreachable network alike,
// reports false.
func (s *Session) TestAuthentication(ctx context.Context) bool {
	s.Authenticate()
	_, err := s.ListDevices(ctx)
	return err == nil
}

// ListDevices fetches the first page of devices registered to the
// account. Accounts with more than one page are out of scope.
func (s *Session) ListDevices(ctx context.Context) ([]Device, error) {
	if !s.authed {
		return nil, ErrNotAuthenticated
	}

	body := struct {
		CurrentPage int `json:"currentPage"`
		PageSize    int `json:"pageSize"`
	}{CurrentPage: 1, PageSize: deviceListPageSize}

	var result struct {
		Data []Device `json:"data"`
	}
	if err := s.client.post(ctx, deviceListPath, body, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// FetchRealtime queries the fixed variable set for one device. The
// response may carry blocks for other devices or in a different
// order, so the block is located by serial number.
func (s *Session) FetchRealtime(ctx context.Context, serialNumber string) (Realtime, error) {
	if !s.authed {
		return nil, ErrNotAuthenticated
	}

	body := struct {
		DeviceSN  string   `json:"deviceSN"`
		Variables []string `json:"variables"`
	}{DeviceSN: serialNumber, Variables: RealtimeVariables}

	var blocks []struct {
		DeviceSN string           `json:"deviceSN"`
		Datas    []TelemetryPoint `json:"datas"`
	}
	if err := s.client.post(ctx, realtimeQueryPath, body, &blocks); err != nil {
		return nil, err
	}

	for _, block := range blocks {
		if block.DeviceSN == serialNumber {
			return Realtime(block.Datas), nil
		}
	}
	return nil, DeviceNotFoundError{SerialNumber: serialNumber}
}
