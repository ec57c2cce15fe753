// Package inverter reads realtime grid and inverter values from a Fronius
// inverter over its Solar API.
package inverter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solarweather/internal/models"
)

const (
	meterPath    = "/solar_api/v1/GetMeterRealtimeData.cgi"
	inverterPath = "/solar_api/v1/GetInverterRealtimeData.cgi"

	defaultTimeout = 10 * time.Second
)

// Client talks to one inverter. Host may be "10.0.0.5" or a full base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(host string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	base := strings.TrimRight(host, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{baseURL: base, http: httpClient}
}

type meterResponse struct {
	Body struct {
		Data map[string]meterData `json:"Data"`
	} `json:"Body"`
}

type meterData struct {
	PowerRealSum     float64 `json:"PowerReal_P_Sum"`
	PowerFactorSum   float64 `json:"PowerFactor_Sum"`
	PowerApparentSum float64 `json:"PowerApparent_S_Sum"`
	PowerReactiveSum float64 `json:"PowerReactive_Q_Sum"`
	VoltagePhase1    float64 `json:"Voltage_AC_Phase_1"`
	CurrentSum       float64 `json:"Current_AC_Sum"`
}

type measurement struct {
	Unit  string  `json:"Unit"`
	Value float64 `json:"Value"`
}

type inverterResponse struct {
	Body struct {
		Data map[string]measurement `json:"Data"`
	} `json:"Body"`
}

// Reading polls both endpoints and merges them into one solar reading
// stamped with at. Missing values read as 0.
func (c *Client) Reading(ctx context.Context, at time.Time) (models.SolarReading, error) {
	var meter meterResponse
	if err := c.get(ctx, meterPath, url.Values{"Scope": {"System"}}, &meter); err != nil {
		return models.SolarReading{}, fmt.Errorf("meter data: %w", err)
	}
	var inv inverterResponse
	if err := c.get(ctx, inverterPath, url.Values{
		"Scope":          {"Device"},
		"DeviceId":       {"1"},
		"DataCollection": {"CommonInverterData"},
	}, &inv); err != nil {
		return models.SolarReading{}, fmt.Errorf("inverter data: %w", err)
	}

	grid := meter.Body.Data["0"]
	val := func(k string) float64 { return inv.Body.Data[k].Value }

	r := models.SolarReading{
		GridPowerUsageReal:  grid.PowerRealSum,
		GridPowerFactor:     grid.PowerFactorSum,
		GridPowerApparent:   grid.PowerApparentSum,
		GridPowerReactive:   grid.PowerReactiveSum,
		GridACVoltage:       grid.VoltagePhase1,
		GridACCurrent:       grid.CurrentSum,
		InverterACFrequency: val("FAC"),
		InverterACCurrent:   val("IAC"),
		InverterACVoltage:   val("UAC"),
		InverterACPower:     val("PAC"),
		InverterDCCurrent:   val("IDC"),
		InverterDCVoltage:   val("UDC"),
		TimeStamp:           at.Unix(),
		TimeYear:            at.Year(),
		TimeMonth:           int(at.Month()),
		TimeDay:             at.Day(),
	}
	// grid power is positive when importing, so house load is solar plus grid
	r.PowerConsumption = r.InverterACPower + r.GridPowerUsageReal
	return r, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
