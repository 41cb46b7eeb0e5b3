package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/metrics"
	"github.com/san-kum/loopsim/internal/sim"
	"github.com/san-kum/loopsim/internal/statistics"
	"github.com/san-kum/loopsim/internal/storage"
)

type SimulateRequest struct {
	Process string                 `json:"process"`
	Preset  string                 `json:"preset,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Save    bool                   `json:"save,omitempty"`
}

type SimulateResponse struct {
	ID      string             `json:"id,omitempty"`
	Process string             `json:"process"`
	Steps   int                `json:"steps"`
	Metrics map[string]float64 `json:"metrics"`
	Columns []string           `json:"columns"`
	Rows    [][]float64        `json:"rows"`
}

func registerSimulationEndpoints(rest *echo.Echo, s *Service) {
	rest.GET("/presets/", getPresets)
	rest.POST("/simulate/", s.simulate)
}

// returns the preset names of every process
func getPresets(c echo.Context) error {
	data := map[string][]string{}
	for _, p := range config.Processes() {
		data[p] = config.ListPresets(p)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

// resolve builds the configuration a request asks for.
func (r SimulateRequest) resolve() (config.Config, error) {
	process := r.Process
	if process == "" {
		process = config.ProcessTank
	}
	return config.Resolve(process, r.Preset, r.Params)
}

func isClientError(err error) bool {
	return errors.Is(err, config.ErrInvalidConfig) || errors.Is(err, config.ErrUnknownProcess)
}

// processLabel keeps client supplied names out of the metric label set.
func processLabel(process string) string {
	if process == "" {
		return config.ProcessTank
	}
	for _, p := range config.Processes() {
		if p == process {
			return process
		}
	}
	return statistics.UnknownProcess
}

func (s *Service) simulate(c echo.Context) error {
	var req SimulateRequest
	if err := c.Bind(&req); err != nil {
		return returnBadRequest(c, err)
	}

	cfg, err := req.resolve()
	if err != nil {
		s.recorder.Observe(processLabel(req.Process), 0, 0, err)
		if isClientError(err) {
			return returnBadRequest(c, err)
		}
		return returnError(c, err)
	}

	tbl, res, err := sim.Simulate(cfg, metrics.Default(cfg)...)
	if err != nil {
		s.recorder.Observe(cfg.Process, 0, 0, err)
		return returnError(c, err)
	}
	s.recorder.Observe(cfg.Process, res.Steps, tbl.Len(), nil)

	resp := SimulateResponse{
		Process: res.Process,
		Steps:   res.Steps,
		Metrics: res.Metrics,
		Columns: tbl.Columns,
		Rows:    tbl.Rows,
	}

	if req.Save {
		if s.store == nil {
			return returnError(c, errors.New("run storage is disabled"))
		}
		meta := storage.Metadata{
			Process: cfg.Process,
			Preset:  req.Preset,
			Steps:   res.Steps,
			Config:  cfg,
			Metrics: res.Metrics,
		}
		id, err := s.store.Save(meta, tbl)
		if err != nil {
			return returnError(c, err)
		}
		resp.ID = id
	}

	return c.JSONPretty(http.StatusOK, resp, indentationChar)
}
