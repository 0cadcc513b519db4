// Package httpapi serves the simulator as a small JSON-over-HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/xtding233/montyhall/internal/montyhall"
	"github.com/xtding233/montyhall/internal/simulator"
	"github.com/xtding233/montyhall/internal/store"
)

type errResp struct {
	Err string `json:"err"`
}

type scenarioResp struct {
	Name     string  `json:"name"`
	Doors    int     `json:"doors"`
	Trials   int     `json:"trials"`
	Expected float64 `json:"expected_switch"`
}

type handlers struct {
	sim *simulator.Service
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseBool(r *http.Request, key string) (bool, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return false, false, ""
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, "invalid " + key
	}
	return v, true, ""
}

func parseSeed(r *http.Request) (*uint64, string) {
	s := r.URL.Query().Get("seed")
	if s == "" {
		return nil, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, "invalid seed"
	}
	return &v, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, montyhall.ErrInvalidConfiguration) {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, errResp{Err: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
}

// parseRequest reads scenario, doors, trials and seed.
func parseRequest(r *http.Request) (simulator.EstimateRequest, string) {
	req := simulator.EstimateRequest{Scenario: r.URL.Query().Get("scenario")}
	var msg string
	if req.NumDoors, _, msg = parseInt(r, "doors"); msg != "" {
		return req, msg
	}
	if req.NumTrials, _, msg = parseInt(r, "trials"); msg != "" {
		return req, msg
	}
	req.Seed, msg = parseSeed(r)
	return req, msg
}

// GET /trial?doors=3&switch=true&seed=1
func (h *handlers) trial(w http.ResponseWriter, r *http.Request) {
	doors, ok, msg := parseInt(r, "doors")
	if msg != "" {
		badRequest(w, msg)
		return
	}
	if !ok {
		doors = montyhall.MinDoors
	}
	sw, _, msg := parseBool(r, "switch")
	if msg != "" {
		badRequest(w, msg)
		return
	}
	seed, msg := parseSeed(r)
	if msg != "" {
		badRequest(w, msg)
		return
	}
	out, err := h.sim.Trial(doors, sw, seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /estimate?doors=10&trials=10000&strategy=switch
// "switch=true|false" is accepted in place of strategy.
func (h *handlers) estimate(w http.ResponseWriter, r *http.Request) {
	req, msg := parseRequest(r)
	if msg != "" {
		badRequest(w, msg)
		return
	}
	req.Strategy = montyhall.Strategy(r.URL.Query().Get("strategy"))
	if req.Strategy == "" {
		sw, ok, msg := parseBool(r, "switch")
		if msg != "" || !ok {
			badRequest(w, "missing param strategy")
			return
		}
		req.Strategy = montyhall.StrategyFor(sw)
	}
	out, err := h.sim.Estimate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /compare?scenario=classic or /compare?doors=3&trials=10000
func (h *handlers) compare(w http.ResponseWriter, r *http.Request) {
	req, msg := parseRequest(r)
	if msg != "" {
		badRequest(w, msg)
		return
	}
	out, err := h.sim.Compare(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /scenarios
func (h *handlers) scenarios(w http.ResponseWriter, _ *http.Request) {
	cat, err := h.sim.Scenarios()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]scenarioResp, 0, len(cat.Scenarios))
	for _, sc := range cat.Scenarios {
		out = append(out, scenarioResp{
			Name:     sc.Name,
			Doors:    sc.NumDoors,
			Trials:   sc.NumTrials,
			Expected: montyhall.ExpectedWinRate(sc.NumDoors, montyhall.StrategySwitch),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /runs?limit=20
func (h *handlers) runs(w http.ResponseWriter, r *http.Request) {
	limit, _, msg := parseInt(r, "limit")
	if msg != "" {
		badRequest(w, msg)
		return
	}
	out, err := h.sim.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []store.Run{}
	}
	writeJSON(w, http.StatusOK, out)
}
