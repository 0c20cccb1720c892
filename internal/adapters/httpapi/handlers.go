package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alejandrodnm/betagent/internal/application/advisor"
	"github.com/alejandrodnm/betagent/internal/application/calculator"
	"github.com/alejandrodnm/betagent/internal/application/diagnostics"
	"github.com/alejandrodnm/betagent/internal/domain"
)

const (
	maxBodyBytes    = 1 << 20
	maxBatchSize    = 1000
	defaultHistoryN = 10
	maxHistoryN     = 100
)

// Handler contiene las dependencias de los handlers HTTP.
type Handler struct {
	advisor *advisor.Service    // puede ser nil o estar deshabilitado
	prober  *diagnostics.Prober // nil = sin exchange configurado
	workers int
	metrics *metrics
}

// NewHandler crea un Handler. advisor y prober son opcionales.
func NewHandler(adv *advisor.Service, prober *diagnostics.Prober, workers int) *Handler {
	return &Handler{advisor: adv, prober: prober, workers: workers, metrics: newMetrics()}
}

type adviceResponse struct {
	Available bool   `json:"available"`
	Text      string `json:"text,omitempty"`
	Error     string `json:"error,omitempty"`
}

type promotionResponse struct {
	Result  domain.PromotionResult `json:"result"`
	Verdict string                 `json:"verdict"`
	Summary string                 `json:"summary"`
	Advice  *adviceResponse        `json:"advice,omitempty"`
}

type dutchResponse struct {
	Result  domain.DutchResult `json:"result"`
	Kind    string             `json:"kind"`
	Summary string             `json:"summary"`
}

type batchRequest struct {
	Candidates []calculator.Candidate `json:"candidates"`
}

type outcomeResponse struct {
	Index   int                     `json:"index"`
	Name    string                  `json:"name"`
	Result  *domain.PromotionResult `json:"result,omitempty"`
	Verdict string                  `json:"verdict,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Field   string                  `json:"field,omitempty"`
}

type batchResponse struct {
	Outcomes []outcomeResponse `json:"outcomes"`
	Ranking  []int             `json:"ranking"` // índices de outcomes válidos por EV desc
	Summary  struct {
		Positive   int     `json:"positive"`
		Negative   int     `json:"negative"`
		Invalid    int     `json:"invalid"`
		PositiveEV float64 `json:"positive_ev"`
	} `json:"summary"`
}

type probeResponse struct {
	ID        string    `json:"id"`
	CheckedAt time.Time `json:"checked_at"`
	Exchange  string    `json:"exchange"`
	OK        bool      `json:"ok"`
	Balance   float64   `json:"balance"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Health devuelve el estado del servicio.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "betagent",
		"advisory": h.advisor.Enabled(),
		"exchange": h.prober != nil,
	})
}

// EvaluatePromotion calcula el EV de una promo. Con ?advise=true añade texto del advisor.
func (h *Handler) EvaluatePromotion(w http.ResponseWriter, r *http.Request) {
	var in domain.PromotionInput
	if !decodeBody(w, r, &in) {
		return
	}

	result, err := domain.EvaluatePromotion(in)
	if err != nil {
		h.metrics.calculation("promotion", "invalid")
		respondCalcError(w, err)
		return
	}
	h.metrics.calculation("promotion", promotionOutcome(result))

	resp := promotionResponse{
		Result:  result,
		Verdict: result.Verdict().String(),
		Summary: domain.PromotionSummary(result),
	}

	if advise, _ := strconv.ParseBool(r.URL.Query().Get("advise")); advise {
		adv := h.advisor.Advise(r.Context(), result)
		resp.Advice = &adviceResponse{Available: adv.Available, Text: adv.Text}
		if adv.Err != nil {
			resp.Advice.Error = adv.Err.Error()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// SolveDutch calcula el stake de cobertura para igualar retornos.
func (h *Handler) SolveDutch(w http.ResponseWriter, r *http.Request) {
	var in domain.DutchInput
	if !decodeBody(w, r, &in) {
		return
	}

	result, err := domain.SolveDutch(in)
	if err != nil {
		h.metrics.calculation("dutch", "invalid")
		respondCalcError(w, err)
		return
	}
	if result.Kind() == domain.DutchArbitrage {
		h.metrics.calculation("dutch", "arbitrage")
	} else {
		h.metrics.calculation("dutch", "qualifying_loss")
	}

	respondJSON(w, http.StatusOK, dutchResponse{
		Result:  result,
		Kind:    result.Kind().String(),
		Summary: domain.DutchSummary(result),
	})
}

// EvaluateBatch evalúa un lote de candidatos. Los inválidos no fallan la petición.
func (h *Handler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Candidates) == 0 {
		respondError(w, http.StatusBadRequest, "candidates must not be empty")
		return
	}
	if len(req.Candidates) > maxBatchSize {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("too many candidates: %d (max %d)", len(req.Candidates), maxBatchSize))
		return
	}
	for i := range req.Candidates {
		if req.Candidates[i].Name == "" {
			req.Candidates[i].Name = fmt.Sprintf("bet-%d", i+1)
		}
	}

	outcomes := calculator.EvaluateBatch(r.Context(), req.Candidates, h.workers)

	var resp batchResponse
	resp.Outcomes = make([]outcomeResponse, len(outcomes))
	for i, o := range outcomes {
		or := outcomeResponse{Index: o.Index, Name: o.Candidate.Name}
		if o.OK() {
			res := o.Result
			or.Result = &res
			or.Verdict = res.Verdict().String()
			h.metrics.calculation("batch", promotionOutcome(res))
		} else {
			h.metrics.calculation("batch", "invalid")
			or.Error = o.Err.Error()
			var iie *domain.InvalidInputError
			if errors.As(o.Err, &iie) {
				or.Field = iie.Field
			}
		}
		resp.Outcomes[i] = or
	}

	resp.Ranking = make([]int, 0, len(outcomes))
	for _, o := range calculator.Rank(outcomes) {
		resp.Ranking = append(resp.Ranking, o.Index)
	}

	s := calculator.Summarize(outcomes)
	resp.Summary.Positive = s.Positive
	resp.Summary.Negative = s.Negative
	resp.Summary.Invalid = s.Invalid
	resp.Summary.PositiveEV = s.PositiveEV

	respondJSON(w, http.StatusOK, resp)
}

// ProbeBalance ejecuta una prueba de saldo contra el exchange.
// Con ?history=N añade las N últimas pruebas registradas.
func (h *Handler) ProbeBalance(w http.ResponseWriter, r *http.Request) {
	if h.prober == nil {
		respondError(w, http.StatusServiceUnavailable, "exchange balance reader not configured")
		return
	}

	probe, err := h.prober.Probe(r.Context())
	if err != nil {
		slog.Error("balance probe journal failed", "err", err)
		respondError(w, http.StatusInternalServerError, "could not record probe")
		return
	}
	h.metrics.probe(probe.Exchange, probe.OK)

	resp := map[string]any{"probe": toProbeResponse(probe)}

	if raw := r.URL.Query().Get("history"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			n = defaultHistoryN
		}
		if n > maxHistoryN {
			n = maxHistoryN
		}
		history, err := h.prober.History(r.Context(), n)
		if err != nil {
			slog.Error("balance probe history failed", "err", err)
			respondError(w, http.StatusInternalServerError, "could not read probe history")
			return
		}
		items := make([]probeResponse, 0, len(history))
		for _, p := range history {
			items = append(items, toProbeResponse(p))
		}
		resp["history"] = items
	}

	respondJSON(w, http.StatusOK, resp)
}

func promotionOutcome(r domain.PromotionResult) string {
	if r.Profitable() {
		return "positive"
	}
	return "negative"
}

func toProbeResponse(p domain.BalanceProbe) probeResponse {
	return probeResponse{
		ID:        p.ID,
		CheckedAt: p.CheckedAt,
		Exchange:  p.Exchange,
		OK:        p.OK,
		Balance:   p.Balance,
		LatencyMS: p.Latency.Milliseconds(),
		Error:     p.Error,
	}
}

// decodeBody decodifica el JSON del body. Si falla, ya ha respondido 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

// respondCalcError traduce errores del motor: InvalidInput → 400 con el campo.
func respondCalcError(w http.ResponseWriter, err error) {
	var iie *domain.InvalidInputError
	if errors.As(err, &iie) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: iie.Field})
		return
	}
	slog.Error("calculation failed", "err", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

// respondJSON escribe una respuesta JSON. Se serializa antes de escribir la
// cabecera: un fallo de encoding responde 500, no un 200 vacío.
func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("encode response", "err", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "could not encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// respondError escribe una respuesta de error.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
