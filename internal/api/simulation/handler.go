package simulation

import (
	"errors"
	"net/http"

	dto "staking_sim/internal/api/dto/simulation"
	"staking_sim/internal/config"
	"staking_sim/internal/converter"
	"staking_sim/internal/model"
	"staking_sim/internal/repository"
	"staking_sim/internal/service"
	"staking_sim/internal/service/search"
	"staking_sim/pkg/req"
	"staking_sim/pkg/resp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv     service.SimulationService
	Defaults config.SimulationConfig
	Presets  config.PresetsConfig
	Log      *zap.Logger
}

type Handler struct {
	serv     service.SimulationService
	defaults config.SimulationConfig
	presets  config.PresetsConfig
	log      *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		serv:     deps.Serv,
		defaults: deps.Defaults,
		presets:  deps.Presets,
		log:      log,
	}
}

// Run один прогон агрегатора с заданной целью
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.RunRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err)
		return
	}

	runReq, err := converter.ToRunRequest(payload, h.defaults, h.presets)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.serv.Run(r.Context(), runReq)
	if err != nil {
		h.writeServiceError(w, "run", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToAggregateResponse(*result))
}

// Search поиск безопасной цели по сетке
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.SearchRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err)
		return
	}

	searchReq, err := converter.ToSearchRequest(payload, h.defaults, h.presets)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := h.serv.Search(r.Context(), searchReq, nil)
	if err != nil {
		h.writeServiceError(w, "search", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSearchResponse(rec))
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, errors.New("invalid run id"))
		return
	}

	rec, err := h.serv.GetRun(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get run", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSearchResponse(rec))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStatsResponse(h.serv.Stats()))
}

func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.serv.Presets()
	if err != nil {
		h.writeServiceError(w, "presets", err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToPresetsResponse(presets, h.serv.Ladders()))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrNoSafeTarget):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrPersistenceDisabled):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error(op+" failed", zap.Error(err))
		resp.WriteError(w, status, errors.New(op+" failed"))
		return
	}
	resp.WriteError(w, status, err)
}
