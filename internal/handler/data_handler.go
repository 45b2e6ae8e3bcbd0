package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-community/internal/model"
	"go-community/pkg/apierror"
)

const statsDateLayout = "2006-01-02"

type statsService interface {
	CalculateUV(ctx context.Context, start time.Time, end time.Time) (int64, error)
	CalculateDAU(ctx context.Context, start time.Time, end time.Time) (int64, error)
}

// DataHandler serves the admin statistics page.
type DataHandler struct {
	service statsService
}

func NewDataHandler(service statsService) *DataHandler {
	return &DataHandler{service: service}
}

func (h *DataHandler) Page(_ http.ResponseWriter, _ *http.Request) (*model.ModelAndView, error) {
	return model.NewView("site/admin/data"), nil
}

func (h *DataHandler) UV(_ http.ResponseWriter, r *http.Request) (*model.ModelAndView, error) {
	return h.calculate(r, "uvResult", h.service.CalculateUV)
}

func (h *DataHandler) DAU(_ http.ResponseWriter, r *http.Request) (*model.ModelAndView, error) {
	return h.calculate(r, "dauResult", h.service.CalculateDAU)
}

func (h *DataHandler) calculate(
	r *http.Request,
	key string,
	count func(ctx context.Context, start time.Time, end time.Time) (int64, error),
) (*model.ModelAndView, error) {
	start, err := parseStatsDate(r.FormValue("start"), "start")
	if err != nil {
		return nil, err
	}
	end, err := parseStatsDate(r.FormValue("end"), "end")
	if err != nil {
		return nil, err
	}

	value, err := count(r.Context(), start, end)
	if err != nil {
		return nil, err
	}

	return model.NewView("site/admin/data").AddObject(key, model.StatsResult{
		Start: start.Format(statsDateLayout),
		End:   end.Format(statsDateLayout),
		Value: value,
	}), nil
}

func parseStatsDate(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apierror.BadRequest(field+" is required", field)
	}

	day, err := time.Parse(statsDateLayout, raw)
	if err != nil {
		return time.Time{}, apierror.BadRequest(field+" must be formatted as YYYY-MM-DD", field)
	}
	return day, nil
}
