package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/monumentfinder/config"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/monument"
	"github.com/aukilabs/monumentfinder/registry"
	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/segmentio/encoding/json"
)

const (
	ErrTypeBadRequest     = "bad_request"
	ErrTypeRegionNotFound = "region_not_found"
	ErrTypeConfigSave     = "config_save_failed"

	maxRequestBodySize = 1 << 16
)

// MonumentHandler serves queries over the regions of a registry.
type MonumentHandler struct {
	Registry *registry.Registry
	Config   *config.Configuration

	// The file where the configuration is saved after a capture. Captures
	// are kept in memory only when empty.
	ConfigPath string
}

// RegisterRoutes registers the read only query routes.
func (h *MonumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /monuments", h.HandleFind)
	mux.HandleFunc("GET /monuments/legacy", h.HandleLegacyFind)
	mux.HandleFunc("GET /monuments/closest", h.HandleClosest)
	mux.HandleFunc("GET /monuments/nearest", h.HandleNearest)
	mux.HandleFunc("GET /monuments/{id}", h.HandleGet)
}

// RegisterAdminRoutes registers the routes that modify the configuration.
func (h *MonumentHandler) RegisterAdminRoutes(mux *http.ServeMux, adminToken string) {
	mux.HandleFunc("POST /monuments/capture", VerifyAdminToken(adminToken, h.HandleCapture))
	mux.HandleFunc("GET /monuments/captures", VerifyAdminToken(adminToken, h.HandleCaptures))
}

type monumentsResponse struct {
	Count     int             `json:"count"`
	Monuments []monument.View `json:"monuments"`
}

func (h *MonumentHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	c, err := registry.ParseCategory(q.Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid category").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	f := monument.Filter{Text: q.Get("filter")}
	if q.Has("short_name") {
		shortName := q.Get("short_name")
		f.ShortName = &shortName
	}
	if q.Has("alias") {
		alias := q.Get("alias")
		f.Alias = &alias
	}

	writeJSON(w, http.StatusOK, views(h.Registry.Find(c, f)))
}

func (h *MonumentHandler) HandleLegacyFind(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views(h.Registry.LegacyFindMonuments(r.URL.Query().Get("filter"))))
}

func (h *MonumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a, ok := h.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("region not found").
			WithType(ErrTypeRegionNotFound).
			WithTag("id", id))
		return
	}

	writeJSON(w, http.StatusOK, a.View())
}

type closestResponse struct {
	Monument         monument.View   `json:"monument"`
	Inside           bool            `json:"inside"`
	RelativePosition *models.Vector3 `json:"relative_position,omitempty"`
	Distance         float64         `json:"distance"`
}

func (h *MonumentHandler) HandleClosest(w http.ResponseWriter, r *http.Request) {
	p, err := parsePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, ok := h.Registry.Closest(p)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no region found").
			WithType(ErrTypeRegionNotFound))
		return
	}

	res := closestResponse{
		Monument: report.Adapter.View(),
		Inside:   report.Inside,
		Distance: report.Distance,
	}
	if report.Inside {
		relative := models.NewVector3(report.RelativePosition)
		res.RelativePosition = &relative
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *MonumentHandler) HandleNearest(w http.ResponseWriter, r *http.Request) {
	p, err := parsePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := registry.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid category").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	a, ok := h.Registry.Nearest(c, p)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no region found").
			WithType(ErrTypeRegionNotFound).
			WithTag("category", c))
		return
	}

	writeJSON(w, http.StatusOK, a.View())
}

// CaptureRequest selects the region to capture, either by ID or as the
// region of the given category nearest to a position.
type CaptureRequest struct {
	ID       string          `json:"id,omitempty"`
	Position *models.Vector3 `json:"position,omitempty"`
	Category string          `json:"category,omitempty"`

	// The configuration key. Defaults to the region alias or short name.
	Key string `json:"key,omitempty"`
}

type CaptureResponse struct {
	Key      string        `json:"key"`
	Inserted bool          `json:"inserted"`
	Monument monument.View `json:"monument"`
}

func (h *MonumentHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("reading request body failed").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	var req CaptureRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("decoding capture request failed").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	a, err := h.captureTarget(req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.IsType(err, ErrTypeRegionNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	key := req.Key
	if key == "" {
		key = registry.CaptureKey(a)
	}

	inserted := h.Registry.RegisterCapture(h.Config, key, a)
	if inserted && h.ConfigPath != "" {
		if err := h.Config.Save(h.ConfigPath); err != nil {
			// Unsaved captures are dropped so that the request can be retried.
			h.Config.RemoveMonumentSettings(key)
			writeError(w, http.StatusInternalServerError, errors.New("saving configuration failed").
				WithType(ErrTypeConfigSave).
				WithTag("path", h.ConfigPath).
				Wrap(err))
			return
		}
	}

	status := http.StatusCreated
	if !inserted {
		status = http.StatusConflict
	}

	writeJSON(w, status, CaptureResponse{
		Key:      key,
		Inserted: inserted,
		Monument: a.View(),
	})
}

type capturesResponse struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

// HandleCaptures lists the configured region keys.
func (h *MonumentHandler) HandleCaptures(w http.ResponseWriter, r *http.Request) {
	keys := h.Config.Keys()
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, capturesResponse{Count: len(keys), Keys: keys})
}

func (h *MonumentHandler) captureTarget(req CaptureRequest) (*monument.Adapter, error) {
	if req.ID != "" {
		a, ok := h.Registry.Get(req.ID)
		if !ok {
			return nil, errors.New("region not found").
				WithType(ErrTypeRegionNotFound).
				WithTag("id", req.ID)
		}
		return a, nil
	}

	if req.Position == nil {
		return nil, errors.New("capture request requires an id or a position").
			WithType(ErrTypeBadRequest)
	}

	c, err := registry.ParseCategory(req.Category)
	if err != nil {
		return nil, errors.New("invalid category").
			WithType(ErrTypeBadRequest).
			Wrap(err)
	}

	a, ok := h.Registry.Nearest(c, req.Position.Vec())
	if !ok {
		return nil, errors.New("no region found").
			WithType(ErrTypeRegionNotFound).
			WithTag("category", c)
	}
	return a, nil
}

func views(adapters []*monument.Adapter) monumentsResponse {
	res := monumentsResponse{
		Count:     len(adapters),
		Monuments: make([]monument.View, 0, len(adapters)),
	}
	for _, a := range adapters {
		res.Monuments = append(res.Monuments, a.View())
	}
	return res
}

func parsePosition(r *http.Request) (spatial.Vec3, error) {
	q := r.URL.Query()

	var coords [3]float64
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			return spatial.Vec3{}, errors.New("invalid position").
				WithType(ErrTypeBadRequest).
				WithTag("coordinate", name).
				WithTag("value", q.Get(name)).
				Wrap(err)
		}
		coords[i] = v
	}

	return spatial.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logs.Error(err)
	} else {
		logs.Debug(err)
	}

	writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Type:  errors.Type(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logs.Error(errors.New("encoding response failed").Wrap(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
