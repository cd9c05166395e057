package handler

import (
	"net/http"

	"github.com/AlexZinkM/cosmic-wallet/internal/cluster"
	"github.com/AlexZinkM/cosmic-wallet/internal/model"
	"github.com/AlexZinkM/cosmic-wallet/internal/wallet"
)

// ClusterHandler serves the cluster selection endpoints
type ClusterHandler struct {
	svc *wallet.Service
}

// NewClusterHandler creates a ClusterHandler over svc
func NewClusterHandler(svc *wallet.Service) *ClusterHandler {
	return &ClusterHandler{svc: svc}
}

// List handles GET /cluster
// @Summary      List clusters
// @Tags         cluster
// @Produce      json
// @Success      200  {array}  model.Cluster
// @Router       /cluster [get]
func (h *ClusterHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	current := h.svc.CurrentCluster()
	clusters := h.svc.Clusters()
	out := make([]model.Cluster, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, toCluster(c, c.Slug == current.Slug))
	}
	writeJSON(w, http.StatusOK, out)
}

// Select handles POST /cluster/select
// @Summary      Select cluster
// @Description  Switches the connection; balances of the active account are re-read on the new cluster
// @Tags         cluster
// @Accept       json
// @Produce      json
// @Param        request  body      model.SelectClusterRequest  true  "Cluster slug"
// @Success      200      {object}  model.Cluster
// @Failure      400      {object}  model.ErrorResponse
// @Router       /cluster/select [post]
func (h *ClusterHandler) Select(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.SelectClusterRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.SelectCluster(r.Context(), cluster.Slug(req.Slug))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCluster(c, true))
}

// Custom handles POST /cluster/custom
// @Summary      Set custom cluster
// @Description  Stores a custom RPC endpoint and selects it
// @Tags         cluster
// @Accept       json
// @Produce      json
// @Param        request  body      model.CustomClusterRequest  true  "Endpoints"
// @Success      200      {object}  model.Cluster
// @Failure      400      {object}  model.ErrorResponse
// @Router       /cluster/custom [post]
func (h *ClusterHandler) Custom(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.CustomClusterRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.SetCustomCluster(r.Context(), req.HTTPEndpoint, req.Label, req.WSEndpoint)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCluster(c, true))
}

func toCluster(c cluster.Cluster, selected bool) model.Cluster {
	return model.Cluster{
		Slug:         string(c.Slug),
		Label:        c.Label,
		HTTPEndpoint: c.HTTPEndpoint,
		WSEndpoint:   c.WSEndpoint,
		Selected:     selected,
	}
}
