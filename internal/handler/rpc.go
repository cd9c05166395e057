package handler

import (
	"net/http"

	"github.com/AlexZinkM/cosmic-wallet/internal/model"
	"github.com/AlexZinkM/cosmic-wallet/internal/protocol"
)

// RPCHandler carries page requests to the protocol handler.
// The requesting page is identified by the Origin header.
type RPCHandler struct {
	protocol *protocol.Handler
}

// NewRPCHandler creates an RPCHandler over p
func NewRPCHandler(p *protocol.Handler) *RPCHandler {
	return &RPCHandler{protocol: p}
}

// Handle handles POST /rpc
// @Summary      Page request
// @Description  connect, disconnect, signTransaction, signAllTransactions, sign and diffieHellman. Failures are reported in the error field with status 200
// @Tags         rpc
// @Accept       json
// @Produce      json
// @Param        Origin   header    string            true  "Requesting page"
// @Param        request  body      protocol.Request  true  "Request"
// @Success      200      {object}  protocol.Response
// @Router       /rpc [post]
func (h *RPCHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req protocol.Request
	if !decode(w, r, &req) {
		return
	}
	resp := h.protocol.Handle(r.Context(), r.Header.Get("Origin"), req)
	writeJSON(w, http.StatusOK, resp)
}

// Connections handles GET /rpc/connections
// @Summary      Connected origins
// @Tags         rpc
// @Produce      json
// @Success      200  {object}  map[string]protocol.Connection
// @Router       /rpc/connections [get]
func (h *RPCHandler) Connections(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.protocol.Connections())
}

// Disconnect handles POST /rpc/disconnect
// @Summary      Revoke an origin
// @Tags         rpc
// @Accept       json
// @Produce      json
// @Param        request  body      model.DisconnectRequest  true  "Origin"
// @Success      200      {object}  model.StatusResponse
// @Router       /rpc/disconnect [post]
func (h *RPCHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.DisconnectRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.protocol.Disconnect(req.Origin); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Origin disconnected"})
}
