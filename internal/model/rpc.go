package model

// DisconnectRequest represents request for POST /rpc/disconnect
type DisconnectRequest struct {
	Origin string `json:"origin" binding:"required"`
}
