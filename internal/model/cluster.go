package model

// Cluster is a selectable network
type Cluster struct {
	Slug         string `json:"slug"`
	Label        string `json:"label"`
	HTTPEndpoint string `json:"httpEndPoint"`
	WSEndpoint   string `json:"wsEndPoint,omitempty"`
	Selected     bool   `json:"selected"`
}

// SelectClusterRequest represents request for POST /cluster/select
type SelectClusterRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// CustomClusterRequest represents request for POST /cluster/custom
type CustomClusterRequest struct {
	HTTPEndpoint string `json:"httpEndPoint" binding:"required"`
	WSEndpoint   string `json:"wsEndPoint,omitempty"`
	Label        string `json:"label,omitempty"`
}
