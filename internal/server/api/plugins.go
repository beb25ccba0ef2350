package api

import (
	"net/http"

	"github.com/ayusman/tofgesture/internal/plugin"
)

// PluginLister lists discovered plugins.
type PluginLister interface {
	List() []*plugin.Plugin
}

// PluginHandler serves GET /api/plugins.
type PluginHandler struct {
	plugins PluginLister
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(p PluginLister) *PluginHandler {
	return &PluginHandler{plugins: p}
}

type listPluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

// ServeHTTP lists the manifests of all discovered plugins.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := h.plugins.List()
	response := listPluginsResponse{Plugins: make([]plugin.Manifest, 0, len(plugins))}
	for _, p := range plugins {
		response.Plugins = append(response.Plugins, p.Manifest)
	}
	writeJSON(w, http.StatusOK, response)
}
