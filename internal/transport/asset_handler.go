package transport

import (
	"net/http"

	"catalog-api/internal/storage"

	"github.com/go-chi/chi/v5"
)

// AssetHandler serves stored product images under the public content root.
type AssetHandler struct {
	store      storage.Store
	publicPath string
}

func NewAssetHandler(store storage.Store, publicPath string) *AssetHandler {
	return &AssetHandler{store: store, publicPath: publicPath}
}

func (h *AssetHandler) RegisterRoutes(r chi.Router) {
	r.Get(h.publicPath+"/{file}", h.Serve)
}

func (h *AssetHandler) Serve(w http.ResponseWriter, r *http.Request) {
	h.store.ServeAsset(w, r, chi.URLParam(r, "file"))
}
