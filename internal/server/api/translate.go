package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/translate"
)

// TranslateHandler serves text-to-sign translation.
//
//	GET /api/translate?text=...        asset list as JSON
//	GET /api/translate/image?text=...  composed PNG
type TranslateHandler struct {
	translator *translate.Translator
	logger     *zap.Logger
}

// NewTranslateHandler creates a TranslateHandler.
func NewTranslateHandler(t *translate.Translator, logger *zap.Logger) *TranslateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranslateHandler{translator: t, logger: logger}
}

type translateResponse struct {
	Text string `json:"text"`
	translate.Result
}

func (h *TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	text := r.URL.Query().Get("text")

	switch strings.TrimPrefix(r.URL.Path, "/api/translate") {
	case "", "/":
		writeJSON(w, http.StatusOK, translateResponse{Text: text, Result: h.translator.Translate(text)})
	case "/image":
		h.image(w, r, text)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *TranslateHandler) image(w http.ResponseWriter, r *http.Request, text string) {
	data, res, err := h.translator.RenderPNG(text)
	if err != nil {
		if domain.IsKind(err, domain.KindAssetNotFound) {
			writeError(w, http.StatusNotFound, "No sign images for this text")
			return
		}
		h.logger.Error("Failed to render translation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to render translation")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Skipped-Chars", strconv.Itoa(len(res.Unrendered())))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
