package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/translate"
)

func writeSign(t *testing.T, dir, name string, width, height int) {
	t.Helper()
	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.SetTo(gocv.NewScalar(10, 20, 30, 0))
	if !gocv.IMWrite(filepath.Join(dir, name), img) {
		t.Fatalf("failed to write %s", name)
	}
}

func newTestTranslator(t *testing.T) *translate.Translator {
	t.Helper()
	dir := t.TempDir()
	writeSign(t, dir, "a.png", 100, 100)
	writeSign(t, dir, "b.png", 50, 100)
	writeSign(t, dir, translate.SpaceFile, 20, 40)

	return translate.New(translate.Config{
		AssetDir: dir,
		Table:    translate.Table{'A': "a.png", 'B': "b.png"},
		Height:   50,
	}, nil)
}

func TestTranslateHandler_JSON(t *testing.T) {
	handler := NewTranslateHandler(newTestTranslator(t), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/translate?text=ab+c", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var response struct {
		Text    string            `json:"text"`
		Assets  []translate.Asset `json:"assets"`
		Skipped []domain.Char     `json:"skipped"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}

	if response.Text != "ab c" {
		t.Errorf("text = %q", response.Text)
	}
	want := []string{"a.png", "b.png", translate.SpaceFile}
	if len(response.Assets) != len(want) {
		t.Fatalf("assets = %+v", response.Assets)
	}
	for i, a := range response.Assets {
		if a.File != want[i] {
			t.Errorf("asset %d = %s, want %s", i, a.File, want[i])
		}
	}
	if len(response.Skipped) != 1 || response.Skipped[0] != 'C' {
		t.Errorf("skipped = %v, want [C]", response.Skipped)
	}
}

func TestTranslateHandler_Image(t *testing.T) {
	handler := NewTranslateHandler(newTestTranslator(t), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/translate/image?text=AB", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %s", ct)
	}

	img, err := gocv.IMDecode(rec.Body.Bytes(), gocv.IMReadColor)
	if err != nil {
		t.Fatal(err)
	}
	defer img.Close()
	// 100x100 -> 50x50, 50x100 -> 25x50
	if img.Cols() != 75 || img.Rows() != 50 {
		t.Errorf("image = %dx%d, want 75x50", img.Cols(), img.Rows())
	}
}

func TestTranslateHandler_ImageSkippedCount(t *testing.T) {
	dir := t.TempDir()
	writeSign(t, dir, "a.png", 100, 100)
	tr := translate.New(translate.Config{
		AssetDir: dir,
		Table:    translate.Table{'A': "a.png", 'B': "missing.png"},
	}, nil)
	handler := NewTranslateHandler(tr, nil)
	rec := httptest.NewRecorder()

	// C is unmapped, B is mapped but its file is gone
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/translate/image?text=ABC", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Skipped-Chars"); got != "2" {
		t.Errorf("X-Skipped-Chars = %s, want 2", got)
	}
}

func TestTranslateHandler_ImageNothingToRender(t *testing.T) {
	handler := NewTranslateHandler(newTestTranslator(t), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/translate/image?text=zzz", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTranslateHandler_Method(t *testing.T) {
	handler := NewTranslateHandler(newTestTranslator(t), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/translate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
