// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"
)

// fontURL is the name the Go Regular font is registered under
const fontURL = "go-regular.ttf"

// maxCachedTexts bounds the rendered text cache. The status line changes
// every frame, so stale textures are released in bulk by Trim.
const maxCachedTexts = 64

type textKey struct {
	text string
	size float32
}

// AssetManager owns the font and the text textures drawn with it
type AssetManager struct {
	loaded bool
	fonts  map[float32]*common.Font
	texts  map[textKey]common.Texture
}

// NewAssetManager creates an empty asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{
		fonts: make(map[float32]*common.Font),
		texts: make(map[textKey]common.Texture),
	}
}

// LoadAssets registers the embedded font with engo. It must run from a
// scene's Preload.
func (am *AssetManager) LoadAssets() error {
	if am.loaded {
		return nil
	}
	if err := engo.Files.LoadReaderData(fontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("load font %s: %w", fontURL, err)
	}
	am.loaded = true
	return nil
}

// Loaded reports whether LoadAssets succeeded
func (am *AssetManager) Loaded() bool { return am.loaded }

// font returns the white font of the given pixel size. Text is tinted by
// the render component color.
func (am *AssetManager) font(size float32) (*common.Font, error) {
	if f, ok := am.fonts[size]; ok {
		return f, nil
	}
	f := &common.Font{
		URL:  fontURL,
		FG:   color.White,
		Size: float64(size),
	}
	if err := f.CreatePreloaded(); err != nil {
		return nil, fmt.Errorf("create font of size %v: %w", size, err)
	}
	am.fonts[size] = f
	return f, nil
}

// Text returns a texture of s rendered at size pixels
func (am *AssetManager) Text(s string, size float32) (common.Texture, bool) {
	if !am.loaded {
		return common.Texture{}, false
	}
	key := textKey{text: s, size: size}
	if tex, ok := am.texts[key]; ok {
		return tex, true
	}
	f, err := am.font(size)
	if err != nil {
		return common.Texture{}, false
	}
	tex := f.Render(s)
	am.texts[key] = tex
	return tex, true
}

// CachedTexts returns the number of rendered texts held
func (am *AssetManager) CachedTexts() int { return len(am.texts) }

// Trim releases every cached text once the cache is full. Call it between
// frames, while no entity draws a cached texture.
func (am *AssetManager) Trim() {
	if len(am.texts) >= maxCachedTexts {
		am.releaseTexts()
	}
}

func (am *AssetManager) releaseTexts() {
	for key, tex := range am.texts {
		tex.Close()
		delete(am.texts, key)
	}
}

// Close releases every texture
func (am *AssetManager) Close() {
	am.releaseTexts()
}
