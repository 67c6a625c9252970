package assets

import (
	"crypto/sha256"
	"errors"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog/log"
)

// Config controls the client script build.
type Config struct {
	// EntryPoint is the source file for the enhancement script
	EntryPoint string
	// PublicPath is the URL prefix the built files are served under
	PublicPath string
	// Minify enables whitespace/identifier/syntax minification
	Minify bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		EntryPoint: "ui/enhance.ts",
		PublicPath: "/assets/",
		Minify:     true,
	}
}

// Pipeline builds the optional client enhancement script in memory and
// serves it under content-fingerprinted paths, so the page can reference
// it with an immutable cache policy. The page only attaches the script
// tags when the visitor's script preference allows it.
type Pipeline struct {
	config  Config
	mu      sync.RWMutex
	files   map[string][]byte
	scripts []string
}

// New creates a new asset pipeline with the given configuration
func New(config Config) *Pipeline {
	return &Pipeline{
		config: config,
		files:  map[string][]byte{},
	}
}

// Build runs esbuild and replaces the in-memory file set. Output names
// carry a base58-encoded SHA256 content fingerprint for cache busting.
func (p *Pipeline) Build() error {
	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{p.config.EntryPoint},
		Bundle:            true,
		Write:             false,
		Outdir:            "assets",
		Format:            api.FormatESModule,
		MinifyWhitespace:  p.config.Minify,
		MinifyIdentifiers: p.config.Minify,
		MinifySyntax:      p.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
	})

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		return errors.New("esbuild failed with errors")
	}

	files := map[string][]byte{}
	scripts := []string{}

	for _, file := range result.OutputFiles {
		name := fingerprintName(path.Base(file.Path), file.Contents)
		files[name] = file.Contents
		if strings.HasSuffix(name, ".js") {
			scripts = append(scripts, p.config.PublicPath+name)
		}
		log.Info().Str("file", name).Int("bytes", len(file.Contents)).Msg("Built file")
	}

	p.mu.Lock()
	p.files = files
	p.scripts = scripts
	p.mu.Unlock()

	return nil
}

// Scripts returns the script URLs for the built entry point.
func (p *Pipeline) Scripts() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scripts
}

// Handler serves the built files. Fingerprinted names never change
// content, so responses are immutable for a year.
func (p *Pipeline) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, p.config.PublicPath)

		p.mu.RLock()
		contents, ok := p.files[name]
		p.mu.RUnlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentType(name))
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		_, _ = w.Write(contents)
	})
}

// fingerprintName inserts a base58 SHA256 prefix into the file name, e.g.
// enhance.js -> enhance-3mJr7A.js.
func fingerprintName(name string, contents []byte) string {
	hash := sha256.Sum256(contents)
	fingerprint := base58.Encode(hash[:])[:8]

	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + fingerprint + ext
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".map":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
