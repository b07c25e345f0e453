// Package shaderio loads WGSL shader sources, compiles them to SPIR-V
// via naga, caches the compiled binary keyed on source mtime, reflects
// resource bindings, and drives hot-reload (spec §4.4).
package shaderio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/naga"
)

// Source identifies one shader's location on disk: the WGSL source
// file, and where its compiled SPIR-V is cached.
type Source struct {
	SourcePath string
	CachePath  string
}

// Compiled is a loaded, compiled shader plus the staleness metadata
// needed to decide whether it must be recompiled on a later scan.
type Compiled struct {
	SPIRV       []byte
	SourceMtime time.Time
	Reflection  Reflection
}

// Load reads src.SourcePath, compares its mtime to the cached SPIR-V's
// mtime, and recompiles only when the source is newer (or no cache
// exists yet). The recompiled binary is written back to src.CachePath.
func Load(src Source) (Compiled, error) {
	info, err := os.Stat(src.SourcePath)
	if err != nil {
		return Compiled{}, fmt.Errorf("shaderio: stat source %s: %w", src.SourcePath, err)
	}

	if cacheInfo, err := os.Stat(src.CachePath); err == nil && !info.ModTime().After(cacheInfo.ModTime()) {
		spirv, err := os.ReadFile(src.CachePath)
		if err == nil {
			wgsl, rerr := os.ReadFile(src.SourcePath)
			if rerr != nil {
				return Compiled{}, fmt.Errorf("shaderio: reading source for reflection: %w", rerr)
			}
			refl, rerr := Reflect(string(wgsl))
			if rerr != nil {
				return Compiled{}, rerr
			}
			return Compiled{SPIRV: spirv, SourceMtime: info.ModTime(), Reflection: refl}, nil
		}
	}

	return compileAndCache(src, info.ModTime())
}

// IsStale reports whether src's on-disk source has been modified since
// last is SourceMtime — the condition the hot-reload scan checks per
// pass every frame (spec §4.4).
func IsStale(src Source, last time.Time) bool {
	info, err := os.Stat(src.SourcePath)
	if err != nil {
		return false
	}
	return info.ModTime().After(last)
}

func compileAndCache(src Source, mtime time.Time) (Compiled, error) {
	wgsl, err := os.ReadFile(src.SourcePath)
	if err != nil {
		return Compiled{}, fmt.Errorf("shaderio: reading %s: %w", src.SourcePath, err)
	}

	spirv, err := naga.Compile(string(wgsl))
	if err != nil {
		return Compiled{}, fmt.Errorf("shaderio: naga compile of %s: %w", src.SourcePath, err)
	}

	refl, err := Reflect(string(wgsl))
	if err != nil {
		return Compiled{}, err
	}

	if dir := filepath.Dir(src.CachePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Compiled{}, fmt.Errorf("shaderio: creating cache dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(src.CachePath, spirv, 0o644); err != nil {
		return Compiled{}, fmt.Errorf("shaderio: writing cache %s: %w", src.CachePath, err)
	}

	slog.Debug("shaderio: recompiled shader", "source", src.SourcePath, "cacheBytes", len(spirv))

	return Compiled{SPIRV: spirv, SourceMtime: mtime, Reflection: refl}, nil
}

// Watched is one shader tracked for hot reload: its source/cache paths
// and the mtime of the SPIR-V last successfully loaded from it.
type Watched struct {
	Source Source
	Mtime  time.Time
}

// ScanResult reports which watched shaders changed and recompiled
// successfully during a hot-reload scan.
type ScanResult struct {
	Changed map[int]Compiled // index into the scanned slice -> new build
	Failed  map[int]error
}

// Scan implements the hot-reload pre-frame step of spec §4.4: for every
// watched shader whose source mtime exceeds its last-known mtime,
// attempt a recompile. Failures are reported, not fatal — the caller
// keeps the previous pass build running (spec §7 kind 4).
func Scan(ctx context.Context, watched []Watched) ScanResult {
	result := ScanResult{Changed: make(map[int]Compiled), Failed: make(map[int]error)}
	for i, w := range watched {
		if !IsStale(w.Source, w.Mtime) {
			continue
		}
		mtime := w.Mtime
		if info, err := os.Stat(w.Source.SourcePath); err == nil {
			mtime = info.ModTime()
		}
		compiled, err := compileAndCache(w.Source, mtime)
		if err != nil {
			slog.Warn("shaderio: hot-reload recompile failed, keeping previous build", "source", w.Source.SourcePath, "error", err)
			result.Failed[i] = err
			continue
		}
		result.Changed[i] = compiled
	}
	return result
}
