package mediaengine

import "sync"

var (
	defaultMu     sync.RWMutex
	defaultEngine *FFmpegEngine
)

// SetDefault installs the process-wide engine. Called once at startup
// by the processing module after the engine is constructed from config;
// sibling modules resolve it through Default instead of building their
// own ffmpeg session.
func SetDefault(engine *FFmpegEngine) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultEngine = engine
}

// Default returns the installed engine, or nil before startup finishes
func Default() *FFmpegEngine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEngine
}
