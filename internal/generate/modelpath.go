package generate

import (
	"path/filepath"
	"strings"
)

// ParseModelPath splits a configured model path into backend and model
// name. A "backend:rest" prefix selects the backend; without a prefix the
// path is treated as a llama.cpp model file. The model name is the base
// of the path with its final extension removed.
func ParseModelPath(modelPath string) (backend, model string) {
	backend = "llama-cpp"
	rest := modelPath
	if idx := strings.Index(modelPath, ":"); idx > 0 {
		prefix := modelPath[:idx]
		switch prefix {
		case "ollama", "llama-cpp", "openai":
			backend = prefix
			rest = modelPath[idx+1:]
		}
	}
	model = filepath.Base(rest)
	if ext := filepath.Ext(model); ext != "" {
		model = strings.TrimSuffix(model, ext)
	}
	return backend, model
}
