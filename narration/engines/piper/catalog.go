package piper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgnsrekt/newsreel/narration"
)

// Model is one installed piper voice.
type Model struct {
	Name   string // file name without .onnx, e.g. "en_US-lessac-medium"
	Lang   string // BCP 47 tag from the model config
	Path   string
	Config string // sibling .onnx.json, empty when missing
}

// modelConfig holds the fields read from a .onnx.json file.
type modelConfig struct {
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
}

// Scan returns the models found under dir, sorted by name. A model without
// a readable config takes its language from the file name prefix.
func Scan(dir string) ([]Model, error) {
	var models []Model
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".onnx") {
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ".onnx")
		m := Model{Name: name, Path: path}
		cfgPath := path + ".json"
		if cfg, err := readConfig(cfgPath); err == nil {
			m.Config = cfgPath
			m.Lang = cfg.Language.Code
		}
		if m.Lang == "" {
			m.Lang, _, _ = strings.Cut(name, "-")
		}
		m.Lang = strings.ReplaceAll(m.Lang, "_", "-")
		models = append(models, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func readConfig(path string) (modelConfig, error) {
	var cfg modelConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = json.Unmarshal(b, &cfg)
	return cfg, err
}

// profiles converts models to catalog entries. The first model is the
// default voice.
func profiles(models []Model) []narration.VoiceProfile {
	out := make([]narration.VoiceProfile, len(models))
	for i, m := range models {
		out[i] = narration.VoiceProfile{Name: m.Name, Lang: m.Lang, Default: i == 0}
	}
	return out
}
