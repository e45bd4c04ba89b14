package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

// readSource picks the network format from the file extension.
func readSource(path string) (app.NetworkSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return app.NetworkSource{}, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		return app.NetworkSource{DOT: string(raw)}, nil
	case ".yaml", ".yml":
		var spec contagion.NetworkSpec
		if err := yaml.Unmarshal(raw, &spec); err != nil {
			return app.NetworkSource{}, fmt.Errorf("%w: %s: %v", contagion.ErrMalformedNetwork, path, err)
		}
		return app.NetworkSource{Spec: &spec}, nil
	case ".json":
		var spec contagion.NetworkSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return app.NetworkSource{}, fmt.Errorf("%w: %s: %v", contagion.ErrMalformedNetwork, path, err)
		}
		return app.NetworkSource{Spec: &spec}, nil
	default:
		return app.NetworkSource{}, fmt.Errorf("unsupported network file extension %q", ext)
	}
}

func buildNetwork(src app.NetworkSource) (*contagion.Network, error) {
	if src.Spec != nil {
		return src.Spec.Build()
	}
	return contagion.NewLoader().Load(src.DOT)
}
