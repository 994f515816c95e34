/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package config loads a region's topic layout from a YAML document, so
// operators can describe a bus without recompiling it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vedarsh/usrl-core/region"
)

// TopicSpec is one topic's YAML-facing configuration.
type TopicSpec struct {
	Name        string `yaml:"name"`
	SlotCount   int    `yaml:"slot_count"`
	PayloadSize int    `yaml:"payload_size"`
	Type        string `yaml:"type"` // "swmr" or "mwmr"
}

// Config is the top-level YAML document describing one region.
type Config struct {
	RegionPath string      `yaml:"region_path"`
	RegionSize int64       `yaml:"region_size"`
	Topics     []TopicSpec `yaml:"topics"`
}

// Load reads and decodes a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RegionPath == "" {
		return fmt.Errorf("region_path is required")
	}
	if c.RegionSize <= 0 {
		return fmt.Errorf("region_size must be positive")
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}
	for _, t := range c.Topics {
		if t.Name == "" {
			return fmt.Errorf("topic name must not be empty")
		}
		switch t.Type {
		case "swmr", "mwmr":
		default:
			return fmt.Errorf("topic %q: type must be \"swmr\" or \"mwmr\", got %q", t.Name, t.Type)
		}
	}
	return nil
}

// RegionTopics converts the YAML topic specs into region.TopicConfig
// values suitable for region.Build.
func (c *Config) RegionTopics() ([]region.TopicConfig, error) {
	out := make([]region.TopicConfig, 0, len(c.Topics))
	for _, t := range c.Topics {
		var ringType region.RingType
		switch t.Type {
		case "swmr":
			ringType = region.SWMR
		case "mwmr":
			ringType = region.MWMR
		default:
			return nil, fmt.Errorf("topic %q: unknown ring type %q", t.Name, t.Type)
		}
		out = append(out, region.TopicConfig{
			Name:        t.Name,
			SlotCount:   t.SlotCount,
			PayloadSize: t.PayloadSize,
			Type:        ringType,
		})
	}
	return out, nil
}
