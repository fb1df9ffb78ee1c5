// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package depgraphconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"daml.com/x/depgraph/pkg/utils"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

type StoreKind string

const (
	YamlStore   StoreKind = "yaml"
	SqliteStore StoreKind = "sqlite"
)

var sqliteExtensions = []string{".db", ".sqlite", ".sqlite3"}

type Config struct {
	HomePath string `yaml:"-"`

	// GraphPath is the default project graph store
	GraphPath string `yaml:"graph,omitempty"`

	// StatSources defaults to true
	StatSources *bool `yaml:"stat-sources,omitempty"`
}

// GraphStoreKind picks the store implementation from the file extension of path
func GraphStoreKind(path string) StoreKind {
	if lo.Contains(sqliteExtensions, strings.ToLower(filepath.Ext(path))) {
		return SqliteStore
	}
	return YamlStore
}

func (c *Config) ProbeSiblings() bool {
	return c.StatSources == nil || *c.StatSources
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.HomePath)
}

func Get() (*Config, error) {
	homePath, err := getHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomHome(homePath)
}

func GetWithCustomHome(homePath string) (*Config, error) {
	config := Config{}

	// depgraph-config.yaml is optional
	configFilePath := filepath.Join(homePath, ConfigFilename)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", configFilePath, err)
		}
	}

	if graph, ok := os.LookupEnv(GraphEnvVar); ok {
		config.GraphPath = graph
	}
	if config.GraphPath == "" {
		config.GraphPath = filepath.Join(homePath, DefaultGraphFile)
	} else {
		config.GraphPath = utils.ResolvePath(homePath, config.GraphPath)
	}

	statSources, ok, err := utils.BoolEnvVar(StatSourcesEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.StatSources = &statSources
	}

	config.HomePath = homePath
	return &config, nil
}

func getHomePath() (string, error) {
	if v, ok := os.LookupEnv(HomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory(AppName)
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}
