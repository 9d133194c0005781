// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/rserpoold/configuration"
	"github.com/bitmark-inc/rserpoold/registrar"
	"github.com/bitmark-inc/rserpoold/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultSnapshotDirectory = "snapshot.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "rserpoold.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultMaintenanceInterval = 1000 // milliseconds
	defaultMaxBadReports       = 3
	defaultMaxConnections      = 4096
	defaultResolutionRate      = 1000
	defaultResolutionBurst     = 100
	defaultMaxItems            = 16
	defaultTakeoverTimeout     = 5    // seconds
	defaultStaticLifetime      = 3600 // seconds
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		"registrar":       "info",
		logger.DefaultTag: "critical",
	}
)

type ResolutionType struct {
	Rate         float64 `gluamapper:"rate" json:"rate"`
	Burst        int     `gluamapper:"burst" json:"burst"`
	MaxItems     int     `gluamapper:"max_items" json:"max_items"`
	MaxIncrement int     `gluamapper:"max_increment" json:"max_increment"`
}

type TakeoverType struct {
	Timeout int `gluamapper:"timeout" json:"timeout"` // seconds
}

type SnapshotType struct {
	Enable    bool   `gluamapper:"enable" json:"enable"`
	Directory string `gluamapper:"directory" json:"directory"`
}

// StaticPoolType - one element registered from the configuration
type StaticPoolType struct {
	Handle          string   `gluamapper:"handle" json:"handle"`
	Identifier      uint32   `gluamapper:"identifier" json:"identifier"`
	Policy          string   `gluamapper:"policy" json:"policy"`
	Weight          uint32   `gluamapper:"weight" json:"weight"`
	Load            uint32   `gluamapper:"load" json:"load"`                         // thousandths of a percent
	LoadDegradation uint32   `gluamapper:"load_degradation" json:"load_degradation"` // thousandths of a percent
	Protocol        string   `gluamapper:"protocol" json:"protocol"`
	Port            uint16   `gluamapper:"port" json:"port"`
	Addresses       []string `gluamapper:"addresses" json:"addresses"`
	ControlChannel  bool     `gluamapper:"control_channel" json:"control_channel"`
	Lifetime        int      `gluamapper:"lifetime" json:"lifetime"` // seconds
}

type Configuration struct {
	DataDirectory       string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile             string               `gluamapper:"pidfile" json:"pidfile"`
	Identifier          uint32               `gluamapper:"registrar_identifier" json:"registrar_identifier"`
	MaintenanceInterval int                  `gluamapper:"maintenance_interval" json:"maintenance_interval"` // milliseconds
	MaxBadReports       int                  `gluamapper:"max_bad_pe_reports" json:"max_bad_pe_reports"`
	MaxPoolElements     int                  `gluamapper:"max_pool_elements" json:"max_pool_elements"`
	MaxConnections      int                  `gluamapper:"max_connections" json:"max_connections"`
	WatchConfiguration  bool                 `gluamapper:"watch_configuration" json:"watch_configuration"`
	Resolution          ResolutionType       `gluamapper:"resolution" json:"resolution"`
	Takeover            TakeoverType         `gluamapper:"takeover" json:"takeover"`
	Snapshot            SnapshotType         `gluamapper:"snapshot" json:"snapshot"`
	StaticPools         []StaticPoolType     `gluamapper:"static_pools" json:"static_pools"`
	Logging             logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	// decoding merges into the map, so start from a copy
	levels := make(LoglevelMap, len(defaultLogLevels))
	for k, v := range defaultLogLevels {
		levels[k] = v
	}

	options := &Configuration{
		DataDirectory:       defaultDataDirectory,
		PidFile:             "", // no PidFile by default
		MaintenanceInterval: defaultMaintenanceInterval,
		MaxBadReports:       defaultMaxBadReports,
		MaxConnections:      defaultMaxConnections,

		Resolution: ResolutionType{
			Rate:     defaultResolutionRate,
			Burst:    defaultResolutionBurst,
			MaxItems: defaultMaxItems,
		},

		Takeover: TakeoverType{
			Timeout: defaultTakeoverTimeout,
		},

		Snapshot: SnapshotType{
			Directory: defaultSnapshotDirectory,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    levels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(util.EnsureAbsolute(dataDirectory, options.DataDirectory))
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	if options.MaintenanceInterval <= 0 {
		return nil, fmt.Errorf("maintenance_interval: %d must be positive", options.MaintenanceInterval)
	}
	if options.Takeover.Timeout <= 0 {
		return nil, fmt.Errorf("takeover.timeout: %d must be positive", options.Takeover.Timeout)
	}
	if options.Resolution.MaxItems <= 0 {
		return nil, fmt.Errorf("resolution.max_items: %d must be positive", options.Resolution.MaxItems)
	}

	for i := range options.StaticPools {
		if 0 == options.StaticPools[i].Lifetime {
			options.StaticPools[i].Lifetime = defaultStaticLifetime
		}
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Snapshot.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if the log file is not a simple file name
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("Files: %q is not plain name", options.Logging.File)
	}

	// create directories if they do not already exist
	if err := os.MkdirAll(options.Logging.Directory, 0700); nil != err {
		return nil, err
	}

	// done
	return options, nil
}

// registrar parameters from the configuration
func (c *Configuration) registrarConfiguration() *registrar.Configuration {
	return &registrar.Configuration{
		Identifier:          c.Identifier,
		MaintenanceInterval: time.Duration(c.MaintenanceInterval) * time.Millisecond,
		MaxBadReports:       c.MaxBadReports,
		MaxPoolElements:     c.MaxPoolElements,
		MaxItems:            c.Resolution.MaxItems,
		MaxIncrement:        c.Resolution.MaxIncrement,
		ResolutionRate:      c.Resolution.Rate,
		ResolutionBurst:     c.Resolution.Burst,
		TakeoverTimeout:     time.Duration(c.Takeover.Timeout) * time.Second,
		MaxConnections:      c.MaxConnections,
	}
}
