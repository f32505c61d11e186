/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
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
 */

/*
Package config resolves the settings an embedded corvusdb database is
opened with.

Settings come from the Config struct passed to Open, usually built with
Default() and then adjusted by the host program. Open then calls
ApplyEnv, which fills a field from its environment variable (CORVUS_*)
only while the field still holds its zero value, so a value set by the
host program or by Default() is kept. CORVUS_ENCRYPTION_ENABLED and
CORVUS_LOG_JSON are the exceptions: when set, they replace their field
whatever it holds. There is no config-file layer: an embedded library is
configured by its host program, not by a TOML file on disk.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvDataDir                = "CORVUS_DATA_DIR"
	EnvStandardVectorSize     = "CORVUS_VECTOR_SIZE"
	EnvCheckpointIntervalSecs = "CORVUS_CHECKPOINT_SECS"
	EnvWALSyncMode            = "CORVUS_WAL_SYNC"
	EnvEncryptionEnabled      = "CORVUS_ENCRYPTION_ENABLED"
	EnvEncryptionPassphrase   = "CORVUS_ENCRYPTION_PASSPHRASE"
	EnvLogLevel               = "CORVUS_LOG_LEVEL"
	EnvLogJSON                = "CORVUS_LOG_JSON"
	EnvCollation              = "CORVUS_COLLATION"
)

// WALSyncMode controls how aggressively the WAL is fsynced (teacher's
// durability-level discussion in internal/storage/wal.go, made explicit).
type WALSyncMode string

const (
	// SyncAlways fsyncs on every COMMIT (safest, slowest). Required by
	// spec §4.8's "appends a COMMIT marker to WAL and fsyncs".
	SyncAlways WALSyncMode = "always"
	// SyncNever never fsyncs explicitly, relying on OS buffering.
	// Intended for throwaway/in-memory-like file-backed workloads.
	SyncNever WALSyncMode = "never"
)

// Collation selects the default VARCHAR comparator (see
// internal/storage.Collator).
type Collation string

const (
	CollationBinary  Collation = "binary"
	CollationUnicode Collation = "unicode"
)

// Config holds the resolved settings for an open Database.
type Config struct {
	// InMemory, when true, opens a database with no backing data file; its
	// WAL is a scratch temp file removed on close, so all state is lost on
	// close. DataDir is ignored.
	InMemory bool
	// DataDir is the directory holding "<name>.cdb" and "<name>.cdb.wal".
	DataDir string

	// StandardVectorSize bounds the row count of any DataChunk that
	// flows through the engine (spec §3 Vector).
	StandardVectorSize int

	// CheckpointIntervalSecs sets the period of the background checkpoint
	// loop a durable Database runs for its lifetime (see DESIGN.md's
	// checkpoint-trigger Open Question resolution). Non-positive disables
	// it; ignored for an in-memory database.
	CheckpointIntervalSecs int
	WALSyncMode            WALSyncMode

	EncryptionEnabled       bool
	EncryptionPassphraseEnv string

	LogLevel string
	LogJSON  bool

	Collation Collation
}

// Default returns a Config with the documented defaults, matching the
// teacher's DefaultConfig shape.
func Default() *Config {
	return &Config{
		InMemory:                false,
		DataDir:                 ".",
		StandardVectorSize:      2048,
		CheckpointIntervalSecs:  60,
		WALSyncMode:             SyncAlways,
		EncryptionEnabled:       false,
		EncryptionPassphraseEnv: EnvEncryptionPassphrase,
		LogLevel:                "info",
		LogJSON:                 false,
		Collation:               CollationBinary,
	}
}

// ApplyEnv overlays environment variables onto cfg wherever cfg still
// holds its zero value, the way the teacher's Manager.LoadFromEnv layers
// env vars beneath explicit settings.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" && c.DataDir == "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvStandardVectorSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && c.StandardVectorSize == 0 {
			c.StandardVectorSize = n
		}
	}
	if v := os.Getenv(EnvCheckpointIntervalSecs); v != "" {
		if n, err := strconv.Atoi(v); err == nil && c.CheckpointIntervalSecs == 0 {
			c.CheckpointIntervalSecs = n
		}
	}
	if v := os.Getenv(EnvWALSyncMode); v != "" && c.WALSyncMode == "" {
		c.WALSyncMode = WALSyncMode(v)
	}
	if v := os.Getenv(EnvEncryptionEnabled); v != "" {
		c.EncryptionEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvLogLevel); v != "" && c.LogLevel == "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		c.LogJSON = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvCollation); v != "" && c.Collation == "" {
		c.Collation = Collation(v)
	}
}

// Validate checks the configuration for internal consistency, mirroring
// the teacher's Config.Validate aggregate-error style.
func (c *Config) Validate() error {
	var errs []string

	if c.StandardVectorSize <= 0 || c.StandardVectorSize > 1<<20 {
		errs = append(errs, fmt.Sprintf("invalid standard vector size: %d", c.StandardVectorSize))
	}
	if c.WALSyncMode != SyncAlways && c.WALSyncMode != SyncNever {
		errs = append(errs, fmt.Sprintf("invalid wal sync mode: %s", c.WALSyncMode))
	}
	if c.Collation != CollationBinary && c.Collation != CollationUnicode {
		errs = append(errs, fmt.Sprintf("invalid collation: %s", c.Collation))
	}
	if !c.InMemory && c.DataDir == "" {
		errs = append(errs, "data dir must be set for a file-backed database")
	}
	if c.EncryptionEnabled && os.Getenv(c.EncryptionPassphraseEnv) == "" {
		errs = append(errs, fmt.Sprintf("encryption enabled but %s is not set", c.EncryptionPassphraseEnv))
	}

	if len(errs) == 0 {
		return nil
	}
	msg := "invalid configuration:"
	for _, e := range errs {
		msg += "\n  - " + e
	}
	return fmt.Errorf("%s", msg)
}
