package store

import (
	"fmt"
	"sort"
	"strings"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// DefaultEngine is the engine used when none is configured.
const DefaultEngine = BleveEngineName

// EngineNames returns the names accepted by NewEngine, sorted.
func EngineNames() []string {
	names := []string{BleveEngineName, SQLiteEngineName}
	sort.Strings(names)
	return names
}

// NewEngine creates the engine registered under name.
//
// name options:
//   - "bleve" (default): Bleve v2 with the scorch index format
//   - "sqlite": SQLite FTS5 in a single database file inside the index directory
func NewEngine(name string, config EngineConfig) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BleveEngineName, "":
		return NewBleveEngine(config), nil
	case SQLiteEngineName:
		return NewSQLiteEngine(config), nil
	default:
		return nil, benchErrors.ConfigError(
			fmt.Sprintf("unknown engine: %s (valid options: %s)", name, strings.Join(EngineNames(), ", ")), nil)
	}
}
