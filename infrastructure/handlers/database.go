package handlers

import (
	"fmt"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// databaseEngine holds the per-engine profile: metric families with their
// defaults, family detection keywords, and the default connection port.
type databaseEngine struct {
	defaultPort   int
	defaultFamily string
	families      map[string]param.Parameters
	familyGroups  []keywordGroup
}

var databaseEngines = map[string]databaseEngine{
	"oracle": {
		defaultPort:   1521,
		defaultFamily: "tablespaces",
		families: map[string]param.Parameters{
			"tablespaces": {"levels": param.Levels{80, 90}, "magic": 0.9},
			"sessions":    {"levels": param.Levels{100, 200}},
			"locks":       {"levels": param.Levels{30, 60}},
		},
		familyGroups: []keywordGroup{
			{subtype: "tablespaces", keywords: []string{"tablespace", "tbs"}},
			{subtype: "locks", keywords: []string{"lock"}},
			{subtype: "sessions", keywords: []string{"session", "process"}},
		},
	},
	"mysql": {
		defaultPort:   3306,
		defaultFamily: "connections",
		families: map[string]param.Parameters{
			"connections": {"levels": param.Levels{80, 90}},
			"innodb":      {"bufferpool_hit_rate": param.Levels{95, 90}},
			"replication": {"seconds_behind_master": param.Levels{60, 300}},
		},
		familyGroups: []keywordGroup{
			{subtype: "innodb", keywords: []string{"innodb", "buffer"}},
			{subtype: "replication", keywords: []string{"replication", "replica", "slave"}},
			{subtype: "connections", keywords: []string{"connection", "thread"}},
		},
	},
	"postgresql": {
		defaultPort:   5432,
		defaultFamily: "sessions",
		families: map[string]param.Parameters{
			"sessions":    {"levels": param.Levels{80, 90}},
			"locks":       {"levels": param.Levels{50, 100}},
			"bgwriter":    {"levels": param.Levels{70, 90}},
			"replication": {"replication_lag": param.Levels{60, 300}},
		},
		familyGroups: []keywordGroup{
			{subtype: "bgwriter", keywords: []string{"bgwriter", "background writer"}},
			{subtype: "replication", keywords: []string{"replication", "standby", "streaming"}},
			{subtype: "locks", keywords: []string{"lock"}},
			{subtype: "sessions", keywords: []string{"session", "connection", "backend"}},
		},
	},
	"mongodb": {
		defaultPort:   27017,
		defaultFamily: "connections",
		families: map[string]param.Parameters{
			"connections": {"levels": param.Levels{80, 90}},
			"replication": {"replication_lag": param.Levels{10, 60}},
		},
		familyGroups: []keywordGroup{
			{subtype: "replication", keywords: []string{"replication", "replica", "secondary", "oplog"}},
			{subtype: "connections", keywords: []string{"connection"}},
		},
	},
	"mssql": {
		defaultPort:   1433,
		defaultFamily: "datafiles",
		families: map[string]param.Parameters{
			"datafiles": {"levels": param.Levels{80, 90}},
			"pagelife":  {"page_life_expectancy": param.Levels{300, 100}},
			"locks":     {"levels": param.Levels{500, 1000}},
		},
		familyGroups: []keywordGroup{
			{subtype: "pagelife", keywords: []string{"page life", "pagelife", "buffer"}},
			{subtype: "datafiles", keywords: []string{"datafile", "data file", "tempdb", "file size"}},
			{subtype: "locks", keywords: []string{"lock", "deadlock"}},
		},
	},
	"redis": {
		defaultPort:   6379,
		defaultFamily: "memory",
		families: map[string]param.Parameters{
			"memory":  {"levels": param.Levels{80, 90}},
			"clients": {"levels": param.Levels{80, 90}},
		},
		familyGroups: []keywordGroup{
			{subtype: "clients", keywords: []string{"client", "connection"}},
			{subtype: "memory", keywords: []string{"memory", "rss"}},
		},
	},
	"generic": {
		defaultFamily: "connections",
		families: map[string]param.Parameters{
			"connections": {"levels": param.Levels{80, 90}},
		},
	},
}

// Engine keywords, most specific first.
var databaseEngineGroups = []keywordGroup{
	{subtype: "oracle", keywords: []string{"oracle", "tablespace", "asm", "rman"}},
	{subtype: "mysql", keywords: []string{"mysql", "mariadb", "innodb", "galera"}},
	{subtype: "postgresql", keywords: []string{"postgres", "pgsql", "pg_"}},
	{subtype: "mongodb", keywords: []string{"mongo"}},
	{subtype: "mssql", keywords: []string{"mssql", "sql server", "sqlserver"}},
	{subtype: "redis", keywords: []string{"redis"}},
}

var databaseInfos = map[string]param.Info{
	"hostname": {
		Name:        "hostname",
		Type:        "string",
		Description: "Database server hostname; agent-local checks may omit it",
	},
	"port": {
		Name:        "port",
		Type:        "int",
		Description: "Database server TCP port",
	},
	"username": {
		Name:        "username",
		Type:        "string",
		Description: "Monitoring user for the database connection",
	},
	"database": {
		Name:        "database",
		Type:        "string",
		Description: "Database or schema name to monitor",
	},
	"levels": {
		Name:        "levels",
		Type:        "levels",
		Description: "Metric thresholds (warning, critical) for the detected family",
		Default:     param.Levels{80, 90},
	},
	"magic": {
		Name:        "magic",
		Type:        "float",
		Description: "Oracle tablespace magic factor scaling thresholds by tablespace size, in (0, 1]",
		Default:     0.9,
	},
	"bufferpool_hit_rate": {
		Name:        "bufferpool_hit_rate",
		Type:        "levels",
		Description: "InnoDB buffer pool hit rate thresholds in percent; warning is above critical",
		Default:     param.Levels{95, 90},
		Unit:        "%",
	},
	"page_life_expectancy": {
		Name:        "page_life_expectancy",
		Type:        "levels",
		Description: "SQL Server page life expectancy thresholds in seconds; warning is above critical",
		Default:     param.Levels{300, 100},
		Unit:        "s",
	},
	"seconds_behind_master": {
		Name:        "seconds_behind_master",
		Type:        "levels",
		Description: "MySQL replication lag thresholds in seconds",
		Default:     param.Levels{60, 300},
		Unit:        "s",
	},
	"replication_lag": {
		Name:        "replication_lag",
		Type:        "levels",
		Description: "Replication lag thresholds in seconds",
		Default:     param.Levels{60, 300},
		Unit:        "s",
	},
}

// DatabaseHandler generates and validates database check parameters for
// the supported engines.
type DatabaseHandler struct {
	base
}

var _ handler.Handler = (*DatabaseHandler)(nil)

// NewDatabaseHandler constructs the database handler.
func NewDatabaseHandler() (*DatabaseHandler, error) {
	return &DatabaseHandler{
		base: base{
			name: "database",
			patterns: []string{
				"oracle", "mysql", "mariadb", "postgres", "pgsql", "mongo",
				"mssql", "sql server", "redis", "database", "tablespace", "innodb",
			},
			rulesets: []string{
				"oracle_tablespaces", "mysql_connections", "postgres_sessions",
				"mongodb_connections", "mssql_counters", "redis_info",
				"database_connections",
			},
		},
	}, nil
}

// detect resolves the engine and metric family for a service name. Both
// levels honor explicit context overrides (engine, metric).
func (h *DatabaseHandler) detect(service string, ctx param.Context) (string, string, databaseEngine, param.Parameters) {
	engine := classify(service, ctx, "engine", "generic", databaseEngineGroups)
	eng, ok := databaseEngines[engine]
	if !ok {
		engine = "generic"
		eng = databaseEngines[engine]
	}

	family := classify(service, ctx, "metric", eng.defaultFamily, eng.familyGroups)
	defaults, ok := eng.families[family]
	if !ok {
		family = eng.defaultFamily
		defaults = eng.families[family]
	}
	return engine, family, eng, defaults
}

// DefaultParameters returns the family defaults for the detected engine
// and metric family.
func (h *DatabaseHandler) DefaultParameters(service string, ctx param.Context) (*param.Result, error) {
	engine, family, eng, defaults := h.detect(service, ctx)

	params := defaults.Clone()
	if eng.defaultPort != 0 {
		params["port"] = eng.defaultPort
	}

	result := param.NewResult(nil)
	result.AddInfo("", fmt.Sprintf("using %s %s profile", engine, family))

	if factor := contextFactor(ctx); factor != 1 {
		if lv, ok := param.AsLevels(params["levels"]); ok {
			params["levels"] = lv.Scale(factor)
			result.AddInfo("levels", adjustmentNote(factor))
		}
	}

	filtered, applied := ApplyParameterPolicies(params, ctx)
	for _, desc := range applied {
		result.AddInfo("", desc)
	}
	result.Parameters = filtered
	return result, nil
}

// ValidateParameters checks database parameters: connection structure and
// the engine-specific metric invariants.
func (h *DatabaseHandler) ValidateParameters(params param.Parameters, service string, ctx param.Context) (*param.Result, error) {
	result := param.NewResult(params.Clone())
	normalized := param.Parameters{}

	if raw, present := params["hostname"]; present {
		if s, ok := param.AsString(raw); !ok {
			result.AddError("hostname", "must be a string")
		} else if validateHostname(result, "hostname", s) {
			normalized["hostname"] = s
		}
	}
	if raw, present := params["port"]; present {
		if port, ok := validatePort(result, "port", raw); ok {
			normalized["port"] = port
		}
	}
	for _, field := range []string{"username", "database"} {
		if raw, present := params[field]; present {
			if s, ok := param.AsString(raw); !ok {
				result.AddError(field, "must be a string")
			} else {
				normalized[field] = s
			}
		}
	}

	if raw, present := params["levels"]; present {
		if lv, ok := validateLevels(result, "levels", raw, false); ok {
			normalized["levels"] = lv
		}
	}

	if raw, present := params["magic"]; present {
		f, ok := param.AsFloat(raw)
		if !ok {
			result.AddError("magic", "must be a number")
		} else if f <= 0 || f > 1 {
			result.Add(param.ErrorMessage("magic", fmt.Sprintf("magic factor %g is outside (0, 1]", f)).
				WithFix("use a value such as 0.9; 1.0 disables scaling"))
		} else {
			normalized["magic"] = f
		}
	}

	if raw, present := params["bufferpool_hit_rate"]; present {
		if lv, ok := validateLevels(result, "bufferpool_hit_rate", raw, true); ok {
			if lv.Warn() > 100 || lv.Crit() > 100 {
				result.AddError("bufferpool_hit_rate", "hit rate is a percentage and cannot exceed 100")
			} else {
				normalized["bufferpool_hit_rate"] = lv
			}
		}
	}

	if raw, present := params["page_life_expectancy"]; present {
		if lv, ok := validateLevels(result, "page_life_expectancy", raw, true); ok {
			normalized["page_life_expectancy"] = lv
		}
	}

	for _, field := range []string{"seconds_behind_master", "replication_lag"} {
		if raw, present := params[field]; present {
			if lv, ok := validateLevels(result, field, raw, false); ok {
				normalized[field] = lv
			}
		}
	}

	warnUnknown(result, params, databaseInfos)
	result.Normalized = normalized
	return result, nil
}

// ParameterInfo returns documentation for a database parameter.
func (h *DatabaseHandler) ParameterInfo(name string) (param.Info, bool) {
	return infoLookup(databaseInfos, name)
}

// Suggestions proposes database parameter improvements.
func (h *DatabaseHandler) Suggestions(service string, current param.Parameters, ctx param.Context) ([]suggestion.Suggestion, error) {
	engine, family, eng, defaults := h.detect(service, ctx)

	var out []suggestion.Suggestion
	if _, ok := current["hostname"]; !ok {
		out = append(out, suggestion.New(suggestion.KindAddParameter, "hostname",
			"explicit connection settings make the check independent of agent defaults"))
	}
	if _, ok := current["port"]; !ok && eng.defaultPort != 0 {
		out = append(out, suggestion.New(suggestion.KindAddParameter, "port",
			fmt.Sprintf("the default %s port is %d", engine, eng.defaultPort)).
			WithValues(nil, eng.defaultPort))
	}
	if engine == "oracle" && family == "tablespaces" {
		if _, ok := current["magic"]; !ok {
			out = append(out, suggestion.New(suggestion.KindAddParameter, "magic",
				"the magic factor scales thresholds with tablespace size").
				WithValues(nil, defaults["magic"]).
				WithImpact(suggestion.ImpactMedium))
		}
	}
	if cur, ok := param.AsLevels(current["levels"]); ok {
		if def, ok := param.AsLevels(defaults["levels"]); ok && cur.Crit() > def.Crit() {
			out = append(out, suggestion.New(suggestion.KindTightenThreshold, "levels",
				fmt.Sprintf("critical threshold is above the recommended %s %s value", engine, family)).
				WithValues(cur, def).
				WithImpact(suggestion.ImpactMedium))
		}
	}
	suggestion.Sort(out)
	return out, nil
}
