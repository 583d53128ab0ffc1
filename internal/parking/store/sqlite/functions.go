package sqlite

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"sync"

	"modernc.org/sqlite"

	"github.com/Kinsa/parking-attendant/internal/parking/vrm"
)

// SQL functions available on every connection opened after this package is
// imported:
//
//	vrm_match(pattern, stored)   1 when the normalized stored VRM matches the
//	                             compiled pattern source, else 0
//	vrm_distance(query, stored)  Levenshtein distance of the normalized forms
//	vrm_prefix(query, stored)    1 when stored starts with query, ignoring
//	                             case and spaces
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("vrm_match", 2, vrmMatch)
	sqlite.MustRegisterDeterministicScalarFunction("vrm_distance", 2, vrmDistance)
	sqlite.MustRegisterDeterministicScalarFunction("vrm_prefix", 2, vrmPrefix)
}

const maxCachedPatterns = 256

var patternCache = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func cachedPattern(source string) (*regexp.Regexp, error) {
	patternCache.Lock()
	defer patternCache.Unlock()

	if re, ok := patternCache.m[source]; ok {
		return re, nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(patternCache.m) >= maxCachedPatterns {
		clear(patternCache.m)
	}
	patternCache.m[source] = re
	return re, nil
}

func vrmMatch(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	source, ok := text(args[0])
	if !ok {
		return nil, fmt.Errorf("vrm_match: pattern must be text")
	}
	stored, ok := text(args[1])
	if !ok {
		return int64(0), nil
	}
	re, err := cachedPattern(source)
	if err != nil {
		return nil, fmt.Errorf("vrm_match: %w", err)
	}
	return boolInt(re.MatchString(vrm.Normalize(stored))), nil
}

func vrmDistance(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	query, ok1 := text(args[0])
	stored, ok2 := text(args[1])
	if !ok1 || !ok2 {
		return nil, nil
	}
	return int64(vrm.Distance(query, stored)), nil
}

func vrmPrefix(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	query, ok1 := text(args[0])
	stored, ok2 := text(args[1])
	if !ok1 || !ok2 {
		return int64(0), nil
	}
	return boolInt(vrm.HasPrefix(stored, query)), nil
}

func text(v driver.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
