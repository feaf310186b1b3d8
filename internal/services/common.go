package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

// readErr maps a record-store read failure onto the error contract.
func readErr(op, what string, err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, what+" not found", err)
	}
	return utils.E(utils.CodeInternal, op, "failed to read "+what, err)
}

// writeErr maps a record-store write failure onto the error contract.
func writeErr(op, what string, err error) error {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return utils.E(utils.CodeNotFound, op, what+" not found", err)
	case mongorepo.IsDuplicateKey(err):
		return utils.E(utils.CodeConflict, op, what+" already exists", err)
	default:
		return utils.E(utils.CodePersistence, op, "failed to write "+what, err)
	}
}

func requireID(op, name, v string) error {
	if strings.TrimSpace(v) == "" {
		return utils.E(utils.CodeInvalidArgument, op, name+" is required", nil)
	}
	return nil
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindBool
	kindTime
	kindStrings
)

// patchSpec lists the bson keys a partial update may set and the type each must decode to.
type patchSpec map[string]fieldKind

// cleanFields checks a partial update against spec and converts JSON-decoded
// values to the stored types. Keys outside spec, including lifecycle fields
// such as status that have their own operations, are rejected.
func cleanFields(op string, spec patchSpec, fields map[string]any) (mongorepo.Fields, error) {
	if len(fields) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no fields to update", nil)
	}
	out := make(mongorepo.Fields, len(fields))
	for k, v := range fields {
		kind, ok := spec[k]
		if !ok {
			return nil, utils.E(utils.CodeInvalidArgument, op, "field "+k+" cannot be updated", nil)
		}
		cv, err := convertField(kind, v)
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "invalid value for "+k, err)
		}
		out[k] = cv
	}
	return out, nil
}

func convertField(kind fieldKind, v any) (any, error) {
	switch kind {
	case kindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case kindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case kindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case kindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == math.Trunc(n) && !math.IsInf(n, 0) {
				return int64(n), nil
			}
			return nil, fmt.Errorf("%v is not a whole number", n)
		}
	case kindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				return ts.UTC(), nil
			}
			if ts, err := time.Parse(time.DateOnly, t); err == nil {
				return ts, nil
			}
			return nil, fmt.Errorf("%q is not an RFC3339 timestamp or YYYY-MM-DD date", t)
		}
	case kindStrings:
		switch l := v.(type) {
		case []string:
			return l, nil
		case []any:
			out := make([]string, 0, len(l))
			for _, e := range l {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("list element %v is not a string", e)
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

var timeNow = func() time.Time { return time.Now().UTC() }

func secondsToDuration(s int) time.Duration { return time.Duration(s) * time.Second }
