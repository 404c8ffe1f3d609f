package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hokarena/reward/pkg/core"
)

// parseIntFromFloat parses a string that may be an integer ("2") or a float
// ("2.0") into int64. The simulator serializes some integer enums as floats.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

const campPrefix = "PLAYERCAMP_"

// ParseCamp decodes a camp given either as a number (1) or as the
// simulator enum name ("PLAYERCAMP_1"). "PLAYERCAMP_MID" and empty values
// are neutral.
func ParseCamp(raw json.RawMessage) (core.Camp, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return core.CampUnknown, nil
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.CampUnknown, fmt.Errorf("error unmarshalling camp: %w", err)
		}
		s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), campPrefix)
		if s == "" || s == "MID" || s == "NONE" {
			return core.CampUnknown, nil
		}
	}

	n, err := parseIntFromFloat(s)
	if err != nil {
		return core.CampUnknown, fmt.Errorf("error parsing camp %s: %w", raw, err)
	}
	return core.Camp(n), nil
}

// Parser provides pure []byte -> core struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
	strict bool
}

// NewParser creates a new parser. A strict parser validates every frame
// against the two-camp contract.
func NewParser(logger *slog.Logger, strict bool) *Parser {
	return &Parser{
		logger: logger,
		strict: strict,
	}
}

// Validate checks a decoded snapshot against the two-camp contract. It is
// the boundary check used by lenient callers that still want a verdict.
func (p *Parser) Validate(s *core.FrameSnapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("frame %d: %w", s.FrameNo, err)
	}
	return nil
}
