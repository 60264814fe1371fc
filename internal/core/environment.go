package core

import (
	"fmt"
	"strings"
)

// Environment is the deployment stage the router runs in. It only changes
// ambient behaviour (log format and level), never routing decisions.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

var environments = map[string]Environment{
	"development": Development,
	"dev":         Development,
	"local":       Development,
	"staging":     Staging,
	"stage":       Staging,
	"testing":     Testing,
	"test":        Testing,
	"production":  Production,
	"prod":        Production,
}

func (e Environment) String() string {
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == Production
}

// ParseEnvironment accepts the canonical names and their short aliases,
// case-insensitively. An empty value means Development.
func ParseEnvironment(v string) (Environment, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return Development, nil
	}
	if env, ok := environments[v]; ok {
		return env, nil
	}
	return "", fmt.Errorf("unknown environment %q", v)
}

// Decode implements envconfig.Decoder so a typo in ENVIRONMENT fails config
// loading instead of silently running with development logging.
func (e *Environment) Decode(value string) error {
	env, err := ParseEnvironment(value)
	if err != nil {
		return err
	}
	*e = env
	return nil
}
