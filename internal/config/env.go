// Package config reads the process environment once at startup into
// immutable configuration values. Missing or malformed keys are collected
// and reported together before the process refuses to start.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

type errList []string

func (e *errList) addf(format string, a ...any) {
	*e = append(*e, fmt.Sprintf(format, a...))
}

func (e *errList) has() bool { return len(*e) > 0 }

func (e *errList) fatal(logger *log.Logger, what string) error {
	for _, msg := range *e {
		logger.Printf("[config] %s", msg)
	}
	return fmt.Errorf("%s configuration invalid, see log above", what)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getRequired(key string, errs *errList) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		errs.addf("missing %s", key)
	}
	return v
}

func getInt(key string, fallback int, errs *errList) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.addf("%s invalid (expected int): %q", key, v)
		return fallback
	}
	return n
}

func getInt64(key string, fallback int64, errs *errList) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		errs.addf("%s invalid (expected int64): %q", key, v)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *errList) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		errs.addf("%s invalid (expected float): %q", key, v)
		return fallback
	}
	return f
}

func getQoS(key string, fallback byte, errs *errList) byte {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 2 {
		errs.addf("%s invalid (0..2): %q", key, v)
		return fallback
	}
	return byte(n)
}

func ensureOneOf(key, val string, allowed []string, errs *errList) {
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	errs.addf("%s invalid (allowed: %s): %q", key, strings.Join(allowed, ", "), val)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
