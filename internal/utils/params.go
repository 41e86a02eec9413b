// Package utils parses and validates request parameters.
package utils

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"starnav.teamgannon.org/internal/geom"
)

// FieldErrors collects validation messages per request field.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// ParseFloatParam reads an optional finite float, falling back to def when
// the parameter is absent.
func ParseFloatParam(q url.Values, name string, def float64, errs FieldErrors) float64 {
	v, ok := parseFloat(q, name, errs)
	if !ok {
		return def
	}
	return v
}

// RequireFloatParam reads a finite float that must be present.
func RequireFloatParam(q url.Values, name string, errs FieldErrors) float64 {
	if strings.TrimSpace(q.Get(name)) == "" {
		errs.Add(name, "required")
		return 0
	}
	v, _ := parseFloat(q, name, errs)
	return v
}

func parseFloat(q url.Values, name string, errs FieldErrors) (float64, bool) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs.Add(name, "must be a finite number")
		return 0, false
	}
	return v, true
}

// ParseIntParam reads an integer, falling back to def when the parameter is absent.
func ParseIntParam(q url.Values, name string, def int, errs FieldErrors) int {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(name, "must be an integer")
		return def
	}
	return v
}

// ParsePoint reads the required x, y and z parameters.
func ParsePoint(q url.Values, errs FieldErrors) geom.Point3 {
	return geom.Pt(
		RequireFloatParam(q, "x", errs),
		RequireFloatParam(q, "y", errs),
		RequireFloatParam(q, "z", errs),
	)
}

// ParseRadius reads a positive radius no larger than max.
func ParseRadius(q url.Values, def, max float64, errs FieldErrors) float64 {
	r := ParseFloatParam(q, "radius", def, errs)
	if r <= 0 || r > max {
		errs.Add("radius", "must be greater than 0 and at most "+strconv.FormatFloat(max, 'g', -1, 64))
	}
	return r
}

// ParseList splits a comma separated list, trimming whitespace and dropping empty items.
func ParseList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
