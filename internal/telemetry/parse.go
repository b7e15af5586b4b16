// Package telemetry queries nvidia-smi for static and per-tick GPU data and
// parses its headerless CSV output into typed records.
package telemetry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Guliveer/gpuwatch/internal/models"
)

// Unavailable is the normalized value for any field the vendor tool reports
// as "[Not Supported]" or "[N/A]".
const Unavailable = "unavailable"

var (
	// ErrFieldCount is returned when a line does not have exactly one value
	// per expected key.
	ErrFieldCount = errors.New("field count mismatch")

	// ErrValue is returned when a value cannot be converted to its field type.
	ErrValue = errors.New("invalid field value")
)

// Field binds an nvidia-smi query property to the key it is stored under.
type Field struct {
	Query string
	Key   string
}

// StaticFields are queried once per session, in this order.
var StaticFields = []Field{
	{Query: "gpu_name", Key: "name"},
	{Query: "memory.total", Key: "vram"},
	{Query: "driver_version", Key: "driver"},
	{Query: "pcie.link.gen.max", Key: "pcie_max_gen"},
}

// DynamicFields are queried on every tick, in this order.
var DynamicFields = []Field{
	{Query: "temperature.gpu", Key: "temperature"},
	{Query: "utilization.gpu", Key: "gpu_util"},
	{Query: "utilization.memory", Key: "mem_util"},
	{Query: "memory.free", Key: "mem_free"},
	{Query: "memory.used", Key: "mem_used"},
	{Query: "power.draw", Key: "power"},
	{Query: "clocks.current.graphics", Key: "core_clock"},
	{Query: "clocks.current.memory", Key: "mem_clock"},
	{Query: "fan.speed", Key: "fan_speed"},
}

// Keys returns the output keys of fields in order.
func Keys(fields []Field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// QueryList returns the comma-joined --query-gpu argument for fields.
func QueryList(fields []Field) string {
	q := make([]string, len(fields))
	for i, f := range fields {
		q[i] = f.Query
	}
	return strings.Join(q, ",")
}

// ParseCSVLine splits one comma-separated line positionally onto keys.
// The arity must match exactly. Values reported as not supported or N/A
// are replaced with Unavailable; everything else is kept as trimmed text.
func ParseCSVLine(line string, keys []string) (map[string]string, error) {
	values := strings.Split(strings.TrimSpace(line), ",")
	if len(values) != len(keys) {
		return nil, fmt.Errorf("%w: expected %d values, got %d in %q",
			ErrFieldCount, len(keys), len(values), line)
	}

	out := make(map[string]string, len(keys))
	for i, key := range keys {
		out[key] = normalize(values[i])
	}
	return out, nil
}

func normalize(raw string) string {
	v := strings.TrimSpace(raw)
	lower := strings.ToLower(v)
	if strings.Contains(lower, "not supported") || strings.Contains(lower, "n/a") {
		return Unavailable
	}
	return v
}

// firstLine returns the first line of multi-line tool output.
func firstLine(out string) string {
	out = strings.TrimSpace(out)
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		return out[:i]
	}
	return out
}

// ParseStatic parses one static query line.
func ParseStatic(line string) (models.StaticInfo, error) {
	m, err := ParseCSVLine(line, Keys(StaticFields))
	if err != nil {
		return models.StaticInfo{}, err
	}

	var info models.StaticInfo
	info.Name = m["name"]
	info.Driver = m["driver"]
	if info.VRAMMiB, err = parseInt("vram", m["vram"]); err != nil {
		return models.StaticInfo{}, err
	}
	if info.PCIeMaxGen, err = parseInt("pcie_max_gen", m["pcie_max_gen"]); err != nil {
		return models.StaticInfo{}, err
	}
	return info, nil
}

// ParseDynamic parses one dynamic query line. Any value that is neither
// numeric nor unavailable fails the whole record.
func ParseDynamic(line string) (models.DynamicStatus, error) {
	m, err := ParseCSVLine(line, Keys(DynamicFields))
	if err != nil {
		return models.DynamicStatus{}, err
	}

	var (
		s    models.DynamicStatus
		errs []error
	)
	ints := []struct {
		key string
		dst *models.Measure[int]
	}{
		{"temperature", &s.Temperature},
		{"gpu_util", &s.GPUUtil},
		{"mem_util", &s.MemUtil},
		{"mem_free", &s.MemFree},
		{"mem_used", &s.MemUsed},
		{"core_clock", &s.CoreClock},
		{"mem_clock", &s.MemClock},
		{"fan_speed", &s.FanSpeed},
	}
	for _, f := range ints {
		v, err := parseInt(f.key, m[f.key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*f.dst = v
	}
	if s.Power, err = parseFloat("power", m["power"]); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return models.DynamicStatus{}, errors.Join(errs...)
	}
	return s, nil
}

func parseInt(key, v string) (models.Measure[int], error) {
	if v == Unavailable {
		return models.Measure[int]{}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Some fields (e.g. clocks on older drivers) come back as "1500.00".
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || !finite(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return models.Measure[int]{}, fmt.Errorf("%w: %s=%q", ErrValue, key, v)
		}
		n = int(f)
	}
	return models.Of(n), nil
}

func parseFloat(key, v string) (models.Measure[float64], error) {
	if v == Unavailable {
		return models.Measure[float64]{}, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !finite(f) {
		return models.Measure[float64]{}, fmt.Errorf("%w: %s=%q", ErrValue, key, v)
	}
	return models.Of(f), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
