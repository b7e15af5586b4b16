package models

// StaticInfo is read once at startup and never changes for the session.
type StaticInfo struct {
	Name       string       `json:"name"`
	VRAMMiB    Measure[int] `json:"vram_mib"`
	Driver     string       `json:"driver"`
	PCIeMaxGen Measure[int] `json:"pcie_max_gen"`
}

// DynamicStatus is one poll's worth of telemetry.
type DynamicStatus struct {
	Temperature Measure[int]     `json:"temperature"` // °C
	GPUUtil     Measure[int]     `json:"gpu_util"`    // %
	MemUtil     Measure[int]     `json:"mem_util"`    // %
	MemFree     Measure[int]     `json:"mem_free"`    // MiB
	MemUsed     Measure[int]     `json:"mem_used"`    // MiB
	Power       Measure[float64] `json:"power"`       // W
	CoreClock   Measure[int]     `json:"core_clock"`  // MHz
	MemClock    Measure[int]     `json:"mem_clock"`   // MHz
	FanSpeed    Measure[int]     `json:"fan_speed"`   // %
}
