// Package display renders GPU state as plain text for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/overclock"
	"github.com/Guliveer/gpuwatch/internal/platform"
)

// Header writes a section header.
func Header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
}

// Field writes a labeled field.
func Field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-16s %s\n", label+":", value)
}

// Static writes the identity of the GPU.
func Static(w io.Writer, gpu int, info models.StaticInfo) {
	Header(w, fmt.Sprintf("GPU %d", gpu))
	Field(w, "Name", orUnavailable(info.Name))
	Field(w, "VRAM", info.VRAMMiB.Format("MiB"))
	Field(w, "Driver", orUnavailable(info.Driver))
	pcie := models.UnavailableText
	if info.PCIeMaxGen.Available {
		pcie = fmt.Sprintf("Gen %d", info.PCIeMaxGen.Value)
	}
	Field(w, "PCIe (max)", pcie)
}

// Host writes the host description.
func Host(w io.Writer, h platform.Host) {
	Header(w, "Host")
	Field(w, "Hostname", orUnavailable(h.Hostname))
	Field(w, "System", h.String())
	if h.Uptime > 0 {
		Field(w, "Uptime", h.Uptime.Truncate(time.Minute).String())
	}
}

// Snapshot writes one tick of telemetry.
func Snapshot(w io.Writer, snap models.Snapshot) {
	st := snap.Status
	Header(w, "Status "+snap.Timestamp.Local().Format("15:04:05"))
	if !snap.Polled && snap.StatusError != "" {
		Field(w, "Error", snap.StatusError)
	}
	Field(w, "Temperature", st.Temperature.Format("°C"))
	if !snap.VRAMHidden {
		vram := snap.VRAM.Format()
		if snap.VRAMHint != "" {
			vram += " (" + snap.VRAMHint + ")"
		}
		Field(w, "VRAM temp", vram)
	}
	Field(w, "GPU util", st.GPUUtil.Format("%"))
	Field(w, "Memory util", st.MemUtil.Format("%"))
	Field(w, "Memory used", usedOfTotal(st.MemUsed, st.MemFree))
	Field(w, "Power draw", st.Power.Format("W"))
	Field(w, "Core clock", st.CoreClock.Format("MHz"))
	Field(w, "Memory clock", st.MemClock.Format("MHz"))
	Field(w, "Fan", st.FanSpeed.Format("%"))
}

// StatusLine renders one tick on a single line for continuous output.
func StatusLine(snap models.Snapshot) string {
	st := snap.Status
	parts := []string{
		snap.Timestamp.Local().Format("15:04:05"),
		"temp " + st.Temperature.Format("°C"),
	}
	if !snap.VRAMHidden {
		parts = append(parts, "vram "+snap.VRAM.Format())
	}
	parts = append(parts,
		"gpu "+st.GPUUtil.Format("%"),
		"mem "+usedOfTotal(st.MemUsed, st.MemFree),
		"power "+st.Power.Format("W"),
		"core "+st.CoreClock.Format("MHz"),
		"memclk "+st.MemClock.Format("MHz"),
		"fan "+st.FanSpeed.Format("%"),
	)
	line := strings.Join(parts, " | ")
	if !snap.Polled && snap.StatusError != "" {
		line += " | error: " + snap.StatusError
	}
	return line
}

// Overclock writes the overclock state. With the Coolbits gate disabled
// only the instructions for enabling it are shown.
func Overclock(w io.Writer, s overclock.Snapshot) {
	Header(w, "Overclock")
	if !s.CoolbitsEnabled {
		Field(w, "Coolbits", "disabled")
		fmt.Fprintln(w)
		for _, line := range strings.Split(overclock.CoolbitsInstructions, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		return
	}

	Field(w, "Coolbits", "enabled")
	p := s.Power
	Field(w, "Power limit", p.Current.Format("W"))
	if p.Known() {
		Field(w, "Power range", fmt.Sprintf("%s - %s (default %s)",
			p.Min.Format("W"), p.Max.Format("W"), p.Default.Format("W")))
	} else {
		Field(w, "Power range", models.UnavailableText)
	}
	Field(w, "Core offset", offset(s.Core))
	Field(w, "Memory offset", offset(s.Memory))
}

// Result writes the outcome of an apply request, followed by the refreshed
// state when there is one.
func Result(w io.Writer, r overclock.Result) {
	if r.Success {
		fmt.Fprintf(w, "%s\n", r.Message)
	} else {
		fmt.Fprintf(w, "Error: %s\n", r.Message)
	}
	if r.Refreshed {
		Overclock(w, r.Snapshot)
	}
}

func offset(r overclock.OffsetRange) string {
	s := fmt.Sprintf("%+d MHz (range %d to %d MHz", r.Current, r.Min, r.Max)
	if r.Defaulted {
		s += ", default bounds"
	}
	return s + ")"
}

func usedOfTotal(used, free models.Measure[int]) string {
	if !used.Available {
		return models.UnavailableText
	}
	if !free.Available {
		return used.Format("MiB")
	}
	return fmt.Sprintf("%d / %d MiB", used.Value, used.Value+free.Value)
}

func orUnavailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.UnavailableText
	}
	return s
}
