package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/viant/procsim"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/report"
)

var au = aurora.NewAurora(true)

const barWidth = 30

func bar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*barWidth + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func renderView(w io.Writer, view *procsim.View) {
	memory := view.Snapshot.Memory
	fmt.Fprintf(w, "%s %-6d %s %s %d/%d MB (%.0f%%)  %s %s\n",
		au.Bold("tick"), view.Snapshot.Tick,
		au.Cyan("memory"), bar(view.Utilization/100), memory.UsedMB, memory.CapacityMB, view.Utilization,
		au.Cyan("driver"), view.Driver)
	if running := view.Running; running != nil {
		progress := float64(running.Consumed) / float64(running.Duration)
		fmt.Fprintf(w, "  %s %-16s %s %d/%d\n", au.BgGreen(" CPU "), running.Name, au.Green(bar(progress)), running.Consumed, running.Duration)
	} else {
		fmt.Fprintf(w, "  %s %s\n", au.BgBlue(" CPU "), au.Faint("idle"))
	}
	renderQueue(w, au.Green("ready"), view.Ready)
	renderQueue(w, au.Yellow("waiting"), view.Waiting)
	fmt.Fprintf(w, "  %s %d  %s %d\n\n", au.Bold("finished"), len(view.Finished), au.Magenta("canceled"), len(view.Canceled))
}

func renderQueue(w io.Writer, label aurora.Value, items []process.Summary) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, fmt.Sprintf("%s(%dMB,%d)", item.Name, item.MemoryMB, item.Remaining))
	}
	fmt.Fprintf(w, "  %-18s %s\n", label, strings.Join(names, " "))
}

func renderReport(w io.Writer, r *report.Report) {
	fmt.Fprintf(w, "%s %s  %s %d  %s %d MB\n\n",
		au.Bold("Run"), r.RunID, au.Cyan("ticks"), r.Ticks, au.Cyan("capacity"), r.CapacityMB)
	header := fmt.Sprintf("%4s  %-16s %8s %8s %10s %10s %6s", "ID", "Name", "Memory", "Burst", "Turnaround", "Wait", "State")
	fmt.Fprintln(w, au.BgGreen(header).Bold())
	for _, entry := range r.Finished {
		renderEntry(w, entry, au.Green(entry.State))
	}
	for _, entry := range r.Canceled {
		renderEntry(w, entry, au.Magenta(entry.State))
	}
	for _, entry := range r.Pending {
		renderEntry(w, entry, au.Yellow(entry.State))
	}
	fmt.Fprintf(w, "\n%s %.2f  %s %.2f  %s %.3f/tick  %s %.0f%%\n",
		au.Bold("avg turnaround"), r.AvgTurnaround,
		au.Bold("avg wait"), r.AvgWait,
		au.Bold("throughput"), r.Throughput,
		au.Bold("peak memory"), r.PeakUtilization)
}

func renderEntry(w io.Writer, entry *report.Entry, state aurora.Value) {
	turnaround, wait := "-", "-"
	if entry.TurnaroundTicks >= 0 {
		turnaround = fmt.Sprint(entry.TurnaroundTicks)
	}
	if entry.WaitTicks >= 0 {
		wait = fmt.Sprint(entry.WaitTicks)
	}
	fmt.Fprintf(w, "%4d  %-16s %6dMB %8d %10s %10s %s\n",
		entry.ID, entry.Name, entry.MemoryMB, entry.Duration, turnaround, wait, state)
}
