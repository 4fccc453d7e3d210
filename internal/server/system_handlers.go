package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Job is a background job that can be triggered over the API
type Job interface {
	Run() error
	Name() string
}

// JobSchedule tells when a registered job fires next
type JobSchedule interface {
	Next(name string) (time.Time, bool)
}

// SizedDatabase reports its on-disk size
type SizedDatabase interface {
	Name() string
	SizeBytes(ctx context.Context) (int64, error)
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	CPUPercent      float64              `json:"cpu_percent"`
	MemoryPercent   float64              `json:"memory_percent"`
	DiskFreeGB      float64              `json:"disk_free_gb"`
	DiskUsedPercent float64              `json:"disk_used_percent"`
	Databases       []DBInfo             `json:"databases"`
	Jobs            []string             `json:"jobs"`
	NextRuns        map[string]time.Time `json:"next_runs,omitempty"`
	UptimeSeconds   int64                `json:"uptime_seconds"`
	Errors          map[string]any       `json:"errors,omitempty"`
}

// DBInfo describes one database
type DBInfo struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// handleSystemStatus reports host load, disk space of the data directory,
// database sizes and the registered jobs
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := SystemStatusResponse{
		Databases:     []DBInfo{},
		Jobs:          make([]string, 0, len(s.jobs)),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	failures := map[string]any{}

	// 100ms keeps the call responsive while still sampling real load
	if pct, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false); err != nil {
		failures["cpu"] = err.Error()
	} else if len(pct) > 0 {
		resp.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		failures["memory"] = err.Error()
	} else {
		resp.MemoryPercent = vm.UsedPercent
	}

	if s.dataDir != "" {
		if usage, err := disk.UsageWithContext(ctx, s.dataDir); err != nil {
			failures["disk"] = err.Error()
		} else {
			resp.DiskFreeGB = float64(usage.Free) / 1e9
			resp.DiskUsedPercent = usage.UsedPercent
		}
	}

	for _, db := range s.databases {
		size, err := db.SizeBytes(ctx)
		if err != nil {
			failures[db.Name()] = err.Error()
			continue
		}
		resp.Databases = append(resp.Databases, DBInfo{Name: db.Name(), SizeBytes: size})
	}

	for _, job := range s.jobs {
		resp.Jobs = append(resp.Jobs, job.Name())
		if s.schedule == nil {
			continue
		}
		if next, ok := s.schedule.Next(job.Name()); ok {
			if resp.NextRuns == nil {
				resp.NextRuns = map[string]time.Time{}
			}
			resp.NextRuns[job.Name()] = next
		}
	}

	if len(failures) > 0 {
		s.log.Warn().Fields(failures).Msg("System status incomplete")
		resp.Errors = failures
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleTriggerJob starts a registered job in the background
// POST /api/system/jobs/{name}
func (s *Server) handleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var job Job
	for _, j := range s.jobs {
		if j.Name() == name {
			job = j
			break
		}
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown job %q", name))
		return
	}

	go func() {
		log := s.log.With().Str("job", name).Logger()
		log.Info().Msg("Job triggered via API")
		if err := job.Run(); err != nil {
			log.Error().Err(err).Msg("Triggered job failed")
		}
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "started",
	})
}
