package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/domain/chatlog"
	"twitchchat/pkg/logger"
)

type Handlers struct {
	log     logger.Logger
	chat    *chatlog.Log
	started time.Time
}

func New(log logger.Logger, chat *chatlog.Log, started time.Time) *Handlers {
	return &Handlers{
		log:     log,
		chat:    chat,
		started: started,
	}
}

type chatEntry struct {
	Type    domain.MessageType   `json:"type"`
	Message domain.TwitchMessage `json:"message"`
}

// ChatLogHandler returns the current chat log, oldest first.
func (h *Handlers) ChatLogHandler(c *gin.Context) {
	snapshot := h.chat.Snapshot()

	entries := make([]chatEntry, 0, len(snapshot))
	for _, msg := range snapshot {
		entries = append(entries, chatEntry{Type: msg.Type(), Message: msg})
	}

	c.JSON(http.StatusOK, gin.H{
		"size":     len(entries),
		"capacity": h.chat.Cap(),
		"messages": entries,
	})
}

type Status struct {
	Uptime        string  `json:"uptime"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	HeapMB        uint64  `json:"heap_mb"`
	SysMB         uint64  `json:"sys_mb"`
	Goroutines    int     `json:"goroutines"`
	ChatLogSize   int     `json:"chat_log_size"`
}

func (h *Handlers) StatusHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	st := Status{
		Uptime:      time.Since(h.started).Truncate(time.Second).String(),
		HeapMB:      m.HeapAlloc / 1024 / 1024,
		SysMB:       m.Sys / 1024 / 1024,
		Goroutines:  runtime.NumGoroutine(),
		ChatLogSize: h.chat.Len(),
	}

	if percent, err := cpu.Percent(0, false); err != nil {
		h.log.Warn("Failed to read CPU usage", "error", err.Error())
	} else if len(percent) > 0 {
		st.CPUPercent = percent[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		h.log.Warn("Failed to read memory usage", "error", err.Error())
	} else {
		st.MemoryPercent = vm.UsedPercent
	}

	c.JSON(http.StatusOK, st)
}
