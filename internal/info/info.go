package info

import (
	"os"
)

// Snapshot 主机信息快照
type Snapshot struct {
	Hostname   string      `json:"hostname"`
	Uptime     int64       `json:"uptime_seconds"`
	Interfaces []Interface `json:"interfaces"`
}

// Collect 收集主机信息
func Collect() Snapshot {
	return Snapshot{
		Hostname:   GetHostname(),
		Uptime:     GetUptime(),
		Interfaces: GetInterfaces(),
	}
}

// GetHostname 获取主机名，失败时返回 "unknown"
func GetHostname() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "unknown"
	}
	return hostname
}
