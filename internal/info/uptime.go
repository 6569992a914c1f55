package info

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// 进程启动时间，/proc/uptime 不可用时回退使用
var startTime = time.Now()

// GetUptime 获取系统运行时长（秒）
func GetUptime() int64 {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return int64(time.Since(startTime).Seconds())
	}
	return parseUptime(string(data))
}

// parseUptime 解析 /proc/uptime
// 文件格式: "uptime idle"，示例: "12345.67 98765.43"
func parseUptime(data string) int64 {
	fields := strings.Fields(data)
	if len(fields) == 0 {
		return 0
	}

	uptime, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}

	// 四舍五入到秒
	return int64(uptime + 0.5)
}
