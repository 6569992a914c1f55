package info

import (
	"net"
	"sort"
	"strings"
)

// Interface 网络接口摘要
type Interface struct {
	Name      string   `json:"name"`
	MAC       string   `json:"mac"`
	Addresses []string `json:"addresses"`
}

// GetInterfaces 列出已启用、非 loopback 且带 MAC 的网络接口
// 枚举失败时返回空列表
func GetInterfaces() []Interface {
	ifaces, err := net.Interfaces()
	if err != nil {
		return []Interface{}
	}

	result := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		if !usable(iface) {
			continue
		}

		entry := Interface{
			Name:      iface.Name,
			MAC:       FormatMAC(iface.HardwareAddr.String()),
			Addresses: []string{},
		}
		if addrs, err := iface.Addrs(); err == nil {
			for _, addr := range addrs {
				entry.Addresses = append(entry.Addresses, addr.String())
			}
			sort.Strings(entry.Addresses)
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// usable 跳过 loopback、未启用和没有 MAC 的接口
func usable(iface net.Interface) bool {
	if iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	if iface.Flags&net.FlagUp == 0 {
		return false
	}
	return len(iface.HardwareAddr) != 0
}

// FormatMAC 格式化 MAC 地址为 XX:XX:XX:XX:XX:XX
// 接受任意分隔符，非 48 位地址原样返回
func FormatMAC(mac string) string {
	hex := make([]byte, 0, 12)
	for _, c := range strings.ToUpper(mac) {
		if (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') {
			hex = append(hex, byte(c))
		}
	}
	if len(hex) != 12 {
		return mac
	}

	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.Write(hex[i : i+2])
	}
	return b.String()
}
