package main

import (
	"errors"
	"os"
	"strings"

	"github.com/lucheng0127/cmdhost/internal/cli"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := cli.Execute(os.Args[1:]); err != nil {
		// 单行错误输出到 stderr
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString(msg + "\n")

		code := 1
		var ec exitCoder
		if errors.As(err, &ec) && ec.ExitCode() != 0 {
			code = ec.ExitCode()
		}
		os.Exit(code)
	}
}
