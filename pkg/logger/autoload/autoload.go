// Package autoload initializes the global zerolog logger from LOG_* environment variables on import.
package autoload

import (
	configx "github.com/tanpawarit/Chative-Voice-SDR/pkg/config"
	logx "github.com/tanpawarit/Chative-Voice-SDR/pkg/logger"
)

func init() {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*conf)
}
