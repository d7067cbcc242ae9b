package main

import (
	"github.com/tanpawarit/Chative-Voice-SDR/cmd"
	_ "github.com/tanpawarit/Chative-Voice-SDR/pkg/logger/autoload"
)

func main() {
	cmd.Execute()
}
