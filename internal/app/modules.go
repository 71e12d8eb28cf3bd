package app

import (
	"github.com/hdlrun/hdlrun/internal/sim"
	"github.com/hdlrun/hdlrun/internal/sim/iverilog"
	"github.com/hdlrun/hdlrun/internal/sim/vcs"
	"github.com/hdlrun/hdlrun/internal/sim/vivado"
)

// coreModules is the definitive list of simulator adapters compiled into
// the hdlrun binary.
var coreModules = []sim.Module{
	&iverilog.Module{},
	&vcs.Module{},
	&vivado.Module{},
}
