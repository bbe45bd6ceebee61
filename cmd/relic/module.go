package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/relic/debugs"
	"github.com/reusee/relic/relicvm"
)

type Module struct {
	dscope.Module
	Runtime relicvm.Module
	Debugs  debugs.Module
}
