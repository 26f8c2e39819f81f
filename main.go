// Package main is the entry point for the hotmap CLI.
package main

import (
	"github.com/huangsam/hotmap/cmd"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Cannot run hotmap", err)
	}
}
