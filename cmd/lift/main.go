package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/LouisPinsard/lift/cmd/lift/cmds"
)

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

func main() {
	root := cmds.NewRootCmd()
	if err := root.Execute(); err != nil {
		zap.L().Fatal("Failed to execute root command", zap.Error(err))
	}
	os.Exit(0)
}
