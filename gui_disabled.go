//go:build !gui

package main

import (
	"errors"

	"hapticrec/config"
)

func runGUI(*config.Config, cliFlags) error {
	return errors.New("built without GUI support (rebuild with -tags gui)")
}
