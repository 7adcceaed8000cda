package main

import (
	"os"

	"github.com/SnehitGunjikar/RFP-Management-System/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
