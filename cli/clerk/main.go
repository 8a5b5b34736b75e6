package main

import (
	"os"

	clerkcmder "github.com/papercomputeco/clerk/cmd/clerk"
)

func main() {
	cmd := clerkcmder.NewClerkCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
