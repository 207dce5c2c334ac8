package main

import (
	"os"

	"github.com/xzayogn/jobchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
